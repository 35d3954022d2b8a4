package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	"fintrack/internal/sheets/memory"
	"fintrack/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func payload(title string) core.Payload {
	return core.Payload{
		Title:       title,
		Amount:      core.MoneyFromInt(10),
		Category:    "other",
		Description: "d",
		Date:        core.NewDate(2024, 1, 1),
	}
}

func TestHandleRecordEvent_CreatedAndUpdated(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	mirror := memory.New()
	w := NewSyncWorker(store, mirror, quietLogger())

	tx, err := store.Create(ctx, core.KindIncome, payload("Salary"))
	require.NoError(t, err)
	require.NoError(t, w.HandleRecordEvent(ctx, amqp.NewRecordEvent(core.KindIncome, tx.ID, amqp.OpCreated)))

	_, err = store.Update(ctx, core.KindIncome, tx.ID, payload("Bonus"))
	require.NoError(t, err)
	require.NoError(t, w.HandleRecordEvent(ctx, amqp.NewRecordEvent(core.KindIncome, tx.ID, amqp.OpUpdated)))

	rows := mirror.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Bonus", rows[0].Title)
}

func TestHandleRecordEvent_Deleted(t *testing.T) {
	ctx := context.Background()
	mirror := memory.New()
	require.NoError(t, mirror.Upsert(ctx, core.Transaction{ID: "x", Kind: core.KindExpense}))

	w := NewSyncWorker(storage.NewMemoryStore(), mirror, quietLogger())
	require.NoError(t, w.HandleRecordEvent(ctx, amqp.NewRecordEvent(core.KindExpense, "x", amqp.OpDeleted)))

	assert.Empty(t, mirror.Rows())
}

func TestHandleRecordEvent_VanishedRecordIsRemoved(t *testing.T) {
	ctx := context.Background()
	mirror := memory.New()
	require.NoError(t, mirror.Upsert(ctx, core.Transaction{ID: "gone", Kind: core.KindIncome}))

	w := NewSyncWorker(storage.NewMemoryStore(), mirror, quietLogger())
	require.NoError(t, w.HandleRecordEvent(ctx, amqp.NewRecordEvent(core.KindIncome, "gone", amqp.OpUpdated)))

	_, ok := mirror.Get(core.KindIncome, "gone")
	assert.False(t, ok)
}

func TestHandleRecordEvent_UnknownOp(t *testing.T) {
	w := NewSyncWorker(storage.NewMemoryStore(), memory.New(), quietLogger())
	err := w.HandleRecordEvent(context.Background(), amqp.RecordEvent{Kind: core.KindIncome, ID: "a", Op: "renamed"})
	assert.ErrorIs(t, err, amqp.ErrInvalidEvent)
}

type failingReader struct{ err error }

func (f failingReader) Get(context.Context, core.Kind, string) (core.Transaction, error) {
	return core.Transaction{}, f.err
}

func (f failingReader) List(context.Context, core.Kind) ([]core.Transaction, error) {
	return nil, f.err
}

func TestHandleRecordEvent_StoreErrorIsReturned(t *testing.T) {
	boom := errors.New("database is locked")
	w := NewSyncWorker(failingReader{err: boom}, memory.New(), quietLogger())

	err := w.HandleRecordEvent(context.Background(), amqp.NewRecordEvent(core.KindIncome, "a", amqp.OpCreated))
	assert.ErrorIs(t, err, boom)
}

func TestResync(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	mirror := memory.New()

	in, err := store.Create(ctx, core.KindIncome, payload("Salary"))
	require.NoError(t, err)
	ex, err := store.Create(ctx, core.KindExpense, payload("Books"))
	require.NoError(t, err)
	require.NoError(t, mirror.Upsert(ctx, core.Transaction{ID: "orphan", Kind: core.KindExpense}))

	w := NewSyncWorker(store, mirror, quietLogger())
	res, err := w.Resync(ctx)
	require.NoError(t, err)
	assert.Equal(t, ResyncResult{Upserted: 2, Removed: 1}, res)

	refs, err := mirror.Refs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []sheets.RowRef{
		{Kind: core.KindIncome, ID: in.ID},
		{Kind: core.KindExpense, ID: ex.ID},
	}, refs)

	// A second pass overwrites rather than duplicating.
	res, err = w.Resync(ctx)
	require.NoError(t, err)
	assert.Equal(t, ResyncResult{Upserted: 2}, res)
	assert.Len(t, mirror.Rows(), 2)
}

func TestResync_ListError(t *testing.T) {
	boom := errors.New("connection refused")
	w := NewSyncWorker(failingReader{err: boom}, memory.New(), quietLogger())

	_, err := w.Resync(context.Background())
	assert.ErrorIs(t, err, boom)
}

type countingResyncer struct{ n atomic.Int32 }

func (c *countingResyncer) Resync(context.Context) (ResyncResult, error) {
	c.n.Add(1)
	return ResyncResult{}, nil
}

func TestScheduler_RunsAtStartAndStops(t *testing.T) {
	target := &countingResyncer{}
	s := NewScheduler(target, time.Hour, quietLogger())
	ctx := context.Background()

	assert.False(t, s.IsRunning())
	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start(ctx), "second start should fail")

	require.Eventually(t, func() bool { return target.n.Load() == 1 }, time.Second, 5*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, s.Stop(stopCtx))
	assert.False(t, s.IsRunning())
	assert.NoError(t, s.Stop(stopCtx), "stopping twice is a no-op")
}

func TestScheduler_Ticks(t *testing.T) {
	target := &countingResyncer{}
	s := NewScheduler(target, 10*time.Millisecond, quietLogger())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	require.Eventually(t, func() bool { return target.n.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestScheduler_RejectsNonPositiveInterval(t *testing.T) {
	s := NewScheduler(&countingResyncer{}, 0, quietLogger())
	assert.Error(t, s.Start(context.Background()))
}
