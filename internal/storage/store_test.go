package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.Set(c.Now().Add(d))
}

func payload(title, amount, category string) core.Payload {
	m, err := core.ParseAmount(amount)
	if err != nil {
		panic(err)
	}
	return core.Payload{
		Title:       title,
		Amount:      m,
		Category:    category,
		Description: title + " description",
		Date:        core.NewDate(2024, 4, 30),
	}
}

func assertSameRecord(t *testing.T, want, got core.Transaction) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Kind, got.Kind)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Amount.String(), got.Amount.String())
	assert.Equal(t, want.Category, got.Category)
	assert.Equal(t, want.Description, got.Description)
	assert.Equal(t, want.Date.String(), got.Date.String())
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "createdAt %v != %v", want.CreatedAt, got.CreatedAt)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updatedAt %v != %v", want.UpdatedAt, got.UpdatedAt)
}

func titles(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.Title
	}
	return out
}

// runStoreContract exercises behaviour every backend must share.
func runStoreContract(t *testing.T, open func(t *testing.T, opts ...Option) Store) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		clock := newFakeClock()
		s := open(t, WithClock(clock.Now))

		created, err := s.Create(ctx, core.KindIncome, payload("Salary", "1000", "salary"))
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, core.KindIncome, created.Kind)
		assert.True(t, created.CreatedAt.Equal(clock.Now()))
		assert.True(t, created.UpdatedAt.Equal(created.CreatedAt))

		got, err := s.Get(ctx, core.KindIncome, created.ID)
		require.NoError(t, err)
		assertSameRecord(t, created, got)
	})

	t.Run("list newest first with insertion tiebreak", func(t *testing.T) {
		clock := newFakeClock()
		s := open(t, WithClock(clock.Now))

		for _, title := range []string{"a", "b"} {
			_, err := s.Create(ctx, core.KindExpense, payload(title, "10", "groceries"))
			require.NoError(t, err)
		}
		clock.Advance(time.Minute)
		_, err := s.Create(ctx, core.KindExpense, payload("c", "10", "groceries"))
		require.NoError(t, err)

		list, err := s.List(ctx, core.KindExpense)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "b", "a"}, titles(list))
	})

	t.Run("kinds are isolated", func(t *testing.T) {
		s := open(t)
		inc, err := s.Create(ctx, core.KindIncome, payload("Salary", "1000", "salary"))
		require.NoError(t, err)

		expenses, err := s.List(ctx, core.KindExpense)
		require.NoError(t, err)
		assert.Empty(t, expenses)

		_, err = s.Get(ctx, core.KindExpense, inc.ID)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("update replaces fields and keeps updatedAt monotonic", func(t *testing.T) {
		clock := newFakeClock()
		s := open(t, WithClock(clock.Now))

		created, err := s.Create(ctx, core.KindExpense, payload("Rent", "500", "other"))
		require.NoError(t, err)

		clock.Advance(time.Hour)
		updated, err := s.Update(ctx, core.KindExpense, created.ID, payload("Books", "42.5", "education"))
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "Books", updated.Title)
		assert.Equal(t, "42.5", updated.Amount.String())
		assert.Equal(t, "education", updated.Category)
		assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
		assert.True(t, updated.UpdatedAt.Equal(clock.Now()))

		// clock moves backwards
		clock.Advance(-2 * time.Hour)
		again, err := s.Update(ctx, core.KindExpense, created.ID, payload("Books", "43", "education"))
		require.NoError(t, err)
		assert.False(t, again.UpdatedAt.Before(updated.UpdatedAt))

		got, err := s.Get(ctx, core.KindExpense, created.ID)
		require.NoError(t, err)
		assertSameRecord(t, again, got)
	})

	t.Run("delete removes the record", func(t *testing.T) {
		s := open(t)
		created, err := s.Create(ctx, core.KindIncome, payload("Gift", "20", "other"))
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, core.KindIncome, created.ID))

		list, err := s.List(ctx, core.KindIncome)
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.ErrorIs(t, s.Delete(ctx, core.KindIncome, created.ID), core.ErrNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		s := open(t)
		missing := "3f1c4a9e-5b7d-4c2a-9e8f-0a1b2c3d4e5f"

		_, err := s.Get(ctx, core.KindIncome, missing)
		assert.ErrorIs(t, err, core.ErrNotFound)
		_, err = s.Update(ctx, core.KindExpense, missing, payload("x", "1", "other"))
		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, core.KindExpense, missing), core.ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, core.KindIncome, "not-a-uuid"), core.ErrNotFound)
	})

	t.Run("invalid kind", func(t *testing.T) {
		s := open(t)
		_, err := s.List(ctx, core.Kind("transfer"))
		assert.True(t, errors.Is(err, core.ErrInvalidKind))
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T, opts ...Option) Store {
		return NewMemoryStore(opts...)
	})
}

func TestSQLiteStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T, opts ...Option) Store {
		s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "tracker.db"), opts...)
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tracker.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	created, err := s.Create(context.Background(), core.KindIncome, payload("Salary", "1000.50", "salary"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// migrations are idempotent and data survives
	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(context.Background(), core.KindIncome, created.ID)
	require.NoError(t, err)
	assertSameRecord(t, created, got)
}

func TestMemoryStoreConcurrentCreate(t *testing.T) {
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Create(context.Background(), core.KindExpense, payload("coffee", "2", "takeaways"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	list, err := s.List(context.Background(), core.KindExpense)
	require.NoError(t, err)
	assert.Len(t, list, 50)
}
