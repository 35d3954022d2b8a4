package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage"
	mock_storage "fintrack/internal/storage/mocks"
)

func TestLedger_Snapshot(t *testing.T) {
	ctx := context.Background()
	ledger := services.NewLedger(storage.NewMemoryStore(), nil, quietLogger())

	_, err := ledger.Incomes.Create(ctx, incomePayload())
	require.NoError(t, err)
	p := incomePayload()
	p.Category = "groceries"
	p.Title = "Food"
	_, err = ledger.Expenses.Create(ctx, p)
	require.NoError(t, err)

	incomes, expenses, err := ledger.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, incomes, 1)
	require.Len(t, expenses, 1)
	assert.Equal(t, core.KindIncome, incomes[0].Kind)
	assert.Equal(t, "Food", expenses[0].Title)
}

func TestLedger_SnapshotError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mock_storage.NewMockStore(ctrl)
	store.EXPECT().List(gomock.Any(), core.KindIncome).Return(nil, nil).AnyTimes()
	store.EXPECT().List(gomock.Any(), core.KindExpense).Return(nil, errors.New("connection reset"))

	ledger := services.NewLedger(store, nil, quietLogger())
	_, _, err := ledger.Snapshot(context.Background())

	var storeErr *services.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Contains(t, storeErr.Op, "expense")
}

func TestLedger_For(t *testing.T) {
	ledger := services.NewLedger(storage.NewMemoryStore(), nil, quietLogger())

	svc, err := ledger.For(core.KindExpense)
	require.NoError(t, err)
	assert.Equal(t, core.KindExpense, svc.Kind())

	_, err = ledger.For(core.Kind("loan"))
	assert.ErrorIs(t, err, core.ErrInvalidKind)
}

type closingPublisher struct {
	closed bool
}

func (p *closingPublisher) PublishRecordEvent(context.Context, amqp.RecordEvent) error { return nil }

func (p *closingPublisher) Close() error {
	p.closed = true
	return errors.New("already closed")
}

func TestLedger_Close(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mock_storage.NewMockStore(ctrl)
	store.EXPECT().Close().Return(nil)
	pub := &closingPublisher{}

	err := services.NewLedger(store, pub, quietLogger()).Close()

	assert.True(t, pub.closed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amqp: already closed")
}
