package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Ledger groups the income and expense services over one store.
type Ledger struct {
	Incomes  *RecordService
	Expenses *RecordService

	store     storage.Store
	publisher Publisher
}

func NewLedger(store storage.Store, publisher Publisher, logger *log.Logger) *Ledger {
	return &Ledger{
		Incomes:   NewRecordService(core.KindIncome, store, publisher, logger),
		Expenses:  NewRecordService(core.KindExpense, store, publisher, logger),
		store:     store,
		publisher: publisher,
	}
}

// For returns the service handling kind.
func (l *Ledger) For(kind core.Kind) (*RecordService, error) {
	switch kind {
	case core.KindIncome:
		return l.Incomes, nil
	case core.KindExpense:
		return l.Expenses, nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidKind, kind)
	}
}

// Close closes the store and, when it can be closed, the publisher.
func (l *Ledger) Close() error {
	var errs []error

	if l.store != nil {
		if err := l.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if c, ok := l.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger: %w", errors.Join(errs...))
	}

	return nil
}

// Snapshot lists both collections concurrently. Incomes and expenses are
// each ordered newest first.
func (l *Ledger) Snapshot(ctx context.Context) (incomes, expenses []core.Transaction, err error) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		incomes, err = l.Incomes.List(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = l.Expenses.List(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return incomes, expenses, nil
}
