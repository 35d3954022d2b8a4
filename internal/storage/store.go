// Package storage holds the record stores behind the income and expense
// collections: an in-memory store and SQLite and PostgreSQL backends.
package storage

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
)

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// Store persists transactions of both kinds. Missing records are reported
// with an error wrapping core.ErrNotFound.
type Store interface {
	// Create assigns id and timestamps and stores the record.
	Create(ctx context.Context, kind core.Kind, p core.Payload) (core.Transaction, error)
	// List returns every record of the kind, newest createdAt first.
	List(ctx context.Context, kind core.Kind) ([]core.Transaction, error)
	Get(ctx context.Context, kind core.Kind, id string) (core.Transaction, error)
	// Update replaces all mutable fields and refreshes updatedAt.
	Update(ctx context.Context, kind core.Kind, id string, p core.Payload) (core.Transaction, error)
	Delete(ctx context.Context, kind core.Kind, id string) error
	Close() error
}

// Option configures a store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for createdAt and updatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

var tables = map[core.Kind]string{
	core.KindIncome:  "incomes",
	core.KindExpense: "expenses",
}

func tableFor(kind core.Kind) (string, error) {
	t, ok := tables[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidKind, kind)
	}
	return t, nil
}

func notFound(kind core.Kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, core.ErrNotFound)
}

// laterOf keeps updatedAt monotonic when the clock moves backwards.
func laterOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return b
	}
	return a
}
