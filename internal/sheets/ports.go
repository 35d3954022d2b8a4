package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Mirror keeps a one-row-per-record copy of both collections.
type Mirror interface {
	// Upsert overwrites the row holding tx, or writes a new one.
	Upsert(ctx context.Context, tx core.Transaction) error
	// Remove clears the row of the record. A missing row is not an error.
	Remove(ctx context.Context, kind core.Kind, id string) error
}

// RowRef identifies a mirrored record.
type RowRef struct {
	Kind core.Kind
	ID   string
}

// Lister reports which records currently have a row, used by full resyncs
// to drop rows whose record no longer exists.
type Lister interface {
	Refs(ctx context.Context) ([]RowRef, error)
}

// SyncTarget is what the worker needs from a mirror.
type SyncTarget interface {
	Mirror
	Lister
}
