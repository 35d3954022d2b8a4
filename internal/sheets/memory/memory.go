package memory

import (
	"context"
	"sync"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

// Mirror is an in-process mirror used in tests and when no spreadsheet is
// configured. Rows keep the order in which records were first written.
type Mirror struct {
	mu    sync.Mutex
	rows  map[ports.RowRef]core.Transaction
	order []ports.RowRef
}

var _ ports.SyncTarget = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{rows: make(map[ports.RowRef]core.Transaction)}
}

func (m *Mirror) Upsert(_ context.Context, tx core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := ports.RowRef{Kind: tx.Kind, ID: tx.ID}
	if _, ok := m.rows[ref]; !ok {
		m.order = append(m.order, ref)
	}
	m.rows[ref] = tx
	return nil
}

func (m *Mirror) Remove(_ context.Context, kind core.Kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := ports.RowRef{Kind: kind, ID: id}
	if _, ok := m.rows[ref]; !ok {
		return nil
	}
	delete(m.rows, ref)
	for i, r := range m.order {
		if r == ref {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Mirror) Refs(_ context.Context) ([]ports.RowRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.RowRef(nil), m.order...), nil
}

// Rows returns the mirrored records in row order.
func (m *Mirror) Rows() []core.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Transaction, 0, len(m.order))
	for _, r := range m.order {
		out = append(out, m.rows[r])
	}
	return out
}

// Get returns the mirrored copy of a record.
func (m *Mirror) Get(kind core.Kind, id string) (core.Transaction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.rows[ports.RowRef{Kind: kind, ID: id}]
	return tx, ok
}
