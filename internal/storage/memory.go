package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// MemoryStore keeps records in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.Mutex
	opts  options
	items map[core.Kind][]core.Transaction
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		opts:  buildOptions(opts),
		items: make(map[core.Kind][]core.Transaction),
	}
}

func (s *MemoryStore) Create(_ context.Context, kind core.Kind, p core.Payload) (core.Transaction, error) {
	if _, err := tableFor(kind); err != nil {
		return core.Transaction{}, err
	}
	now := s.opts.now().UTC()
	tx := core.Transaction{
		ID:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.Apply(&tx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[kind] = append(s.items[kind], tx)
	return tx, nil
}

// List returns a copy sorted by createdAt desc; equal timestamps come out in
// reverse insertion order.
func (s *MemoryStore) List(_ context.Context, kind core.Kind) ([]core.Transaction, error) {
	if _, err := tableFor(kind); err != nil {
		return nil, err
	}
	s.mu.Lock()
	items := s.items[kind]
	out := make([]core.Transaction, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		out = append(out, items[i])
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, kind core.Kind, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(kind, id)
	if i < 0 {
		return core.Transaction{}, notFound(kind, id)
	}
	return s.items[kind][i], nil
}

func (s *MemoryStore) Update(_ context.Context, kind core.Kind, id string, p core.Payload) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(kind, id)
	if i < 0 {
		return core.Transaction{}, notFound(kind, id)
	}
	tx := s.items[kind][i]
	p.Apply(&tx)
	tx.UpdatedAt = laterOf(s.opts.now().UTC(), tx.UpdatedAt)
	s.items[kind][i] = tx
	return tx, nil
}

func (s *MemoryStore) Delete(_ context.Context, kind core.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(kind, id)
	if i < 0 {
		return notFound(kind, id)
	}
	items := s.items[kind]
	s.items[kind] = append(items[:i:i], items[i+1:]...)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// indexOf must be called with mu held.
func (s *MemoryStore) indexOf(kind core.Kind, id string) int {
	for i, tx := range s.items[kind] {
		if tx.ID == id {
			return i
		}
	}
	return -1
}
