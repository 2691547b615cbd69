// Package memory keeps transactions in process memory. It backs tests and
// the "memory" backend.
package memory

import (
	"context"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type Store struct {
	mu    sync.Mutex
	items []core.Transaction
	// FailAppend, when set, is returned by Append.
	FailAppend error
}

// New returns a store seeded with txs.
func New(txs ...core.Transaction) *Store {
	return &Store{items: append([]core.Transaction(nil), txs...)}
}

func (s *Store) LoadAll(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction{}, s.items...), nil
}

func (s *Store) Append(_ context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAppend != nil {
		return &core.StorageError{Op: "append", Err: s.FailAppend}
	}
	s.items = append(s.items, tx)
	return nil
}

func (s *Store) NextID(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.NextID(s.items), nil
}

// Len reports how many transactions are stored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
