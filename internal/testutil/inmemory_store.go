package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	xerrors "orgbilling-service/internal/pkg/errors"
)

// InMemoryStore is a keyed map guarded by a mutex. Setting Err makes every call
// fail with it, which is how tests simulate a storage outage.
type InMemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	err   error
}

func NewInMemoryStore[T any]() *InMemoryStore[T] {
	return &InMemoryStore[T]{items: make(map[string]T)}
}

// FailWith makes subsequent calls return err. Pass nil to recover.
func (s *InMemoryStore[T]) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *InMemoryStore[T]) Create(_ context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.items[id]; ok {
		return fmt.Errorf("item %s already exists: %w", id, xerrors.ErrConflict)
	}
	s.items[id] = item
	return nil
}

func (s *InMemoryStore[T]) Get(_ context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var zero T
	if s.err != nil {
		return zero, s.err
	}
	item, ok := s.items[id]
	if !ok {
		return zero, xerrors.ErrNotFound
	}
	return item, nil
}

func (s *InMemoryStore[T]) Update(_ context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.items[id]; !ok {
		return xerrors.ErrNotFound
	}
	s.items[id] = item
	return nil
}

func (s *InMemoryStore[T]) Upsert(_ context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.items[id] = item
	return nil
}

func (s *InMemoryStore[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	delete(s.items, id)
	return nil
}

// List returns items ordered by id.
func (s *InMemoryStore[T]) List(_ context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.items[id])
	}
	return out, nil
}

func (s *InMemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
