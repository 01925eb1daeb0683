// Package memory is an in-process KeyValueStore. Nothing survives a restart;
// it backs the "memory" storage driver and the service tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/repository"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("memory: store is closed")

var _ repository.KeyValueStore = (*Store)(nil)

type Store struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.data, key)
	return nil
}

func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
