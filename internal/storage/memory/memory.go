// Package memory provides an in-process cart storage backend. It is the
// default for local development and the injectable fake for tests.
package memory

import (
	"context"
	"sync"

	"github.com/lumea-beauty/storefront/internal/domain/cart"
)

var _ cart.Storage = (*Storage)(nil)

// Storage keeps cart payloads in a process-local map.
type Storage struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// New creates an empty in-memory storage.
func New() *Storage {
	return &Storage{values: make(map[string][]byte)}
}

// Get returns the stored value for key, or cart.ErrNotFound.
func (s *Storage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, cart.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores value under key, replacing any previous value.
func (s *Storage) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	s.values[key] = v
	return nil
}

// Delete removes the value for key. Deleting an absent key is not an error.
func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}
