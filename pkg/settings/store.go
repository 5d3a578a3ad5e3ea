// Package settings persists the string-keyed properties of configuration modules and
// keeps every node's view of them current.
package settings

import (
	"context"
	"sync"
)

// Store persists module properties. The Postgres implementation lives in pkg/db.
type Store interface {
	Properties(ctx context.Context, module string) (map[string]string, error)
	SetProperties(ctx context.Context, module string, values map[string]string) error
	RemoveProperties(ctx context.Context, module string, keys []string) error
}

// MemoryStore is an in-process Store, used when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	modules map[string]map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{modules: make(map[string]map[string]string)}
}

// Properties returns a copy of the module's properties.
func (s *MemoryStore) Properties(_ context.Context, module string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.modules[module]))
	for k, v := range s.modules[module] {
		out[k] = v
	}
	return out, nil
}

// SetProperties inserts or overwrites the given properties.
func (s *MemoryStore) SetProperties(_ context.Context, module string, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.modules[module]
	if !ok {
		m = make(map[string]string, len(values))
		s.modules[module] = m
	}
	for k, v := range values {
		m[k] = v
	}
	return nil
}

// RemoveProperties deletes the given keys; missing keys are ignored.
func (s *MemoryStore) RemoveProperties(_ context.Context, module string, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.modules[module], k)
	}
	return nil
}
