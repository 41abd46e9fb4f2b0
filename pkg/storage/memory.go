package storage

import (
	"context"
	"sync"

	"github.com/angelmondragon/meaw-storefront/pkg/config"
)

// MemoryStore keeps snapshots in process memory. Used by tests and MEAW_STORAGE_DRIVER=memory.
type MemoryStore struct {
	mu        sync.RWMutex
	namespace string
	values    map[string][]byte
}

func NewMemoryStore(namespace string) *MemoryStore {
	return &MemoryStore{
		namespace: namespaceOrDefault(namespace),
		values:    map[string][]byte{},
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[Key(s.namespace, key)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[Key(s.namespace, key)] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, Key(s.namespace, key))
	return nil
}

// Len reports how many snapshots are held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Driver() string { return config.StorageDriverMemory }
