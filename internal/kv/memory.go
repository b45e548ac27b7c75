package kv

import (
	"maps"
	"sync"
)

// MemoryStore is an in-memory Store. A positive quota bounds the total size
// of keys and values in bytes.
type MemoryStore struct {
	data  map[string]string
	quota int
	used  int
	mu    sync.Mutex
}

// NewMemoryStore creates an unbounded in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]string),
	}
}

// NewMemoryStoreWithQuota creates an in-memory store that rejects writes
// beyond quota bytes with ErrQuotaExceeded.
func NewMemoryStoreWithQuota(quota int) *MemoryStore {
	s := NewMemoryStore()
	s.quota = quota
	return s
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setLocked(key, value)
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.data[key]; ok {
		s.used -= len(key) + len(old)
		delete(s.data, key)
	}
	return nil
}

func (s *MemoryStore) Update(key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.data[key]
	next, write, err := fn(current, ok)
	if err != nil || !write {
		return err
	}
	return s.setLocked(key, next)
}

// Snapshot returns a copy of every stored entry.
func (s *MemoryStore) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.data)
}

func (s *MemoryStore) setLocked(key, value string) error {
	delta := len(key) + len(value)
	if old, ok := s.data[key]; ok {
		delta -= len(key) + len(old)
	}
	if s.quota > 0 && s.used+delta > s.quota {
		return ErrQuotaExceeded
	}
	s.data[key] = value
	s.used += delta
	return nil
}
