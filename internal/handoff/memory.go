package handoff

import (
	"context"
	"sync"
)

// MemoryStore keeps entries in process memory. It serves single-process runs
// (the run command and the HTTP trigger) and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[address][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[address][]byte)}
}

func (s *MemoryStore) Push(_ context.Context, runID, taskID, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[address{runID, taskID, key}] = v
	return nil
}

func (s *MemoryStore) Pull(_ context.Context, runID, taskID, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[address{runID, taskID, key}]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
