package idempotency

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. Entries never expire; a restart
// clears them, which matches the best-effort deduplication contract.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (s *MemoryStore) Processed(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	// Copy so callers cannot mutate the stored entry.
	out := make([]byte, len(result))
	copy(out, result)
	return out, true, nil
}

func (s *MemoryStore) Store(_ context.Context, key string, result []byte) error {
	stored := make([]byte, len(result))
	copy(stored, result)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = stored
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
