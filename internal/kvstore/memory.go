package kvstore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore holds slots in a process-local map. It backs tests and the
// fallback path when the durable store cannot be opened.
type MemoryStore struct {
	mu      sync.RWMutex
	slots   map[string][]byte
	latency time.Duration
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(latency time.Duration) *MemoryStore {
	return &MemoryStore{slots: make(map[string][]byte), latency: latency}
}

// Load returns a copy of the slot payload if present.
func (s *MemoryStore) Load(_ context.Context, collection string) ([]byte, bool, error) {
	simulateLatency(s.latency)

	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.slots[collection]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, true, nil
}

// Save overwrites the slot with a copy of the payload.
func (s *MemoryStore) Save(_ context.Context, collection string, payload []byte) error {
	simulateLatency(s.latency)

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(payload))
	copy(stored, payload)
	s.slots[collection] = stored
	return nil
}
