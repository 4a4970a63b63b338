package usage

import (
	"context"
	"sync"
)

// memoryStore keeps quota records in process memory. Suitable for dev
// and for deployments that accept counters resetting on restart.
type memoryStore struct {
	mu      sync.RWMutex
	records map[string]record
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]record)}
}

func (m *memoryStore) Get(_ context.Context, userID string) (record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[userID]
	return rec, ok, nil
}

func (m *memoryStore) Save(_ context.Context, userID string, rec record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[userID] = rec
	return nil
}
