package notifications

import (
	"context"
	"sync"
)

// MemoryReadStore keeps read lists for the life of the process. It backs the
// service when no persisted store is configured.
type MemoryReadStore struct {
	mu  sync.RWMutex
	ids map[string][]string
}

func NewMemoryReadStore() *MemoryReadStore {
	return &MemoryReadStore{ids: make(map[string][]string)}
}

func (m *MemoryReadStore) ReadIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.ids[userID]...), nil
}

func (m *MemoryReadStore) SaveReadIDs(_ context.Context, userID string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[userID] = append([]string(nil), ids...)
	return nil
}
