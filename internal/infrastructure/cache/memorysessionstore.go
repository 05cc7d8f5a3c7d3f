package cache

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/shoppingos/sospay/internal/domain/session"
)

var _ session.Store = (*MemorySessionStore)(nil)

// MemorySessionStore is the single-process fallback used when redis is disabled.
// Values go through JSON so behaviour matches the redis store.
type MemorySessionStore struct {
	mu   sync.Mutex
	data map[string]map[string][]byte
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{data: make(map[string]map[string][]byte)}
}

func (s *MemorySessionStore) Load(id string) session.Session {
	return &memorySession{store: s, id: id}
}

type memorySession struct {
	store *MemorySessionStore
	id    string
}

func (m *memorySession) ID() string {
	return m.id
}

func (m *memorySession) Get(_ context.Context, key string, dest any) (bool, error) {
	m.store.mu.Lock()
	raw, ok := m.store.data[m.id][key]
	m.store.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memorySession) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if m.store.data[m.id] == nil {
		m.store.data[m.id] = make(map[string][]byte)
	}
	m.store.data[m.id][key] = raw
	return nil
}

func (m *memorySession) Delete(_ context.Context, key string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	delete(m.store.data[m.id], key)
	return nil
}
