package sessionrepofakes

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-college-portal/sessions"
)

var _ sessions.Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory sessions.Store. FailSet and FailRemove, when set,
// are returned for writes to the matching keys.
type MemoryStore struct {
	values     map[string]string
	FailSet    map[string]error
	FailRemove map[string]error
	lock       sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:     make(map[string]string),
		FailSet:    make(map[string]error),
		FailRemove: make(map[string]error),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if err := m.FailSet[key]; err != nil {
		return err
	}
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if err := m.FailRemove[key]; err != nil {
		return err
	}
	delete(m.values, key)
	return nil
}

// Has reports whether key is present
func (m *MemoryStore) Has(key string) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, ok := m.values[key]
	return ok
}

// Len returns the number of stored keys
func (m *MemoryStore) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.values)
}
