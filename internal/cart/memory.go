package cart

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStorage is an in-process Storage used by tests and local runs without
// a redis. TTLs are ignored; expiry is enforced at the envelope level by the
// Store itself.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: map[string]string{}}
}

func (m *MemoryStorage) Lookup(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case string:
		m.values[key] = v
	case []byte:
		m.values[key] = string(v)
	default:
		return nil
	}
	return nil
}

func (m *MemoryStorage) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *MemoryStorage) CartKey(sessionID string) string {
	return strings.Join([]string{"wp", "quote_cart", sessionID}, ":")
}

func (m *MemoryStorage) CartSavedAtKey(sessionID string) string {
	return m.CartKey(sessionID) + ":saved_at"
}
