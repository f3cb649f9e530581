package repository

import (
	"context"
	"sync"
	"time"
)

// MockCache is an in-memory CacheRepository used in tests and as the
// default wiring when Redis is not configured. TTLs are honored lazily.
type MockCache struct {
	mu      sync.Mutex
	data    map[string]string
	expires map[string]time.Time
}

func NewMockCache() *MockCache {
	return &MockCache{
		data:    make(map[string]string),
		expires: make(map[string]time.Time),
	}
}

func (m *MockCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if exp, ok := m.expires[key]; ok && time.Now().After(exp) {
		delete(m.data, key)
		delete(m.expires, key)
		return "", false
	}
	val, ok := m.data[key]
	return val, ok
}

func (m *MockCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	if ttl > 0 {
		m.expires[key] = time.Now().Add(ttl)
	} else {
		delete(m.expires, key)
	}
	return nil
}
