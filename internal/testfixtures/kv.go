package testfixtures

import (
	"context"
	"sync"

	"github.com/example/satellite-console/internal/store"
)

// MemoryKV is an in-memory store.KV for tests. Individual operations can be
// forced to fail to exercise degraded-cache paths.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string]string

	// FailGet, FailSet, FailReset, when non-nil, are returned by the
	// corresponding operation instead of touching the map.
	FailGet   error
	FailSet   error
	FailReset error
}

// NewMemoryKV returns an empty in-memory key-value store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

// Seed stores the provided pairs without going through failure injection.
func (m *MemoryKV) Seed(pairs map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, value := range pairs {
		m.data[key] = value
	}
}

// Len reports the number of stored keys.
func (m *MemoryKV) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// Get implements store.KV.
func (m *MemoryKV) Get(ctx context.Context, key string) (string, error) {
	if m.FailGet != nil {
		return "", m.FailGet
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return value, nil
}

// Set implements store.KV.
func (m *MemoryKV) Set(ctx context.Context, key, value string) error {
	if m.FailSet != nil {
		return m.FailSet
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Delete implements store.KV.
func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Reset implements store.KV.
func (m *MemoryKV) Reset(ctx context.Context) error {
	if m.FailReset != nil {
		return m.FailReset
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string)
	return nil
}

var _ store.KV = (*MemoryKV)(nil)
