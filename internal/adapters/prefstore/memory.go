package prefstore

import (
	"context"
	"sync"
)

// Memory keeps preferences for the life of the process.
type Memory struct {
	mu     sync.RWMutex
	values map[string]int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]int)}
}

// GetInt returns the stored value or def.
func (m *Memory) GetInt(_ context.Context, key string, def int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return def, nil
}

// SetInt stores value.
func (m *Memory) SetInt(_ context.Context, key string, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
