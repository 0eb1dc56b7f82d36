package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/felixgeelhaar/stepwise/internal/ports"
)

// ErrStoreDown is returned by a PreferenceStore after Fail is called.
var ErrStoreDown = errors.New("store down")

// PreferenceStore is a thread-safe in-memory test double for
// ports.PreferenceStore that can simulate an unreachable backend.
type PreferenceStore struct {
	mu     sync.RWMutex
	values map[string]int
	failed bool
	writes []string
}

// NewPreferenceStore creates an empty store.
func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{values: make(map[string]int)}
}

// GetInt returns the stored value or def.
func (s *PreferenceStore) GetInt(_ context.Context, key string, def int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failed {
		return def, ErrStoreDown
	}
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return def, nil
}

// SetInt stores value.
func (s *PreferenceStore) SetInt(_ context.Context, key string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed {
		return ErrStoreDown
	}
	s.values[key] = value
	s.writes = append(s.writes, key)
	return nil
}

// Fail makes every subsequent call return ErrStoreDown.
func (s *PreferenceStore) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = true
}

// Recover undoes Fail.
func (s *PreferenceStore) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = false
}

// Value returns the raw stored value and whether it exists.
func (s *PreferenceStore) Value(key string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Values returns a copy of all stored values.
func (s *PreferenceStore) Values() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Writes returns the keys written, in order.
func (s *PreferenceStore) Writes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.writes...)
}

var _ ports.PreferenceStore = (*PreferenceStore)(nil)
