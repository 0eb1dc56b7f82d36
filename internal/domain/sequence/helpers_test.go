package sequence

import (
	"context"
	"errors"
	"sync"
)

var errStoreDown = errors.New("store down")

type memStore struct {
	mu     sync.Mutex
	values map[string]int
	fail   bool
	sets   int
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]int)}
}

func (s *memStore) GetInt(_ context.Context, key string, def int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return def, errStoreDown
	}
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return def, nil
}

func (s *memStore) SetInt(_ context.Context, key string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errStoreDown
	}
	s.values[key] = value
	s.sets++
	return nil
}

func (s *memStore) snapshot() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s *memStore) setFail(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}

// fakeStep is a scripted Step. When deferred is set, Execute only takes
// effect on the next Refresh.
type fakeStep struct {
	Finisher

	mu         sync.Mutex
	name       string
	complete   bool
	busy       bool
	block      bool
	canExecute bool
	required   bool
	deferred   bool
	pending    bool
	failure    error
	executed   int
	refreshed  int
	onExecute  func()
}

func newStep(name string) *fakeStep {
	return &fakeStep{name: name, canExecute: true}
}

func (s *fakeStep) Name() string { return s.name }

func (s *fakeStep) Refresh(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshed++
	if s.pending {
		s.complete = true
		s.pending = false
	}
}

func (s *fakeStep) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

func (s *fakeStep) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *fakeStep) Block() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.block
}

func (s *fakeStep) CanExecute() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canExecute
}

func (s *fakeStep) Required() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.required
}

func (s *fakeStep) Failure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

func (s *fakeStep) Execute(context.Context) {
	s.mu.Lock()
	s.executed++
	if s.deferred {
		s.pending = true
	} else {
		s.complete = true
	}
	hook := s.onExecute
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
}

func (s *fakeStep) setBusy(busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = busy
}

func (s *fakeStep) executions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executed
}

func completeStep(name string) *fakeStep {
	s := newStep(name)
	s.complete = true
	return s
}

func steps(ss ...*fakeStep) []Step {
	out := make([]Step, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
