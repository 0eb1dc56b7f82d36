package setup

import (
	"sync"

	"github.com/felixgeelhaar/stepwise/internal/domain/sequence"
)

// baseStep holds the flags every step kind reports.
type baseStep struct {
	sequence.Finisher

	name     string
	required bool
	block    bool

	mu       sync.RWMutex
	complete bool
	busy     bool
	failure  error
}

func (s *baseStep) init(spec StepSpec) {
	s.name = spec.Name
	s.required = spec.Required
	s.block = spec.Blocking()
}

func (s *baseStep) Name() string   { return s.name }
func (s *baseStep) Required() bool { return s.required }
func (s *baseStep) Block() bool    { return s.block }

func (s *baseStep) IsComplete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.complete
}

func (s *baseStep) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy
}

// Failure returns the error from the last Execute, if it failed.
func (s *baseStep) Failure() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failure
}

func (s *baseStep) setComplete(complete bool) {
	s.mu.Lock()
	s.complete = complete
	s.mu.Unlock()
}

func (s *baseStep) setBusy(busy bool) {
	s.mu.Lock()
	s.busy = busy
	s.mu.Unlock()
}

func (s *baseStep) setFailure(err error) {
	s.mu.Lock()
	s.failure = err
	s.mu.Unlock()
}
