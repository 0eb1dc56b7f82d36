package mocks

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/stepwise/internal/domain/sequence"
)

// Step is a scriptable sequence.Step. By default Execute completes the step
// synchronously; Async makes Execute hold the step busy until Settle.
type Step struct {
	sequence.Finisher

	mu         sync.Mutex
	name       string
	complete   bool
	busy       bool
	block      bool
	canExecute bool
	required   bool
	async      bool
	failure    error
	executions int
	refreshes  int
}

// NewStep creates an incomplete, executable step.
func NewStep(name string) *Step {
	return &Step{name: name, canExecute: true}
}

// Completed marks the step complete.
func (s *Step) Completed() *Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complete = true
	return s
}

// Blocked makes the step blocking.
func (s *Step) Blocked() *Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.block = true
	return s
}

// Async makes Execute leave the step busy until Settle is called.
func (s *Step) Async() *Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.async = true
	s.block = true
	return s
}

// Requires marks the step required.
func (s *Step) Requires() *Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.required = true
	return s
}

// Unexecutable makes CanExecute return false.
func (s *Step) Unexecutable() *Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canExecute = false
	return s
}

// Settle ends in-flight asynchronous work, completing the step unless err is
// set, and notifies the finished callback.
func (s *Step) Settle(err error) {
	s.mu.Lock()
	s.busy = false
	s.failure = err
	s.complete = err == nil
	s.mu.Unlock()

	s.NotifyFinished()
}

// SetComplete overrides the completion flag, simulating an external change.
func (s *Step) SetComplete(complete bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complete = complete
}

// Name implements sequence.Step.
func (s *Step) Name() string { return s.name }

// Refresh implements sequence.Step.
func (s *Step) Refresh(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes++
}

// IsComplete implements sequence.Step.
func (s *Step) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// Busy implements sequence.Step.
func (s *Step) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Block implements sequence.Step.
func (s *Step) Block() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.block
}

// CanExecute implements sequence.Step.
func (s *Step) CanExecute() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canExecute
}

// Required implements sequence.Step.
func (s *Step) Required() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.required
}

// Failure implements sequence.FailureReporter.
func (s *Step) Failure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

// Execute implements sequence.Step.
func (s *Step) Execute(context.Context) {
	s.mu.Lock()
	s.executions++
	if s.async {
		s.busy = true
		s.mu.Unlock()
		return
	}
	s.complete = true
	s.mu.Unlock()

	s.NotifyFinished()
}

// Executions returns how many times Execute ran.
func (s *Step) Executions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executions
}

// Refreshes returns how many times Refresh ran.
func (s *Step) Refreshes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

var (
	_ sequence.Step            = (*Step)(nil)
	_ sequence.FailureReporter = (*Step)(nil)
)
