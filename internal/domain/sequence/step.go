// Package sequence drives an ordered list of setup steps to completion one
// step at a time, persisting its cursor so a run survives process restarts.
package sequence

import (
	"context"
	"sync"
)

// Step is one idempotent check-and-fix unit.
//
// IsComplete must be re-derived from ambient state by Refresh and Execute and
// never be staler than the last of those calls. Execute is only meaningful when
// the step is incomplete, can execute and is not busy.
//
// A step whose Execute starts asynchronous work must report Busy before
// Execute returns and keep Block true, clear Busy from its completion
// continuation, re-derive IsComplete, and then invoke the finished callback.
type Step interface {
	// Name identifies the step in logs and status output.
	Name() string

	// Refresh re-derives the step's flags from ambient state.
	Refresh(ctx context.Context)

	IsComplete() bool
	Busy() bool

	// Block makes the orchestrator wait on this step while it is Busy.
	Block() bool

	// CanExecute reports whether the preconditions for Execute hold.
	CanExecute() bool

	// Required steps make a host force the setup prompt. The orchestrator
	// itself does not consult it when advancing.
	Required() bool

	// Execute applies the step's fix.
	Execute(ctx context.Context)

	// SetOnFinished installs the callback invoked whenever the step's
	// asynchronous work settles.
	SetOnFinished(fn func())
}

// FailureReporter is implemented by steps that can surface the failure of
// their last Execute. A failed step stays incomplete.
type FailureReporter interface {
	Failure() error
}

// Finisher stores a step's finished callback. Embed it to satisfy
// Step.SetOnFinished.
type Finisher struct {
	mu sync.RWMutex
	fn func()
}

// SetOnFinished installs fn, replacing any previous callback.
func (f *Finisher) SetOnFinished(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fn = fn
}

// NotifyFinished invokes the installed callback, if any.
func (f *Finisher) NotifyFinished() {
	f.mu.RLock()
	fn := f.fn
	f.mu.RUnlock()

	if fn != nil {
		fn()
	}
}

// failureOf returns the step's last failure, if it reports one.
func failureOf(step Step) error {
	if r, ok := step.(FailureReporter); ok {
		return r.Failure()
	}
	return nil
}
