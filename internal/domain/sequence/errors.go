package sequence

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for orchestrator failures.
const (
	ErrCodeCannotExecute          = "CANNOT_EXECUTE"
	ErrCodeExecutionFailed        = "EXECUTION_FAILED"
	ErrCodePersistenceUnavailable = "PERSISTENCE_UNAVAILABLE"
)

// Sentinel errors.
var (
	// ErrCannotExecute matches the error returned when a run aborts because
	// the current step's preconditions are unmet.
	ErrCannotExecute = &StepError{Code: ErrCodeCannotExecute}

	// ErrExecutionFailed matches a step's own execution failure.
	ErrExecutionFailed = &StepError{Code: ErrCodeExecutionFailed}

	// ErrPersistenceUnavailable matches failures reading or writing the
	// preference store. In-memory progress is kept when it occurs.
	ErrPersistenceUnavailable = errors.New("preference store unavailable")

	ErrNoStore     = errors.New("preference store is required")
	ErrNilStep     = errors.New("step cannot be nil")
	ErrNoConfirmer = errors.New("confirmer is required")
)

// StepError is a user-facing orchestrator error with an actionable suggestion.
type StepError struct {
	Code       string
	Message    string
	Step       string
	Index      int
	Suggestion string
	Underlying error
}

// Error returns the formatted error message.
func (e *StepError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("step %q: %s", e.Step, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Underlying
}

// Is matches another StepError by code.
func (e *StepError) Is(target error) bool {
	var t *StepError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Format returns the error with code, step and suggestion on separate lines.
func (e *StepError) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Step != "" {
		fmt.Fprintf(&b, "\n  Step: %s (#%d)", e.Step, e.Index)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, "\n  Cause: %s", e.Underlying.Error())
	}

	return b.String()
}

// NewCannotExecuteError reports that the step at index cannot run.
func NewCannotExecuteError(index int, step string) *StepError {
	return &StepError{
		Code:       ErrCodeCannotExecute,
		Message:    "step cannot execute; run stopped",
		Step:       step,
		Index:      index,
		Suggestion: "Resolve the step's preconditions and start the run again.",
	}
}

// NewExecutionFailedError wraps a step's own failure.
func NewExecutionFailedError(index int, step string, err error) *StepError {
	return &StepError{
		Code:       ErrCodeExecutionFailed,
		Message:    "step failed to apply",
		Step:       step,
		Index:      index,
		Suggestion: "Fix the reported cause and start the run again; completed steps are skipped.",
		Underlying: err,
	}
}

func persistenceError(op, key string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrPersistenceUnavailable, op, key, err)
}
