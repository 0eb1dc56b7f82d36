package setup

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for plan problems.
const (
	ErrCodePlanNotFound  = "PLAN_NOT_FOUND"
	ErrCodePlanParse     = "PLAN_PARSE"
	ErrCodePlanInvalid   = "PLAN_INVALID"
	ErrCodeStepDuplicate = "STEP_DUPLICATE"
)

// Sentinel errors for errors.Is matching by code.
var (
	ErrPlanNotFound  = &PlanError{Code: ErrCodePlanNotFound}
	ErrPlanParse     = &PlanError{Code: ErrCodePlanParse}
	ErrPlanInvalid   = &PlanError{Code: ErrCodePlanInvalid}
	ErrStepDuplicate = &PlanError{Code: ErrCodeStepDuplicate}
)

// PlanError is a user-friendly plan error with an actionable suggestion.
type PlanError struct {
	Code       string
	Message    string
	Context    string
	Suggestion string
	Underlying error
}

// Error returns the message and its location.
func (e *PlanError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s (at %s)", e.Message, e.Context)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *PlanError) Unwrap() error {
	return e.Underlying
}

// Is matches another PlanError by code.
func (e *PlanError) Is(target error) bool {
	var t *PlanError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Format returns the error with all details.
func (e *PlanError) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, "\n  Location: %s", e.Context)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, "\n  Cause: %s", e.Underlying.Error())
	}

	return b.String()
}

func newInvalidStepError(index int, name, message string) *PlanError {
	ctx := fmt.Sprintf("steps[%d]", index)
	if name != "" {
		ctx = fmt.Sprintf("steps[%d] %q", index, name)
	}
	return &PlanError{
		Code:       ErrCodePlanInvalid,
		Message:    message,
		Context:    ctx,
		Suggestion: "See the kind's required fields: setting needs file/key/value, command needs check/apply, file needs path.",
	}
}
