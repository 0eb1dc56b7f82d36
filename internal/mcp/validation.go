package mcp

import (
	"fmt"

	"github.com/felixgeelhaar/stepwise/internal/validation"
)

// ValidatePlanInput validates PlanInput fields.
func ValidatePlanInput(in *PlanInput) error {
	if err := validation.ValidatePlanPath(in.PlanPath); err != nil {
		return fmt.Errorf("invalid plan_path: %w", err)
	}
	if err := validation.ValidateNamespace(in.Namespace); err != nil {
		return fmt.Errorf("invalid namespace: %w", err)
	}
	return nil
}
