package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/stepwise/internal/validation"
)

func TestValidatePlanInput(t *testing.T) {
	tests := []struct {
		name    string
		input   PlanInput
		wantErr error
	}{
		{name: "defaults", input: PlanInput{}},
		{name: "plan and namespace", input: PlanInput{PlanPath: "setup/plan.yaml", Namespace: "acme"}},
		{name: "injection", input: PlanInput{PlanPath: "plan;rm.yaml"}, wantErr: validation.ErrCommandInjection},
		{name: "not yaml", input: PlanInput{PlanPath: "plan.toml"}, wantErr: validation.ErrInvalidPlanPath},
		{name: "bad namespace", input: PlanInput{Namespace: "a..b"}, wantErr: validation.ErrInvalidNamespace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlanInput(&tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
