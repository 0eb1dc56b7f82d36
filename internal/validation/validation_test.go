package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBinaryName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "simple name", input: "go", wantErr: nil},
		{name: "with hyphen", input: "golangci-lint", wantErr: nil},
		{name: "with dot", input: "python3.11", wantErr: nil},
		{name: "with plus", input: "g++", wantErr: nil},

		{name: "empty", input: "", wantErr: ErrEmptyInput},
		{name: "with semicolon", input: "go;rm -rf", wantErr: ErrInvalidBinaryName},
		{name: "with slash", input: "/usr/bin/go", wantErr: ErrInvalidBinaryName},
		{name: "with space", input: "go lang", wantErr: ErrInvalidBinaryName},
		{name: "starts with hyphen", input: "-go", wantErr: ErrInvalidBinaryName},
		{name: "too long", input: strings.Repeat("a", 300), wantErr: ErrInvalidBinaryName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBinaryName(tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateNamespace(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty uses default", input: "", wantErr: nil},
		{name: "simple", input: "stepwise", wantErr: nil},
		{name: "dotted", input: "acme.project-setup", wantErr: nil},

		{name: "space", input: "my ns", wantErr: ErrInvalidNamespace},
		{name: "trailing dot", input: "acme.", wantErr: ErrInvalidNamespace},
		{name: "empty segment", input: "acme..setup", wantErr: ErrInvalidNamespace},
		{name: "leading dot", input: ".acme", wantErr: ErrInvalidNamespace},
		{name: "too long", input: strings.Repeat("a", 200), wantErr: ErrInvalidNamespace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNamespace(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePlanPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty uses configured", input: "", wantErr: nil},
		{name: "yaml", input: "stepwise.yaml", wantErr: nil},
		{name: "nested yml", input: "setup/plan.yml", wantErr: nil},

		{name: "json", input: "plan.json", wantErr: ErrInvalidPlanPath},
		{name: "traversal", input: "../../etc/plan.yaml", wantErr: ErrPathTraversal},
		{name: "encoded traversal", input: "%2E%2E/plan.yaml", wantErr: ErrPathTraversal},
		{name: "null byte", input: "plan\x00.yaml", wantErr: ErrInvalidPath},
		{name: "shell meta", input: "$(id).yaml", wantErr: ErrCommandInjection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlanPath(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePathWithBase(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		base    string
		wantErr error
	}{
		{name: "relative inside", path: ".editor/settings.json", base: "/w", wantErr: nil},
		{name: "absolute inside", path: "/w/a/b", base: "/w", wantErr: nil},
		{name: "base itself", path: ".", base: "/w", wantErr: nil},

		{name: "escapes", path: "../etc/passwd", base: "/w", wantErr: ErrPathTraversal},
		{name: "sibling prefix", path: "/workspace/x", base: "/w", wantErr: ErrPathTraversal},
		{name: "empty", path: "", base: "/w", wantErr: ErrEmptyInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithBase(tt.path, tt.base)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
