// Package setup defines declarative setup plans and the step kinds they
// compile to.
package setup

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/stepwise/internal/validation"
)

// Kind selects the step implementation.
type Kind string

const (
	// KindSetting ensures a key in a settings document has a value.
	KindSetting Kind = "setting"
	// KindCommand runs a check command and, when it fails, an apply command.
	KindCommand Kind = "command"
	// KindFile ensures a file has exact content.
	KindFile Kind = "file"
)

// Plan is an ordered list of setup steps.
type Plan struct {
	Name      string     `yaml:"name"`
	Namespace string     `yaml:"namespace,omitempty"`
	Steps     []StepSpec `yaml:"steps"`
}

// StepSpec declares one step. Which fields apply depends on Kind.
type StepSpec struct {
	Name     string `yaml:"name"`
	Kind     Kind   `yaml:"kind"`
	Required bool   `yaml:"required,omitempty"`
	Block    *bool  `yaml:"block,omitempty"`

	// setting
	File   string      `yaml:"file,omitempty"`
	Format Format      `yaml:"format,omitempty"`
	Key    string      `yaml:"key,omitempty"`
	Value  interface{} `yaml:"value,omitempty"`

	// command
	Check    []string     `yaml:"check,omitempty"`
	Apply    []string     `yaml:"apply,omitempty"`
	Requires []string     `yaml:"requires,omitempty"`
	Version  *VersionSpec `yaml:"version,omitempty"`

	// file
	Path    string `yaml:"path,omitempty"`
	Content string `yaml:"content,omitempty"`
}

// VersionSpec requires a tool's reported version to be at least Min.
type VersionSpec struct {
	Command []string `yaml:"command"`
	Min     string   `yaml:"min"`
}

// LoadPlan reads and validates a plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &PlanError{
				Code:       ErrCodePlanNotFound,
				Message:    "plan file not found",
				Context:    path,
				Suggestion: "Create stepwise.yaml or pass --plan.",
				Underlying: err,
			}
		}
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}

	plan, err := ParsePlan(data)
	if err != nil {
		var planErr *PlanError
		if errors.As(err, &planErr) && planErr.Context == "" {
			planErr.Context = path
		}
		return nil, err
	}
	return plan, nil
}

// ParsePlan decodes and validates plan YAML.
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&plan); err != nil {
		return nil, &PlanError{
			Code:       ErrCodePlanParse,
			Message:    "plan is not valid YAML",
			Suggestion: "Check indentation and field names.",
			Underlying: err,
		}
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Validate checks names, kinds and per-kind required fields.
func (p *Plan) Validate() error {
	p.Namespace = strings.TrimSpace(p.Namespace)
	if err := validation.ValidateNamespace(p.Namespace); err != nil {
		return &PlanError{
			Code:       ErrCodePlanInvalid,
			Message:    err.Error(),
			Context:    "namespace",
			Suggestion: "Use letters, digits, dots, dashes and underscores.",
			Underlying: err,
		}
	}

	seen := make(map[string]int, len(p.Steps))

	for i := range p.Steps {
		s := &p.Steps[i]
		s.Name = strings.TrimSpace(s.Name)

		if s.Name == "" {
			return newInvalidStepError(i, "", "step name is required")
		}
		if prev, ok := seen[s.Name]; ok {
			return &PlanError{
				Code:       ErrCodeStepDuplicate,
				Message:    fmt.Sprintf("step name %q is already used by steps[%d]", s.Name, prev),
				Context:    fmt.Sprintf("steps[%d]", i),
				Suggestion: "Each step must have a unique name; it identifies the step in status output.",
			}
		}
		seen[s.Name] = i

		if err := s.validate(i); err != nil {
			return err
		}
	}

	return nil
}

func (s *StepSpec) validate(i int) error {
	switch s.Kind {
	case KindSetting:
		if s.File == "" || s.Key == "" {
			return newInvalidStepError(i, s.Name, "setting step needs file and key")
		}
		if s.Value == nil {
			return newInvalidStepError(i, s.Name, "setting step needs value")
		}
		if s.Format == "" {
			s.Format = FormatFromPath(s.File)
		}
		if !s.Format.Valid() {
			return newInvalidStepError(i, s.Name, fmt.Sprintf("unknown settings format %q", s.Format))
		}
	case KindCommand:
		if len(s.Check) == 0 || len(s.Apply) == 0 {
			return newInvalidStepError(i, s.Name, "command step needs check and apply")
		}
		for _, bin := range s.Requires {
			if err := validation.ValidateBinaryName(bin); err != nil {
				return newInvalidStepError(i, s.Name, fmt.Sprintf("requires: %v", err))
			}
		}
		if s.Version != nil && (len(s.Version.Command) == 0 || s.Version.Min == "") {
			return newInvalidStepError(i, s.Name, "version needs command and min")
		}
		if s.Version != nil && !validVersion(s.Version.Min) {
			return newInvalidStepError(i, s.Name, fmt.Sprintf("min version %q is not a semantic version", s.Version.Min))
		}
	case KindFile:
		if s.Path == "" {
			return newInvalidStepError(i, s.Name, "file step needs path")
		}
	case "":
		return newInvalidStepError(i, s.Name, "step kind is required")
	default:
		return newInvalidStepError(i, s.Name, fmt.Sprintf("unknown step kind %q", s.Kind))
	}
	return nil
}

// Blocking returns the step's Block flag; command steps block by default.
func (s StepSpec) Blocking() bool {
	if s.Block != nil {
		return *s.Block
	}
	return s.Kind == KindCommand
}
