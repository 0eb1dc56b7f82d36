package setup

import (
	"fmt"
	"hash/fnv"
	"path/filepath"

	"github.com/felixgeelhaar/stepwise/internal/domain/sequence"
	"github.com/felixgeelhaar/stepwise/internal/ports"
)

// Deps are the ports steps act through.
type Deps struct {
	FS      ports.FileSystem
	Runner  ports.CommandRunner
	Locator ports.BinaryLocator

	// BaseDir resolves relative step paths, normally the plan's directory.
	BaseDir string
}

// Build compiles the plan into steps, in plan order.
func Build(plan *Plan, deps Deps) ([]sequence.Step, error) {
	steps := make([]sequence.Step, 0, len(plan.Steps))

	for i, spec := range plan.Steps {
		switch spec.Kind {
		case KindSetting:
			steps = append(steps, NewSettingStep(spec, deps.resolve(spec.File), deps.FS))
		case KindCommand:
			steps = append(steps, NewCommandStep(spec, i, deps.Runner, deps.Locator))
		case KindFile:
			steps = append(steps, NewFileStep(spec, deps.resolve(spec.Path), deps.FS))
		default:
			return nil, newInvalidStepError(i, spec.Name, fmt.Sprintf("unknown step kind %q", spec.Kind))
		}
	}

	return steps, nil
}

func (d Deps) resolve(path string) string {
	path = ports.ExpandPath(path)
	if filepath.IsAbs(path) || d.BaseDir == "" {
		return path
	}
	return filepath.Join(d.BaseDir, path)
}

// Fingerprint identifies the plan's step list. A stored cursor is only
// meaningful against the same fingerprint.
func (p *Plan) Fingerprint() int {
	h := fnv.New32a()
	for _, s := range p.Steps {
		_, _ = h.Write([]byte(s.Name))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(s.Kind))
		_, _ = h.Write([]byte{0})
	}
	return int(h.Sum32() & 0x7fffffff)
}
