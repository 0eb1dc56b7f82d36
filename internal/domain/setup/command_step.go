package setup

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/felixgeelhaar/stepwise/internal/domain/sequence"
	"github.com/felixgeelhaar/stepwise/internal/ports"
)

// CommandStep is complete when its check command exits 0 (and, when
// configured, a tool reports a high enough version). Execute runs the apply
// command in the background.
type CommandStep struct {
	baseStep

	runner   ports.CommandRunner
	locator  ports.BinaryLocator
	index    int
	check    []string
	apply    []string
	requires []string
	version  *VersionSpec

	wg sync.WaitGroup
}

// NewCommandStep creates a command step at position index in its plan.
func NewCommandStep(spec StepSpec, index int, runner ports.CommandRunner, locator ports.BinaryLocator) *CommandStep {
	s := &CommandStep{
		runner:   runner,
		locator:  locator,
		index:    index,
		check:    spec.Check,
		apply:    spec.Apply,
		requires: spec.Requires,
		version:  spec.Version,
	}
	s.init(spec)
	return s
}

// Refresh re-runs the check. It is skipped while the apply command runs.
func (s *CommandStep) Refresh(ctx context.Context) {
	if s.Busy() {
		return
	}
	s.setComplete(s.probe(ctx))
}

func (s *CommandStep) probe(ctx context.Context) bool {
	result, err := s.runner.Run(ctx, s.check[0], s.check[1:]...)
	if err != nil || !result.Success() {
		return false
	}
	if s.version == nil {
		return true
	}

	result, err = s.runner.Run(ctx, s.version.Command[0], s.version.Command[1:]...)
	if err != nil || !result.Success() {
		return false
	}
	return versionAtLeast(result.Stdout+"\n"+result.Stderr, s.version.Min)
}

// CanExecute requires every listed binary to be on PATH.
func (s *CommandStep) CanExecute() bool {
	for _, bin := range s.requires {
		if _, err := s.locator.LookPath(bin); err != nil {
			return false
		}
	}
	return true
}

// Execute marks the step busy and starts the apply command. Cancelling ctx
// does not interrupt a command that has already started.
func (s *CommandStep) Execute(ctx context.Context) {
	s.setBusy(true)
	s.setFailure(nil)

	runCtx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.finish(runCtx, s.run(runCtx))
	}()
}

func (s *CommandStep) run(ctx context.Context) error {
	result, err := s.runner.Run(ctx, s.apply[0], s.apply[1:]...)
	if err != nil {
		return err
	}
	if !result.Success() {
		msg := strings.TrimSpace(result.Stderr)
		if msg == "" {
			msg = strings.TrimSpace(result.Stdout)
		}
		if msg == "" {
			return fmt.Errorf("exit status %d", result.ExitCode)
		}
		return fmt.Errorf("exit status %d: %s", result.ExitCode, msg)
	}
	return nil
}

func (s *CommandStep) finish(ctx context.Context, err error) {
	if err != nil {
		s.setFailure(sequence.NewExecutionFailedError(s.index, s.name, err))
	}
	s.setComplete(s.probe(ctx))
	s.setBusy(false)
	s.NotifyFinished()
}

// Wait blocks until background apply commands have settled.
func (s *CommandStep) Wait() {
	s.wg.Wait()
}
