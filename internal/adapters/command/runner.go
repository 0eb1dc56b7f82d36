// Package command provides the command execution adapters used by command
// steps.
package command

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/felixgeelhaar/stepwise/internal/ports"
)

// RealRunner executes commands on the host.
type RealRunner struct {
	dir     string
	env     []string
	timeout time.Duration
	logger  ports.Logger
}

// RunnerOption configures a RealRunner.
type RunnerOption func(*RealRunner)

// WithDir sets the working directory commands run in.
func WithDir(dir string) RunnerOption {
	return func(r *RealRunner) {
		r.dir = dir
	}
}

// WithEnv appends KEY=VALUE pairs to the inherited environment.
func WithEnv(env ...string) RunnerOption {
	return func(r *RealRunner) {
		r.env = append(r.env, env...)
	}
}

// WithTimeout bounds each command. Zero means no limit.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *RealRunner) {
		r.timeout = d
	}
}

// WithLogger logs each invocation at debug level.
func WithLogger(logger ports.Logger) RunnerOption {
	return func(r *RealRunner) {
		r.logger = logger
	}
}

// NewRealRunner creates a new RealRunner.
func NewRealRunner(opts ...RunnerOption) *RealRunner {
	r := &RealRunner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a command. A non-zero exit is reported in the result, not as
// an error.
func (r *RealRunner) Run(ctx context.Context, command string, args ...string) (ports.CommandResult, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = r.dir
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	result := ports.CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			result.ExitCode = exitErr.ExitCode()
			err = nil
		}
	}

	if r.logger != nil {
		r.logger.Debug(ctx, "command finished",
			ports.F("command", strings.Join(append([]string{command}, args...), " ")),
			ports.F("exit_code", result.ExitCode),
			ports.F("duration", time.Since(start).Round(time.Millisecond)))
	}

	return result, err
}

// LookPath searches PATH for an executable.
func (r *RealRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

var (
	_ ports.CommandRunner = (*RealRunner)(nil)
	_ ports.BinaryLocator = (*RealRunner)(nil)
)
