// Package tui provides the interactive terminal view for apply-all runs.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/stepwise/internal/app"
	"github.com/felixgeelhaar/stepwise/internal/domain/sequence"
)

// RunOptions configures the run TUI.
type RunOptions struct {
	// Title is shown above the step list.
	Title string
	// Interval is the frame period; zero uses ui.DefaultFrameInterval.
	Interval time.Duration
	// AutoConfirm starts the run without prompting.
	AutoConfirm bool
}

// NewRunOptions creates default run options.
func NewRunOptions() RunOptions {
	return RunOptions{}
}

// WithTitle sets the title.
func (o RunOptions) WithTitle(title string) RunOptions {
	o.Title = title
	return o
}

// WithInterval sets the frame period.
func (o RunOptions) WithInterval(d time.Duration) RunOptions {
	o.Interval = d
	return o
}

// WithAutoConfirm skips the confirmation prompt.
func (o RunOptions) WithAutoConfirm(auto bool) RunOptions {
	o.AutoConfirm = auto
	return o
}

// RunResult holds the result of a TUI run.
type RunResult struct {
	Decision sequence.Decision
	Outcome  sequence.PollOutcome
	Snapshot sequence.Snapshot
	Stopped  bool
	Err      error
}

// RunApply prompts for confirmation and drives the run frame by frame
// until it ends or the user stops it.
func RunApply(ctx context.Context, orch *sequence.Orchestrator, runner *app.Runner, opts RunOptions) (*RunResult, error) {
	model := newRunModel(ctx, orch, runner, opts)

	p := tea.NewProgram(model, tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("apply view failed: %w", err)
	}

	m, ok := finalModel.(runModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}

	return m.result(), nil
}
