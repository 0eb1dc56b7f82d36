package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/stepwise/internal/app"
	"github.com/felixgeelhaar/stepwise/internal/domain/sequence"
	"github.com/felixgeelhaar/stepwise/internal/tui/components"
	"github.com/felixgeelhaar/stepwise/internal/tui/ui"
)

type runPhase int

const (
	phaseConfirm runPhase = iota
	phaseRunning
	phaseSettling
	phaseDone
)

// requestMsg answers the confirmation prompt.
type requestMsg struct {
	confirmed bool
}

// runModel is the Bubble Tea model for an apply-all run.
type runModel struct {
	ctx     context.Context
	orch    *sequence.Orchestrator
	runner  *app.Runner
	options RunOptions

	phase    runPhase
	decision sequence.Decision
	outcome  sequence.PollOutcome
	snapshot sequence.Snapshot
	stopped  bool
	err      error

	progress components.Progress
	list     components.StepList
	spinner  components.Spinner
	styles   ui.Styles
	keys     ui.KeyMap
	width    int
	height   int
}

func newRunModel(ctx context.Context, orch *sequence.Orchestrator, runner *app.Runner, opts RunOptions) runModel {
	if opts.Interval <= 0 {
		opts.Interval = ui.DefaultFrameInterval
	}
	return runModel{
		ctx:      ctx,
		orch:     orch,
		runner:   runner,
		options:  opts,
		snapshot: orch.Snapshot(),
		progress: components.NewProgress(),
		list:     components.NewStepList(),
		spinner:  components.NewSpinner(),
		styles:   ui.DefaultStyles(),
		keys:     ui.DefaultKeyMap(),
		width:    ui.DefaultWidth,
		height:   ui.DefaultHeight,
	}
}

// Init initializes the model. A confirmed or already satisfied run skips
// the prompt.
func (m runModel) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.WindowSize(), m.spinner.Tick}
	if m.options.AutoConfirm || m.orch.AllComplete() {
		cmds = append(cmds, func() tea.Msg { return requestMsg{confirmed: true} })
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.styles = m.styles.WithWidth(msg.Width)
		m.progress = m.progress.WithWidth(min(msg.Width-10, ui.DefaultProgressBarWidth))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case requestMsg:
		if m.phase != phaseConfirm {
			return m, nil
		}
		return m.request(msg.confirmed)

	case ui.FrameMsg:
		return m.frame()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m runModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.phase {
	case phaseConfirm:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			return m.request(true)
		case key.Matches(msg, m.keys.Decline):
			return m.request(false)
		case key.Matches(msg, m.keys.Stop), key.Matches(msg, m.keys.Quit):
			m.phase = phaseDone
			return m, tea.Quit
		}

	case phaseRunning, phaseSettling:
		if key.Matches(msg, m.keys.Stop) || key.Matches(msg, m.keys.Quit) {
			m.stopped = true
			m.err = errors.Join(m.err, m.orch.Stop(m.ctx))
			m.snapshot = m.orch.Snapshot()
			m.phase = phaseDone
			return m, tea.Quit
		}

	case phaseDone:
		return m, tea.Quit
	}

	return m, nil
}

func (m runModel) request(confirmed bool) (tea.Model, tea.Cmd) {
	confirmer := sequence.ConfirmFunc(func(context.Context, []string) (bool, error) {
		return confirmed, nil
	})

	decision, err := m.orch.Request(m.ctx, confirmer)
	m.decision = decision
	m.snapshot = m.orch.Snapshot()
	if err != nil && !errors.Is(err, sequence.ErrPersistenceUnavailable) {
		m.err = err
		m.phase = phaseDone
		return m, tea.Quit
	}
	m.err = err

	if decision != sequence.DecisionStarted {
		m.phase = phaseDone
		return m, tea.Quit
	}

	m.phase = phaseRunning
	return m, m.nextFrame()
}

func (m runModel) frame() (tea.Model, tea.Cmd) {
	switch m.phase {
	case phaseRunning:
		outcome, err := m.runner.Tick(m.ctx)
		m.outcome = outcome
		m.snapshot = m.orch.Snapshot()
		if err != nil {
			m.err = err
		}
		if outcome.Done() || outcome == sequence.OutcomeIdle ||
			(err != nil && !errors.Is(err, sequence.ErrPersistenceUnavailable)) {
			m.phase = phaseSettling
		}
		return m.settle()

	case phaseSettling:
		return m.settle()
	}
	return m, nil
}

// settle finishes the run once no step is busy.
func (m runModel) settle() (tea.Model, tea.Cmd) {
	if m.phase != phaseSettling || !m.runner.Settled() {
		return m, m.nextFrame()
	}
	m.orch.RefreshAll(m.ctx)
	m.snapshot = m.orch.Snapshot()
	m.phase = phaseDone
	return m, tea.Quit
}

func (m runModel) nextFrame() tea.Cmd {
	return tea.Tick(m.options.Interval, func(t time.Time) tea.Msg {
		return ui.FrameMsg(t)
	})
}

// View renders the model.
func (m runModel) View() string {
	var b strings.Builder

	title := m.options.Title
	if title == "" {
		title = "Apply All"
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n")

	list := m.list.SetSnapshot(m.snapshot)
	if m.phase == phaseRunning || m.phase == phaseSettling {
		list = list.SetSpinner(m.spinner.View())
	}
	b.WriteString(list.View())
	b.WriteString("\n")

	progress := m.progress.Set(m.snapshot.Completed(), len(m.snapshot.Steps))
	b.WriteString(progress.View())
	b.WriteString("\n\n")

	switch m.phase {
	case phaseConfirm:
		pending := len(m.snapshot.Steps) - m.snapshot.Completed()
		b.WriteString(m.styles.Info.Render(fmt.Sprintf("Apply %d pending step(s)?", pending)))
		b.WriteString("\n\n")
		b.WriteString(m.styles.HelpLine(m.keys.Confirm, m.keys.Decline, m.keys.Quit))

	case phaseRunning, phaseSettling:
		status := "Running"
		if cur, ok := m.snapshot.Current(); ok {
			status = "Running: " + cur.Name
		}
		if m.outcome == sequence.OutcomeHostBusy {
			status = "Waiting for host"
		}
		if m.phase == phaseSettling {
			status = "Waiting for steps to settle"
		}
		b.WriteString(m.styles.Info.Render(status))
		b.WriteString("\n\n")
		b.WriteString(m.styles.HelpLine(m.keys.Stop))

	case phaseDone:
		b.WriteString(m.summary())
	}

	b.WriteString("\n")
	return b.String()
}

func (m runModel) summary() string {
	switch {
	case m.decision == sequence.DecisionNothingToDo:
		return m.styles.Success.Render("Nothing to do. Every step is complete.")
	case m.decision == sequence.DecisionDeclined:
		return m.styles.Muted.Render("Cancelled.")
	case m.stopped:
		return m.styles.Warning.Render("Run stopped.")
	case m.err != nil && !errors.Is(m.err, sequence.ErrPersistenceUnavailable):
		return m.styles.Error.Render(m.err.Error())
	case m.snapshot.AllComplete:
		return m.styles.Success.Render("All steps complete!")
	case m.decision == "":
		return m.styles.Muted.Render("Nothing applied.")
	default:
		return m.styles.Warning.Render(fmt.Sprintf("Run finished with %d incomplete step(s).",
			len(m.snapshot.Steps)-m.snapshot.Completed()))
	}
}

func (m runModel) result() *RunResult {
	return &RunResult{
		Decision: m.decision,
		Outcome:  m.outcome,
		Snapshot: m.snapshot,
		Stopped:  m.stopped,
		Err:      m.err,
	}
}
