// Package components provides reusable views for the stepwise TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/stepwise/internal/tui/ui"
)

// Progress displays a step counter as a bar.
type Progress struct {
	current int
	total   int
	width   int
	styles  ui.Styles
}

// NewProgress creates a new progress component.
func NewProgress() Progress {
	return Progress{
		width:  ui.DefaultProgressBarWidth,
		styles: ui.DefaultStyles(),
	}
}

// Percent returns the completed fraction (0.0 to 1.0).
func (p Progress) Percent() float64 {
	if p.total == 0 {
		return 0
	}
	return float64(p.current) / float64(p.total)
}

// Current returns the completed step count.
func (p Progress) Current() int {
	return p.current
}

// Total returns the step count.
func (p Progress) Total() int {
	return p.total
}

// Set updates the completed and total counts, clamping current to [0, total].
func (p Progress) Set(current, total int) Progress {
	if total < 0 {
		total = 0
	}
	if current < 0 {
		current = 0
	}
	if current > total {
		current = total
	}
	p.current = current
	p.total = total
	return p
}

// WithWidth sets the progress bar width.
func (p Progress) WithWidth(width int) Progress {
	if width > 2 {
		p.width = width
	}
	return p
}

// View renders the progress bar.
func (p Progress) View() string {
	barWidth := p.width - 2
	filled := int(p.Percent() * float64(barWidth))

	bar := fmt.Sprintf("[%s%s]",
		strings.Repeat("█", filled),
		strings.Repeat("░", barWidth-filled),
	)

	return fmt.Sprintf("%s %d/%d", p.styles.ProgressBar.Render(bar), p.current, p.total)
}

// Spinner displays an animated spinner with optional message.
type Spinner struct {
	spinner spinner.Model
	message string
}

// NewSpinner creates a new spinner component.
func NewSpinner() Spinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ui.DefaultStyles().Spinner

	return Spinner{spinner: s}
}

// Message returns the current message.
func (s Spinner) Message() string {
	return s.message
}

// SetMessage sets the spinner message.
func (s Spinner) SetMessage(message string) Spinner {
	s.message = message
	return s
}

// Tick returns the command that starts the animation.
func (s Spinner) Tick() tea.Msg {
	return s.spinner.Tick()
}

// Update handles spinner animation.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner.
func (s Spinner) View() string {
	if s.message != "" {
		return fmt.Sprintf("%s %s", s.spinner.View(), s.message)
	}
	return s.spinner.View()
}
