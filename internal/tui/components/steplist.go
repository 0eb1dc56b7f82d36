package components

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/stepwise/internal/domain/sequence"
	"github.com/felixgeelhaar/stepwise/internal/tui/ui"
)

// Step markers.
const (
	MarkDone    = "✓"
	MarkPending = "○"
	MarkFailed  = "✗"
	MarkBlocked = "!"
)

// StepList renders the steps of a snapshot, one per line.
type StepList struct {
	snapshot sequence.Snapshot
	spinner  string
	styles   ui.Styles
}

// NewStepList creates an empty step list.
func NewStepList() StepList {
	return StepList{styles: ui.DefaultStyles()}
}

// SetSnapshot replaces the rendered snapshot.
func (l StepList) SetSnapshot(s sequence.Snapshot) StepList {
	l.snapshot = s
	return l
}

// SetSpinner sets the frame drawn next to busy steps.
func (l StepList) SetSpinner(frame string) StepList {
	l.spinner = frame
	return l
}

// View renders the list.
func (l StepList) View() string {
	var b strings.Builder
	for _, st := range l.snapshot.Steps {
		b.WriteString(l.line(st))
		b.WriteString("\n")
	}
	return b.String()
}

func (l StepList) line(st sequence.StepStatus) string {
	name := st.Name
	if st.Required {
		name += " " + l.styles.Muted.Render("(required)")
	}

	switch {
	case st.Complete:
		return l.styles.StepDone.Render(MarkDone + " " + name)
	case st.Busy:
		frame := l.spinner
		if frame == "" {
			frame = MarkPending
		}
		return l.styles.StepCurrent.Render(frame + " " + name)
	case st.Failure != "":
		return l.styles.StepFailed.Render(fmt.Sprintf("%s %s: %s", MarkFailed, name, st.Failure))
	case !st.CanExecute:
		return l.styles.StepFailed.Render(fmt.Sprintf("%s %s: cannot execute", MarkBlocked, name))
	case st.Current:
		return l.styles.StepCurrent.Render(MarkPending + " " + name)
	default:
		return l.styles.StepPending.Render(MarkPending + " " + name)
	}
}
