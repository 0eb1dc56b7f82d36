package main

import (
	"fmt"
	"io"

	"github.com/felixgeelhaar/stepwise/internal/domain/sequence"
)

// Step markers.
const (
	markDone    = "✓"
	markPending = "○"
	markFailed  = "✗"
	markBlocked = "!"
)

// printStepFinished reports a step that finished asynchronous work.
func printStepFinished(w io.Writer, ev sequence.StepFinished) {
	if ev.Failure != nil {
		_, _ = fmt.Fprintf(w, "  %s %s: %v\n", markFailed, ev.Name, ev.Failure)
		return
	}
	if ev.Complete {
		_, _ = fmt.Fprintf(w, "  %s %s\n", markDone, ev.Name)
	}
}

// printSteps prints one line per step of snap.
func printSteps(w io.Writer, snap sequence.Snapshot) {
	for _, st := range snap.Steps {
		mark := markPending
		detail := ""
		switch {
		case st.Complete:
			mark = markDone
		case st.Failure != "":
			mark = markFailed
			detail = ": " + st.Failure
		case !st.CanExecute:
			mark = markBlocked
			detail = ": cannot execute"
		}
		_, _ = fmt.Fprintf(w, "  %s %s%s\n", mark, st.Name, detail)
	}
}

// printSummary prints the final line of a run.
func printSummary(w io.Writer, snap sequence.Snapshot) {
	if snap.AllComplete {
		_, _ = fmt.Fprintln(w, "All steps complete.")
		return
	}
	_, _ = fmt.Fprintf(w, "%d of %d steps complete.\n", snap.Completed(), len(snap.Steps))
}
