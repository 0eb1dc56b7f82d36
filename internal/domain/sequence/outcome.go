package sequence

// PollOutcome describes what a single Poll did.
type PollOutcome string

const (
	// OutcomeIdle means no run is active.
	OutcomeIdle PollOutcome = "idle"
	// OutcomeHostBusy means the host reported busy and nothing was inspected.
	OutcomeHostBusy PollOutcome = "host-busy"
	// OutcomeBlocked means the current step is blocking and busy.
	OutcomeBlocked PollOutcome = "blocked"
	// OutcomeAdvanced means the current step was already complete.
	OutcomeAdvanced PollOutcome = "advanced"
	// OutcomeExecuted means the current step was executed and passed.
	OutcomeExecuted PollOutcome = "executed"
	// OutcomeFinished means the cursor moved past the last step.
	OutcomeFinished PollOutcome = "finished"
	// OutcomeAborted means the current step could not execute.
	OutcomeAborted PollOutcome = "aborted"
)

// String returns the outcome name.
func (o PollOutcome) String() string {
	return string(o)
}

// Done reports whether the run ended with this poll.
func (o PollOutcome) Done() bool {
	return o == OutcomeFinished || o == OutcomeAborted
}
