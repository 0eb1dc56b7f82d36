package sequence

import "time"

// StepStatus is a point-in-time view of one step.
type StepStatus struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Complete   bool   `json:"complete"`
	Busy       bool   `json:"busy"`
	Block      bool   `json:"block"`
	CanExecute bool   `json:"can_execute"`
	Required   bool   `json:"required"`
	Current    bool   `json:"current"`
	Failure    string `json:"failure,omitempty"`
}

// NeedsAttention reports whether a host should flag the step to the user.
func (s StepStatus) NeedsAttention() bool {
	return !s.Complete && (s.Failure != "" || !s.CanExecute)
}

// Snapshot is a point-in-time view of the orchestrator.
type Snapshot struct {
	State        State        `json:"state"`
	Cursor       int          `json:"cursor"`
	RunID        string       `json:"run_id,omitempty"`
	AllComplete  bool         `json:"all_complete"`
	BlockedSince time.Time    `json:"blocked_since,omitempty"`
	Steps        []StepStatus `json:"steps"`
}

// Completed returns the number of complete steps.
func (s Snapshot) Completed() int {
	n := 0
	for _, st := range s.Steps {
		if st.Complete {
			n++
		}
	}
	return n
}

// Current returns the status of the step under the cursor.
func (s Snapshot) Current() (StepStatus, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Steps) {
		return StepStatus{}, false
	}
	return s.Steps[s.Cursor], true
}

// StepFinished is delivered to OnStepFinished subscribers.
type StepFinished struct {
	Index    int
	Name     string
	Complete bool
	Failure  error
}
