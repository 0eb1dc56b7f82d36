package sequence

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/stepwise/internal/ports"
	"github.com/google/uuid"
)

// Decision is the result of a Request.
type Decision string

const (
	// DecisionStarted means the user confirmed and the run was started.
	DecisionStarted Decision = "started"
	// DecisionDeclined means the user declined and the run was stopped.
	DecisionDeclined Decision = "declined"
	// DecisionNothingToDo means every step was already complete.
	DecisionNothingToDo Decision = "nothing-to-do"
)

// Confirmer asks the user whether a run should proceed.
type Confirmer interface {
	Confirm(ctx context.Context, pending []string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, pending []string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, pending []string) (bool, error) {
	return f(ctx, pending)
}

// AlwaysConfirm is a Confirmer that accepts without asking.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, []string) (bool, error) {
	return true, nil
})

// Request is the "apply all" entry point. When every step is already complete
// it reports DecisionNothingToDo instead of starting. Otherwise it marks a run
// as requested and asks confirmer; on confirmation it records the host
// fingerprint and starts, otherwise it stops.
func (o *Orchestrator) Request(ctx context.Context, confirmer Confirmer) (Decision, error) {
	if confirmer == nil {
		return "", ErrNoConfirmer
	}

	if o.AllComplete() {
		o.logger.Info(ctx, "all steps complete, nothing to do")
		return DecisionNothingToDo, o.lockedSetInt(ctx, o.keys.Started, 0)
	}

	persistErr := o.lockedSetInt(ctx, o.keys.Started, 1)

	ok, err := confirmer.Confirm(ctx, o.pending())
	if err != nil {
		return "", errors.Join(err, persistErr)
	}
	if !ok {
		o.logger.Info(ctx, "run declined")
		return DecisionDeclined, errors.Join(persistErr, o.Stop(ctx), o.lockedSetInt(ctx, o.keys.Started, 0))
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.fingerprint != nil {
		persistErr = errors.Join(persistErr, o.setInt(ctx, o.keys.Fingerprint, o.fingerprint()))
	}
	return DecisionStarted, errors.Join(persistErr, o.startLocked(ctx))
}

// Load restores persisted run state into a freshly constructed orchestrator.
//
// An active run whose recorded fingerprint no longer matches the host
// restarts from the first step. Otherwise the persisted cursor is resumed;
// values outside the step range resolve to Sentinel. Load never starts a run
// that was not active when the state was stored.
func (o *Orchestrator) Load(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	started, err := o.getInt(ctx, o.keys.Started, 0)
	if err != nil {
		return err
	}
	cursor, err := o.getInt(ctx, o.keys.Cursor, Sentinel)
	if err != nil {
		return err
	}

	if cursor < 0 || cursor >= len(o.steps) {
		o.cursor = Sentinel
		if cursor != Sentinel {
			return o.setCursor(ctx, Sentinel)
		}
		return nil
	}

	if started == 1 {
		restarted, err := o.restartIfHostChangedLocked(ctx)
		if restarted || err != nil {
			return err
		}
	}

	o.resumeLocked(ctx, cursor, "resuming run")
	return o.setInt(ctx, o.keys.LastCursor, Sentinel)
}

// Continue resumes a run that was stopped before it finished, at the step
// where it was stopped. It reports false when no stopped run is recorded:
// the run finished, aborted, was declined, or never started. A running
// orchestrator reports true and is left untouched.
func (o *Orchestrator) Continue(ctx context.Context) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cursor != Sentinel {
		return true, nil
	}

	started, err := o.getInt(ctx, o.keys.Started, 0)
	if err != nil {
		return false, err
	}
	last, err := o.getInt(ctx, o.keys.LastCursor, Sentinel)
	if err != nil {
		return false, err
	}
	if started != 1 || last < 0 || last >= len(o.steps) {
		return false, nil
	}

	restarted, err := o.restartIfHostChangedLocked(ctx)
	if restarted {
		return true, err
	}
	if err != nil {
		return false, err
	}

	o.resumeLocked(ctx, last, "continuing stopped run")
	return true, errors.Join(
		o.setCursor(ctx, last),
		o.setInt(ctx, o.keys.LastCursor, Sentinel),
	)
}

// restartIfHostChangedLocked restarts the run from the first step when a
// fingerprint was recorded at confirmation and the host no longer matches it.
func (o *Orchestrator) restartIfHostChangedLocked(ctx context.Context) (bool, error) {
	if o.fingerprint == nil {
		return false, nil
	}
	recorded, err := o.getInt(ctx, o.keys.Fingerprint, Sentinel)
	if err != nil {
		return false, err
	}
	current := o.fingerprint()
	if recorded == Sentinel || recorded == current {
		return false, nil
	}

	o.logger.Info(ctx, "host changed during run, restarting from first step",
		ports.F("recorded", recorded), ports.F("current", current))
	return true, errors.Join(
		o.setInt(ctx, o.keys.Fingerprint, current),
		o.startLocked(ctx),
	)
}

func (o *Orchestrator) resumeLocked(ctx context.Context, cursor int, msg string) {
	o.cursor = cursor
	o.runID = uuid.NewString()
	o.machine.send(EventStart)
	o.logger.Info(ctx, msg,
		ports.F("run_id", o.runID), ports.F("cursor", cursor), ports.F("step", o.steps[cursor].Name()))
}

func (o *Orchestrator) pending() []string {
	var names []string
	for _, s := range o.steps {
		if !s.IsComplete() {
			names = append(names, s.Name())
		}
	}
	return names
}

func (o *Orchestrator) lockedSetInt(ctx context.Context, key string, value int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.setInt(ctx, key, value)
}
