package sequence

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/stepwise/internal/ports"
	"github.com/google/uuid"
)

// Sentinel is the cursor value meaning no run is active.
const Sentinel = -1

// Orchestrator advances an ordered list of steps one step per Poll.
//
// The orchestrator exclusively owns the cursor; steps never move it. Poll is
// expected to be driven from a single host loop. Finished listeners run on
// whatever goroutine the step completes on and must not call back into the
// orchestrator synchronously.
type Orchestrator struct {
	mu          sync.Mutex
	steps       []Step
	cursor      int
	store       ports.PreferenceStore
	keys        Keys
	logger      ports.Logger
	fingerprint func() int
	machine     *runMachine
	runID       string

	listenersMu  sync.RWMutex
	listeners    []listener
	nextListener uint64
}

type listener struct {
	id uint64
	fn func(StepFinished)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithNamespace sets the preference key namespace.
func WithNamespace(namespace string) Option {
	return func(o *Orchestrator) {
		o.keys = NewKeys(namespace)
	}
}

// WithLogger sets the logger.
func WithLogger(logger ports.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithFingerprint sets the host environment fingerprint. When the
// fingerprint recorded at confirmation differs on Load or Continue, the run
// restarts from the first step. Fingerprints must be non-negative.
func WithFingerprint(fn func() int) Option {
	return func(o *Orchestrator) {
		o.fingerprint = fn
	}
}

// New creates an idle orchestrator over steps. Insertion order is execution
// order. Call Load to pick up a persisted run.
func New(store ports.PreferenceStore, steps []Step, opts ...Option) (*Orchestrator, error) {
	if store == nil {
		return nil, ErrNoStore
	}
	for i, s := range steps {
		if s == nil {
			return nil, fmt.Errorf("%w: index %d", ErrNilStep, i)
		}
	}

	machine, err := newRunMachine()
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		steps:   append([]Step(nil), steps...),
		cursor:  Sentinel,
		store:   store,
		keys:    NewKeys(DefaultNamespace),
		logger:  discardLogger{},
		machine: machine,
	}
	for _, opt := range opts {
		opt(o)
	}

	for i, s := range o.steps {
		index, step := i, s
		step.SetOnFinished(func() { o.emitFinished(index, step) })
	}

	return o, nil
}

// Steps returns the ordered steps.
func (o *Orchestrator) Steps() []Step {
	return append([]Step(nil), o.steps...)
}

// Keys returns the preference keys in use.
func (o *Orchestrator) Keys() Keys {
	return o.keys
}

// Cursor returns the current step index, or Sentinel.
func (o *Orchestrator) Cursor() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cursor
}

// Running reports whether a run is active.
func (o *Orchestrator) Running() bool {
	return o.Cursor() != Sentinel
}

// State returns the run state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.machine.state()
}

// RunID returns the identifier of the current or last run.
func (o *Orchestrator) RunID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.runID
}

// OnStepFinished subscribes fn to step finished notifications. The returned
// function removes the subscription; calling it again is a no-op.
func (o *Orchestrator) OnStepFinished(fn func(StepFinished)) (unsubscribe func()) {
	o.listenersMu.Lock()
	defer o.listenersMu.Unlock()

	o.nextListener++
	id := o.nextListener
	o.listeners = append(o.listeners, listener{id: id, fn: fn})

	return func() {
		o.listenersMu.Lock()
		defer o.listenersMu.Unlock()
		for i, l := range o.listeners {
			if l.id == id {
				o.listeners = append(o.listeners[:i:i], o.listeners[i+1:]...)
				return
			}
		}
	}
}

func (o *Orchestrator) emitFinished(index int, step Step) {
	event := StepFinished{
		Index:    index,
		Name:     step.Name(),
		Complete: step.IsComplete(),
		Failure:  failureOf(step),
	}

	if event.Failure != nil {
		o.logger.Warn(context.Background(), "step finished with failure",
			ports.F("step", event.Name), ports.F("index", index), ports.F("error", event.Failure))
	} else {
		o.logger.Debug(context.Background(), "step finished",
			ports.F("step", event.Name), ports.F("index", index), ports.F("complete", event.Complete))
	}

	o.listenersMu.RLock()
	listeners := append([]listener(nil), o.listeners...)
	o.listenersMu.RUnlock()

	for _, l := range listeners {
		l.fn(event)
	}
}

// Start begins a run at the first step and persists the cursor.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.startLocked(ctx)
}

func (o *Orchestrator) startLocked(ctx context.Context) error {
	o.runID = uuid.NewString()
	o.logger.Info(ctx, "run started", ports.F("run_id", o.runID), ports.F("steps", len(o.steps)))

	if len(o.steps) == 0 {
		return o.finishLocked(ctx)
	}

	o.machine.send(EventStart)
	return errors.Join(
		o.setCursor(ctx, 0),
		o.setInt(ctx, o.keys.Started, 1),
	)
}

// Stop ends the active run and persists the sentinel cursor. The stopped
// position is kept as the last cursor for Continue. Stopping an idle
// orchestrator is a no-op. An in-flight asynchronous step is not cancelled;
// its completion is ignored until the next Start.
func (o *Orchestrator) Stop(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cursor == Sentinel {
		return nil
	}

	last := o.cursor
	o.logger.Info(ctx, "run stopped", ports.F("run_id", o.runID), ports.F("cursor", last))
	o.machine.send(EventStop)

	return errors.Join(
		o.setInt(ctx, o.keys.LastCursor, last),
		o.setCursor(ctx, Sentinel),
	)
}

// Poll makes at most one step of progress. hostBusy defers all inspection.
//
// The returned error is a *StepError matching ErrCannotExecute when the run
// aborts, or matches ErrPersistenceUnavailable when the new cursor could not
// be stored; in-memory progress is kept in that case.
func (o *Orchestrator) Poll(ctx context.Context, hostBusy bool) (PollOutcome, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cursor == Sentinel {
		return OutcomeIdle, nil
	}
	if hostBusy {
		return OutcomeHostBusy, nil
	}
	if o.cursor < 0 || o.cursor >= len(o.steps) {
		return OutcomeFinished, o.finishLocked(ctx)
	}

	index := o.cursor
	step := o.steps[index]

	if step.Block() && step.Busy() {
		if o.machine.state() != StateBlocked {
			o.logger.Debug(ctx, "waiting on busy step", ports.F("step", step.Name()), ports.F("index", index))
			o.machine.send(EventBlock)
		}
		return OutcomeBlocked, nil
	}
	if o.machine.state() == StateBlocked {
		o.machine.send(EventUnblock)
	}

	if step.IsComplete() {
		o.logger.Debug(ctx, "step already complete", ports.F("step", step.Name()), ports.F("index", index))
		return o.advanceLocked(ctx, OutcomeAdvanced)
	}

	if !step.CanExecute() {
		return OutcomeAborted, o.abortLocked(ctx, index, step)
	}

	o.logger.Info(ctx, "executing step", ports.F("step", step.Name()), ports.F("index", index))
	step.Execute(ctx)

	return o.advanceLocked(ctx, OutcomeExecuted)
}

// advanceLocked moves the cursor forward by one, finishing the run when it
// passes the last step.
func (o *Orchestrator) advanceLocked(ctx context.Context, outcome PollOutcome) (PollOutcome, error) {
	next := o.cursor + 1
	if next >= len(o.steps) {
		return OutcomeFinished, o.finishLocked(ctx)
	}
	return outcome, o.setCursor(ctx, next)
}

func (o *Orchestrator) finishLocked(ctx context.Context) error {
	o.logger.Info(ctx, "run finished", ports.F("run_id", o.runID))
	o.machine.send(EventFinish)

	return errors.Join(
		o.setCursor(ctx, Sentinel),
		o.setInt(ctx, o.keys.LastCursor, Sentinel),
		o.setInt(ctx, o.keys.Started, 0),
	)
}

func (o *Orchestrator) abortLocked(ctx context.Context, index int, step Step) error {
	o.logger.Error(ctx, "step cannot execute, aborting run",
		ports.F("run_id", o.runID), ports.F("step", step.Name()), ports.F("index", index))
	o.machine.send(EventAbort)

	stepErr := NewCannotExecuteError(index, step.Name())
	if persistErr := errors.Join(
		o.setInt(ctx, o.keys.Started, 0),
		o.setInt(ctx, o.keys.LastCursor, index),
		o.setCursor(ctx, Sentinel),
	); persistErr != nil {
		return errors.Join(stepErr, persistErr)
	}
	return stepErr
}

// AllComplete reports whether every step is complete, regardless of cursor.
func (o *Orchestrator) AllComplete() bool {
	for _, s := range o.steps {
		if !s.IsComplete() {
			return false
		}
	}
	return true
}

// RequiredIncomplete returns the names of required steps that are not
// complete. Hosts use it to decide whether to force the setup prompt.
func (o *Orchestrator) RequiredIncomplete() []string {
	var names []string
	for _, s := range o.steps {
		if s.Required() && !s.IsComplete() {
			names = append(names, s.Name())
		}
	}
	return names
}

// RefreshAll refreshes every step in order. The cursor is not touched.
func (o *Orchestrator) RefreshAll(ctx context.Context) {
	for _, s := range o.steps {
		s.Refresh(ctx)
	}
}

// Snapshot returns a view of the run and every step.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	cursor := o.cursor
	state := o.machine.state()
	runID := o.runID
	o.mu.Unlock()

	snap := Snapshot{
		State:        state,
		Cursor:       cursor,
		RunID:        runID,
		AllComplete:  true,
		BlockedSince: o.machine.BlockedSince(),
		Steps:        make([]StepStatus, 0, len(o.steps)),
	}

	for i, s := range o.steps {
		st := StepStatus{
			Index:      i,
			Name:       s.Name(),
			Complete:   s.IsComplete(),
			Busy:       s.Busy(),
			Block:      s.Block(),
			CanExecute: s.CanExecute(),
			Required:   s.Required(),
			Current:    i == cursor,
		}
		if err := failureOf(s); err != nil {
			st.Failure = err.Error()
		}
		if !st.Complete {
			snap.AllComplete = false
		}
		snap.Steps = append(snap.Steps, st)
	}

	return snap
}

func (o *Orchestrator) setCursor(ctx context.Context, value int) error {
	o.cursor = value
	return o.setInt(ctx, o.keys.Cursor, value)
}

func (o *Orchestrator) setInt(ctx context.Context, key string, value int) error {
	if err := o.store.SetInt(ctx, key, value); err != nil {
		err = persistenceError("set", key, err)
		o.logger.Warn(ctx, "failed to persist run state", ports.F("key", key), ports.F("error", err))
		return err
	}
	return nil
}

func (o *Orchestrator) getInt(ctx context.Context, key string, def int) (int, error) {
	v, err := o.store.GetInt(ctx, key, def)
	if err != nil {
		return def, persistenceError("get", key, err)
	}
	return v, nil
}
