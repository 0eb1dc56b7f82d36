package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/felixgeelhaar/stepwise/internal/adapters/command"
	"github.com/felixgeelhaar/stepwise/internal/adapters/filesystem"
	"github.com/felixgeelhaar/stepwise/internal/adapters/hostprobe"
	"github.com/felixgeelhaar/stepwise/internal/adapters/logging"
	"github.com/felixgeelhaar/stepwise/internal/adapters/prefstore"
	"github.com/felixgeelhaar/stepwise/internal/domain/sequence"
	"github.com/felixgeelhaar/stepwise/internal/domain/setup"
	"github.com/felixgeelhaar/stepwise/internal/ports"
)

// Session is an opened plan: its steps, orchestrator, store and probe.
type Session struct {
	Config       Config
	Plan         *setup.Plan
	Orchestrator *sequence.Orchestrator
	Store        ports.PreferenceStore
	Probe        ports.BusyProbe
	Logger       ports.Logger

	closer func() error
}

type sessionDeps struct {
	fs      ports.FileSystem
	runner  ports.CommandRunner
	locator ports.BinaryLocator
	store   ports.PreferenceStore
	probe   ports.BusyProbe
	logger  ports.Logger
	plan    *setup.Plan
}

// SessionOption overrides a session dependency.
type SessionOption func(*sessionDeps)

// WithFileSystem sets the file system steps and file stores use.
func WithFileSystem(fs ports.FileSystem) SessionOption {
	return func(d *sessionDeps) { d.fs = fs }
}

// WithCommandRunner sets the runner command steps use.
func WithCommandRunner(r ports.CommandRunner) SessionOption {
	return func(d *sessionDeps) { d.runner = r }
}

// WithBinaryLocator sets the PATH lookup command steps use.
func WithBinaryLocator(l ports.BinaryLocator) SessionOption {
	return func(d *sessionDeps) { d.locator = l }
}

// WithStore bypasses the configured store backend.
func WithStore(s ports.PreferenceStore) SessionOption {
	return func(d *sessionDeps) { d.store = s }
}

// WithBusyProbe adds a host probe consulted alongside the configured busy
// globs.
func WithBusyProbe(p ports.BusyProbe) SessionOption {
	return func(d *sessionDeps) { d.probe = p }
}

// WithLogger sets the session logger.
func WithLogger(l ports.Logger) SessionOption {
	return func(d *sessionDeps) { d.logger = l }
}

// WithPlan uses plan instead of reading cfg.Plan.
func WithPlan(plan *setup.Plan) SessionOption {
	return func(d *sessionDeps) { d.plan = plan }
}

// Open loads the plan, opens the store, restores any persisted run and
// refreshes every step.
func Open(ctx context.Context, cfg Config, opts ...SessionOption) (*Session, error) {
	runner := command.NewRealRunner(command.WithDir(cfg.PlanDir()))
	deps := sessionDeps{
		fs:      filesystem.NewRealFileSystem(),
		runner:  runner,
		locator: runner,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	if deps.logger == nil {
		deps.logger = logging.NewNopLogger()
	}

	plan := deps.plan
	if plan == nil {
		var err error
		if plan, err = setup.LoadPlan(cfg.Plan); err != nil {
			return nil, err
		}
	}

	steps, err := setup.Build(plan, setup.Deps{
		FS:      deps.fs,
		Runner:  deps.runner,
		Locator: deps.locator,
		BaseDir: cfg.PlanDir(),
	})
	if err != nil {
		return nil, err
	}

	s := &Session{
		Config: cfg,
		Plan:   plan,
		Logger: deps.logger,
		closer: func() error { return nil },
	}

	s.Store = deps.store
	if s.Store == nil {
		store, err := prefstore.Open(cfg.Store, deps.fs)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
		}
		s.Store = store
		s.closer = store.Close
	}

	glob, err := hostprobe.NewGlob(cfg.PlanDir(), cfg.BusyGlobs, deps.logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Probe = glob
	if deps.probe != nil {
		s.Probe = hostprobe.Any{glob, deps.probe}
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = plan.Namespace
	}

	s.Orchestrator, err = sequence.New(s.Store, steps,
		sequence.WithNamespace(namespace),
		sequence.WithLogger(deps.logger),
		sequence.WithFingerprint(plan.Fingerprint),
	)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	if err := s.Orchestrator.Load(ctx); err != nil {
		if !errors.Is(err, sequence.ErrPersistenceUnavailable) {
			_ = s.Close()
			return nil, err
		}
		deps.logger.Warn(ctx, "could not restore run state, starting idle", ports.F("error", err))
	}
	s.Orchestrator.RefreshAll(ctx)

	deps.logger.Debug(ctx, "session opened",
		ports.F("plan", filepath.Base(cfg.Plan)),
		ports.F("steps", len(steps)),
		ports.F("namespace", namespace))

	return s, nil
}

// Runner creates a host loop over the session's orchestrator.
func (s *Session) Runner(opts ...RunnerOption) *Runner {
	base := []RunnerOption{
		WithInterval(s.Config.PollInterval),
		WithProbe(s.Probe),
		WithRunnerLogger(s.Logger),
	}
	return NewRunner(s.Orchestrator, append(base, opts...)...)
}

// Apply asks confirmer and, on confirmation, runs to completion.
func (s *Session) Apply(ctx context.Context, confirmer sequence.Confirmer, opts ...RunnerOption) (sequence.Decision, Result, error) {
	runner := s.Runner(opts...)
	defer runner.Close()

	decision, err := s.Orchestrator.Request(ctx, confirmer)
	if err != nil && !errors.Is(err, sequence.ErrPersistenceUnavailable) {
		return decision, Result{Snapshot: s.Orchestrator.Snapshot()}, err
	}
	if decision != sequence.DecisionStarted {
		return decision, Result{Snapshot: s.Orchestrator.Snapshot()}, nil
	}

	res, err := runner.Run(ctx)
	return decision, res, err
}

// Resume continues the active run, or a run that was stopped or interrupted
// before it finished, from the step where it stopped.
func (s *Session) Resume(ctx context.Context, opts ...RunnerOption) (Result, error) {
	ok, err := s.Orchestrator.Continue(ctx)
	if !ok {
		return Result{Outcome: sequence.OutcomeIdle, Snapshot: s.Orchestrator.Snapshot()}, err
	}
	if err != nil && !errors.Is(err, sequence.ErrPersistenceUnavailable) {
		return Result{Snapshot: s.Orchestrator.Snapshot()}, err
	}

	runner := s.Runner(opts...)
	defer runner.Close()
	return runner.Run(ctx)
}

// Close releases the store.
func (s *Session) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
