package app

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/stepwise/internal/adapters/logging"
	"github.com/felixgeelhaar/stepwise/internal/domain/sequence"
	"github.com/felixgeelhaar/stepwise/internal/ports"
)

// Frame is reported to observers after every poll.
type Frame struct {
	Outcome  sequence.PollOutcome
	Snapshot sequence.Snapshot
	Err      error
}

// Result summarises a finished Run.
type Result struct {
	Outcome  sequence.PollOutcome
	Polls    int
	Snapshot sequence.Snapshot
	Stopped  bool
}

// Runner is the host loop: it polls the orchestrator once per frame and
// refreshes every step when one finishes asynchronous work.
type Runner struct {
	orch     *sequence.Orchestrator
	probe    ports.BusyProbe
	interval time.Duration
	logger   ports.Logger
	observe  func(Frame)

	finished    chan sequence.StepFinished
	unsubscribe func()
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithInterval sets the frame period.
func WithInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithProbe sets the host busy probe.
func WithProbe(p ports.BusyProbe) RunnerOption {
	return func(r *Runner) {
		r.probe = p
	}
}

// WithRunnerLogger sets the logger.
func WithRunnerLogger(l ports.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithObserver receives every frame on the loop goroutine.
func WithObserver(fn func(Frame)) RunnerOption {
	return func(r *Runner) {
		r.observe = fn
	}
}

// NewRunner creates a runner over orch.
func NewRunner(orch *sequence.Orchestrator, opts ...RunnerOption) *Runner {
	r := &Runner{
		orch:     orch,
		interval: DefaultPollInterval,
		finished: make(chan sequence.StepFinished, len(orch.Steps())+1),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.NewNopLogger()
	}

	r.unsubscribe = orch.OnStepFinished(func(ev sequence.StepFinished) {
		select {
		case r.finished <- ev:
		default:
			// A refresh is already queued and covers this event.
		}
	})

	return r
}

// Close detaches the runner from step finished events. A closed runner must
// not be used again.
func (r *Runner) Close() {
	r.unsubscribe()
}

// Run polls until the run ends. Cancelling ctx stops the run; the stored
// state then records where it was stopped. After the run ends Run waits for
// in-flight steps to settle so the returned snapshot is final.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var res Result
	for {
		select {
		case <-ctx.Done():
			stopCtx := context.WithoutCancel(ctx)
			r.logger.Info(stopCtx, "run interrupted, stopping", ports.F("run_id", r.orch.RunID()))
			res.Stopped = true
			stopErr := r.orch.Stop(stopCtx)
			res.Snapshot = r.orch.Snapshot()
			return res, errors.Join(ctx.Err(), stopErr)

		case <-r.finished:
			r.drain()
			r.orch.RefreshAll(ctx)

		case <-ticker.C:
			outcome, err := r.orch.Poll(ctx, r.hostBusy(ctx))
			res.Polls++
			res.Outcome = outcome
			r.emit(outcome, err)

			if err != nil && !errors.Is(err, sequence.ErrPersistenceUnavailable) {
				r.settle(ctx, ticker)
				res.Snapshot = r.orch.Snapshot()
				return res, err
			}
			if outcome.Done() || outcome == sequence.OutcomeIdle {
				r.settle(ctx, ticker)
				res.Snapshot = r.orch.Snapshot()
				return res, nil
			}
		}
	}
}

// Tick runs one host frame without a ticker; hosts with their own frame
// clock, such as the TUI, call it directly.
func (r *Runner) Tick(ctx context.Context) (sequence.PollOutcome, error) {
	select {
	case <-r.finished:
		r.drain()
		r.orch.RefreshAll(ctx)
	default:
	}

	outcome, err := r.orch.Poll(ctx, r.hostBusy(ctx))
	r.emit(outcome, err)
	return outcome, err
}

// Settled reports whether no step is busy.
func (r *Runner) Settled() bool {
	for _, s := range r.orch.Steps() {
		if s.Busy() {
			return false
		}
	}
	return true
}

func (r *Runner) hostBusy(ctx context.Context) bool {
	return r.probe != nil && r.probe.Busy(ctx)
}

func (r *Runner) emit(outcome sequence.PollOutcome, err error) {
	if err != nil {
		r.logger.Warn(context.Background(), "poll failed", ports.F("outcome", outcome), ports.F("error", err))
	}
	if r.observe != nil {
		r.observe(Frame{Outcome: outcome, Snapshot: r.orch.Snapshot(), Err: err})
	}
}

func (r *Runner) drain() {
	for {
		select {
		case <-r.finished:
		default:
			return
		}
	}
}

// settle waits until no step is busy, then refreshes once more.
func (r *Runner) settle(ctx context.Context, ticker *time.Ticker) {
	for !r.Settled() {
		select {
		case <-ctx.Done():
			return
		case <-r.finished:
		case <-ticker.C:
		}
	}
	r.drain()
	r.orch.RefreshAll(ctx)
}
