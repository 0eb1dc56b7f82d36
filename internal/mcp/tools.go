// Package mcp exposes stepwise runs to AI agents over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/stepwise/internal/app"
	"github.com/felixgeelhaar/stepwise/internal/domain/sequence"
)

// PlanInput selects the plan a tool operates on.
type PlanInput struct {
	PlanPath  string `json:"plan_path,omitempty" jsonschema:"description=Path to the plan file (default: configured plan)"`
	Namespace string `json:"namespace,omitempty" jsonschema:"description=Preference key namespace (default: plan namespace)"`
}

// StatusOutput is the output for the stepwise_status tool.
type StatusOutput struct {
	Version            string                `json:"version"`
	Plan               string                `json:"plan"`
	State              string                `json:"state"`
	Running            bool                  `json:"running"`
	Cursor             int                   `json:"cursor"`
	RunID              string                `json:"run_id,omitempty"`
	AllComplete        bool                  `json:"all_complete"`
	RequiredIncomplete []string              `json:"required_incomplete,omitempty"`
	Steps              []sequence.StepStatus `json:"steps"`
}

// ApplyInput is the input for the stepwise_apply tool.
type ApplyInput struct {
	PlanPath  string `json:"plan_path,omitempty" jsonschema:"description=Path to the plan file (default: configured plan)"`
	Namespace string `json:"namespace,omitempty" jsonschema:"description=Preference key namespace (default: plan namespace)"`
	Confirm   bool   `json:"confirm" jsonschema:"required,description=Must be true to run pending steps (safety confirmation)"`
}

func (in ApplyInput) plan() PlanInput {
	return PlanInput{PlanPath: in.PlanPath, Namespace: in.Namespace}
}

// RunOutput is the output for the stepwise_apply and stepwise_resume tools.
type RunOutput struct {
	Decision    string                `json:"decision,omitempty"`
	Outcome     string                `json:"outcome,omitempty"`
	Pending     []string              `json:"pending,omitempty"`
	Polls       int                   `json:"polls"`
	Stopped     bool                  `json:"stopped"`
	AllComplete bool                  `json:"all_complete"`
	Error       string                `json:"error,omitempty"`
	Steps       []sequence.StepStatus `json:"steps"`
}

// StopOutput is the output for the stepwise_stop tool.
type StopOutput struct {
	WasRunning bool `json:"was_running"`
	LastCursor int  `json:"last_cursor"`
}

// VersionInfo contains version metadata for the MCP server.
type VersionInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// tools opens a fresh session per call; runs are shared through the store.
type tools struct {
	cfg     app.Config
	opts    []app.SessionOption
	version VersionInfo
}

// RegisterAll registers all MCP tools with the server.
func RegisterAll(srv *mcp.Server, cfg app.Config, versionInfo VersionInfo, opts ...app.SessionOption) {
	t := &tools{cfg: cfg, opts: opts, version: versionInfo}

	t.registerStatusTool(srv)
	t.registerApplyTool(srv)
	t.registerResumeTool(srv)
	t.registerStopTool(srv)
}

func (t *tools) open(ctx context.Context, in PlanInput) (*app.Session, error) {
	cfg := t.cfg
	if in.PlanPath != "" {
		cfg.Plan = in.PlanPath
	}
	if in.Namespace != "" {
		cfg.Namespace = in.Namespace
	}
	return app.Open(ctx, cfg, t.opts...)
}

func (t *tools) registerStatusTool(srv *mcp.Server) {
	srv.Tool("stepwise_status").
		Description("Show every step of the plan, whether it is complete, and where an active run is.").
		ReadOnly().
		Handler(func(ctx context.Context, in PlanInput) (*StatusOutput, error) {
			if err := ValidatePlanInput(&in); err != nil {
				return nil, err
			}

			s, err := t.open(ctx, in)
			if err != nil {
				return nil, err
			}
			defer func() { _ = s.Close() }()

			snap := s.Orchestrator.Snapshot()
			return &StatusOutput{
				Version:            t.version.Version,
				Plan:               s.Config.Plan,
				State:              string(snap.State),
				Running:            s.Orchestrator.Running(),
				Cursor:             snap.Cursor,
				RunID:              snap.RunID,
				AllComplete:        snap.AllComplete,
				RequiredIncomplete: s.Orchestrator.RequiredIncomplete(),
				Steps:              snap.Steps,
			}, nil
		})
}

func (t *tools) registerApplyTool(srv *mcp.Server) {
	srv.Tool("stepwise_apply").
		Description("Run every pending step in order until the plan is complete. REQUIRES confirm=true.").
		Destructive().
		Handler(func(ctx context.Context, in ApplyInput) (*RunOutput, error) {
			plan := in.plan()
			if err := ValidatePlanInput(&plan); err != nil {
				return nil, err
			}

			s, err := t.open(ctx, plan)
			if err != nil {
				return nil, err
			}
			defer func() { _ = s.Close() }()

			if !in.Confirm {
				snap := s.Orchestrator.Snapshot()
				return &RunOutput{
					Pending:     pendingNames(snap),
					AllComplete: snap.AllComplete,
					Steps:       snap.Steps,
				}, nil
			}

			decision, res, err := s.Apply(ctx, sequence.AlwaysConfirm)
			out := runOutput(res, err)
			out.Decision = string(decision)
			return out, nil
		})
}

func (t *tools) registerResumeTool(srv *mcp.Server) {
	srv.Tool("stepwise_resume").
		Description("Continue a run that was stopped or interrupted, from the step where it stopped.").
		Destructive().
		Handler(func(ctx context.Context, in PlanInput) (*RunOutput, error) {
			if err := ValidatePlanInput(&in); err != nil {
				return nil, err
			}

			s, err := t.open(ctx, in)
			if err != nil {
				return nil, err
			}
			defer func() { _ = s.Close() }()

			res, err := s.Resume(ctx)
			return runOutput(res, err), nil
		})
}

func (t *tools) registerStopTool(srv *mcp.Server) {
	srv.Tool("stepwise_stop").
		Description("Stop an active run. Completed steps are kept; stepwise_resume continues from the stopped step.").
		Destructive().
		Handler(func(ctx context.Context, in PlanInput) (*StopOutput, error) {
			if err := ValidatePlanInput(&in); err != nil {
				return nil, err
			}

			s, err := t.open(ctx, in)
			if err != nil {
				return nil, err
			}
			defer func() { _ = s.Close() }()

			out := &StopOutput{
				WasRunning: s.Orchestrator.Running(),
				LastCursor: s.Orchestrator.Cursor(),
			}
			if err := s.Orchestrator.Stop(ctx); err != nil {
				return nil, err
			}
			return out, nil
		})
}

func runOutput(res app.Result, err error) *RunOutput {
	out := &RunOutput{
		Outcome:     string(res.Outcome),
		Polls:       res.Polls,
		Stopped:     res.Stopped,
		AllComplete: res.Snapshot.AllComplete,
		Steps:       res.Snapshot.Steps,
	}
	if err != nil {
		out.Error = err.Error()
		var stepErr *sequence.StepError
		if errors.As(err, &stepErr) && stepErr.Suggestion != "" {
			out.Error += " (" + stepErr.Suggestion + ")"
		}
	}
	return out
}

func pendingNames(snap sequence.Snapshot) []string {
	var names []string
	for _, st := range snap.Steps {
		if !st.Complete {
			names = append(names, st.Name)
		}
	}
	return names
}
