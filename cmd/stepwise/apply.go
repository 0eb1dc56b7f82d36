package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/stepwise/internal/adapters/logging"
	"github.com/felixgeelhaar/stepwise/internal/app"
	"github.com/felixgeelhaar/stepwise/internal/domain/sequence"
	"github.com/felixgeelhaar/stepwise/internal/tui"
)

var applyTUI bool

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply every pending step in order",
	Long: `Apply asks for confirmation, then applies the plan's steps in order, one
per frame. Steps that are already complete are skipped. A step whose
preconditions are unmet stops the run.

Interrupting apply stops the run; 'stepwise apply' later starts again from
the first step, while 'stepwise resume' continues a run left active by a
crash.

Examples:
  stepwise apply              # Prompt, then apply
  stepwise apply --yes        # Apply without prompting
  stepwise apply --tui        # Interactive view`,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().BoolVar(&applyTUI, "tui", false, "show the interactive run view")
}

func runApply(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var opts []app.SessionOption
	if applyTUI {
		opts = append(opts, app.WithLogger(logging.NewNopLogger()))
	}

	s, err := openSession(ctx, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if applyTUI {
		runner := s.Runner()
		defer runner.Close()

		res, err := tui.RunApply(ctx, s.Orchestrator, runner, tui.NewRunOptions().
			WithTitle(planTitle(s)).
			WithInterval(s.Config.PollInterval).
			WithAutoConfirm(yesFlag))
		if err != nil {
			return err
		}
		if res.Err != nil && !errors.Is(res.Err, sequence.ErrPersistenceUnavailable) {
			return res.Err
		}
		return nil
	}

	confirmer := sequence.AlwaysConfirm
	if !yesFlag {
		confirmer = promptConfirmer(cmd.InOrStdin(), out)
	}

	s.Orchestrator.OnStepFinished(func(ev sequence.StepFinished) {
		printStepFinished(out, ev)
	})

	decision, res, err := s.Apply(ctx, confirmer)
	switch decision {
	case sequence.DecisionNothingToDo:
		_, _ = fmt.Fprintln(out, "Nothing to do. Every step is complete.")
		return nil
	case sequence.DecisionDeclined:
		_, _ = fmt.Fprintln(out, "Cancelled.")
		return nil
	}

	printSummary(out, res.Snapshot)
	if res.Stopped {
		_, _ = fmt.Fprintln(out, "Run stopped.")
	}
	if err != nil && !errors.Is(err, sequence.ErrPersistenceUnavailable) {
		return err
	}
	return nil
}

func planTitle(s *app.Session) string {
	if s.Plan.Name != "" {
		return s.Plan.Name
	}
	return "Apply All"
}
