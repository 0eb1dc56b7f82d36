package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/stepwise/internal/domain/sequence"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Continue a stopped or interrupted run",
	Long: `Resume continues the run recorded in the state store from the step where
it stopped, whether it was interrupted, stopped with "stepwise stop", or
killed. A run started against a different plan restarts from the first step.
Finished, aborted and declined runs are not resumed; use apply instead.`,
	RunE: runResume,
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	ok, err := s.Orchestrator.Continue(ctx)
	if err != nil && !errors.Is(err, sequence.ErrPersistenceUnavailable) {
		return err
	}
	if !ok {
		_, _ = fmt.Fprintln(out, "No active run.")
		return nil
	}

	if cur, ok := s.Orchestrator.Snapshot().Current(); ok {
		_, _ = fmt.Fprintf(out, "Resuming at step %d (%s).\n", cur.Index+1, cur.Name)
	}

	s.Orchestrator.OnStepFinished(func(ev sequence.StepFinished) {
		printStepFinished(out, ev)
	})

	res, err := s.Resume(ctx)
	printSummary(out, res.Snapshot)
	if err != nil && !errors.Is(err, sequence.ErrPersistenceUnavailable) {
		return err
	}
	return nil
}
