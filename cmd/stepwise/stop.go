package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the active run",
	Long: `Stop ends the run recorded in the state store. Steps already applied stay
applied; "stepwise resume" continues from the stopped step.`,
	RunE: runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	cur, ok := s.Orchestrator.Snapshot().Current()
	if !s.Orchestrator.Running() || !ok {
		_, _ = fmt.Fprintln(out, "No active run.")
		return nil
	}

	if err := s.Orchestrator.Stop(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Stopped run at step %d (%s).\n", cur.Index+1, cur.Name)
	return nil
}
