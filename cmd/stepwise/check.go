package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// errRequiredIncomplete is returned by check when a required step is not complete.
var errRequiredIncomplete = errors.New("required steps are incomplete")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Exit non-zero when a required step is incomplete",
	Long: `Check refreshes every step without applying anything. It fails when a step
marked required is not complete, so CI and editor hooks can gate on it.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	out := cmd.OutOrStdout()
	missing := s.Orchestrator.RequiredIncomplete()
	if len(missing) == 0 {
		_, _ = fmt.Fprintln(out, "All required steps complete.")
		return nil
	}

	for _, name := range missing {
		_, _ = fmt.Fprintf(out, "  %s %s\n", markFailed, name)
	}
	return fmt.Errorf("%w: %s", errRequiredIncomplete, strings.Join(missing, ", "))
}
