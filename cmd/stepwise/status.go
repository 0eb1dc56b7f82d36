package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/felixgeelhaar/stepwise/internal/app"
	"github.com/felixgeelhaar/stepwise/internal/domain/sequence"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show each step and the active run",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
}

// statusReport is the --json shape of status.
type statusReport struct {
	Plan               string            `json:"plan"`
	Namespace          string            `json:"namespace"`
	Store              string            `json:"store"`
	RequiredIncomplete []string          `json:"required_incomplete,omitempty"`
	Run                sequence.Snapshot `json:"run"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	report := statusReport{
		Plan:               s.Config.Plan,
		Namespace:          namespaceOf(s),
		Store:              string(s.Config.Store.Backend),
		RequiredIncomplete: s.Orchestrator.RequiredIncomplete(),
		Run:                s.Orchestrator.Snapshot(),
	}

	if statusJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return printStatus(cmd.OutOrStdout(), report)
}

func namespaceOf(s *app.Session) string {
	switch {
	case s.Config.Namespace != "":
		return s.Config.Namespace
	case s.Plan.Namespace != "":
		return s.Plan.Namespace
	default:
		return sequence.DefaultNamespace
	}
}

func printStatus(w io.Writer, report statusReport) error {
	caser := cases.Title(language.English)
	snap := report.Run

	_, _ = fmt.Fprintf(w, "Plan:  %s (%s)\n", report.Plan, report.Namespace)
	_, _ = fmt.Fprintf(w, "Store: %s\n", report.Store)
	_, _ = fmt.Fprintf(w, "Run:   %s", caser.String(string(snap.State)))
	if cur, ok := snap.Current(); ok {
		_, _ = fmt.Fprintf(w, " at step %d (%s)", cur.Index+1, cur.Name)
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tSTEP\tSTATUS\tREQUIRED\tDETAIL")
	for _, st := range snap.Steps {
		required := ""
		if st.Required {
			required = "yes"
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			st.Index+1, st.Name, caser.String(stepStatus(st)), required, st.Failure)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(w)
	printSummary(w, snap)
	return nil
}

func stepStatus(st sequence.StepStatus) string {
	switch {
	case st.Complete:
		return "complete"
	case st.Busy:
		return "running"
	case st.Failure != "":
		return "failed"
	case !st.CanExecute:
		return "blocked"
	default:
		return "pending"
	}
}
