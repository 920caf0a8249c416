package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/qadigest/internal/runner"
	"github.com/abhisek/qadigest/internal/ui/theme"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Deliver the next digest for every question set",
	Long: `Process every question set: select the next questions, deliver one
digest per set and record the delivery. A failing set is reported and the
remaining sets still run; the exit status is non-zero if any set failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDigest(cmd)
	},
}

func init() {
	addRunFlags(runCmd)
}

func addRunFlags(c *cobra.Command) {
	c.Flags().StringSlice("set", nil, "Only run these sets (repeatable)")
	c.Flags().Bool("dry-run", false, "Print digests to stdout and do not record history")
}

// runDigest builds dependencies, runs one batch and prints the report.
func runDigest(cmd *cobra.Command) error {
	d, err := loadDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	sets, _ := cmd.Flags().GetStringSlice("set")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	n, err := d.notifier(dryRun, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("build notifier: %w", err)
	}

	drv := runner.New(runner.Options{
		SetsDir:         d.cfg.SetsDir,
		Sets:            sets,
		DryRun:          dryRun,
		CommitOnFailure: d.cfg.Delivery.CommitOnFailure,
		AlertOnFailure:  d.cfg.Delivery.AlertOnFailure,
		From:            d.cfg.Notify.From,
		To:              d.cfg.Notify.To,
	}, d.history, n, d.logger)

	report, err := drv.Run(cmd.Context())
	if err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), report)
	if report.Failed() {
		return errSetsFailed
	}
	return nil
}

func printReport(w io.Writer, r *runner.Report) {
	title := "Run " + r.RunID
	if r.DryRun {
		title += " (dry run)"
	}
	lipgloss.Fprintln(w, theme.Title.Render(title))

	if len(r.Sets) == 0 {
		lipgloss.Fprintln(w, theme.Hint.Render("No question sets found."))
		return
	}

	t := theme.Table("Set", "State", "Algorithm", "Questions", "Note")
	for _, s := range r.Sets {
		note := ""
		switch {
		case s.Err != nil:
			note = s.Err.Error()
		case s.FallbackAlgorithm:
			note = fmt.Sprintf("unknown algorithm %q", s.RequestedAlgorithm)
		case s.State == runner.StateSelected && len(s.Selected) == 0:
			note = "pool is empty"
		}
		questions := "-"
		if len(s.Selected) > 0 {
			questions = strings.Join(s.Selected, ", ")
		}
		alg := string(s.Algorithm)
		if alg == "" {
			alg = "-"
		}
		t.Row(s.Set, theme.State(string(s.State)).Render(string(s.State)), alg, truncate(questions, 48), truncate(note, 60))
	}
	lipgloss.Fprintln(w, t.Render())

	if r.AlertErr != nil {
		lipgloss.Fprintln(w, theme.Bad.Render("Failure alert not delivered: "+r.AlertErr.Error()))
	}
	lipgloss.Fprintf(w, "%d committed, %d paused, %d failed in %s\n",
		r.Count(runner.StateCommitted), r.Count(runner.StatePaused), r.Count(runner.StateFailed),
		r.Finished.Sub(r.Started).Round(time.Millisecond))
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
