package cmd

import (
	"fmt"
	"strconv"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/qadigest/internal/notify"
	"github.com/abhisek/qadigest/internal/questionset"
	"github.com/abhisek/qadigest/internal/runner"
	"github.com/abhisek/qadigest/internal/spacedrep"
	"github.com/abhisek/qadigest/internal/ui/theme"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show which questions the next run would send for a set",
	Long: `Select questions for one set exactly as a run would, without delivering
anything or recording history. Use --algorithm to compare policies.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("set", "", "Set name (required)")
	previewCmd.Flags().Int("count", 0, "Number of questions (default: the set's num_questions)")
	previewCmd.Flags().String("algorithm", "", "Selection algorithm (default: the set's question_algorithm)")
	previewCmd.Flags().Bool("html", false, "Print the rendered digest HTML")
	_ = previewCmd.MarkFlagRequired("set")
}

func runPreview(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("set")
	count, _ := cmd.Flags().GetInt("count")
	algorithm, _ := cmd.Flags().GetString("algorithm")
	showHTML, _ := cmd.Flags().GetBool("html")

	d, err := loadDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	set, err := findSet(d.cfg.SetsDir, name)
	if err != nil {
		return err
	}

	drv := runner.New(runner.Options{SetsDir: d.cfg.SetsDir}, d.history, notify.NewRecorder(), d.logger)
	p, err := drv.Preview(cmd.Context(), set, count, algorithm)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	lipgloss.Fprintln(w, theme.Title.Render(p.Digest.Subject))
	alg := string(p.Algorithm)
	if p.Fallback {
		alg += theme.Warn.Render(fmt.Sprintf(" (fallback for %q)", p.Requested))
	}
	lipgloss.Fprintln(w, theme.Hint.Render("algorithm: ")+alg)

	hist := d.history.Load(cmd.Context(), set.Config.InternalName)
	now := time.Now()
	t := theme.Table("#", "Question", "Last delivered", "Days", "Length")
	for i, e := range p.Entries {
		last, days := "never", "-"
		if at, ok := hist.Delivered(e.ID); ok {
			last = at.Local().Format(time.DateTime)
			days = strconv.Itoa(spacedrep.DaysSince(at, now))
		}
		t.Row(strconv.Itoa(i+1), truncate(e.ID, 60), last, days, strconv.Itoa(e.Length()))
	}
	lipgloss.Fprintln(w, t.Render())

	if showHTML {
		fmt.Fprintln(w, p.Digest.HTML)
	}
	return nil
}

// findSet discovers sets under dir and returns the one called name.
func findSet(dir, name string) (questionset.Set, error) {
	sets, err := questionset.Discover(dir)
	if err != nil {
		return questionset.Set{}, err
	}
	found := questionset.Filter(sets, []string{name})
	if len(found) == 0 {
		return questionset.Set{}, fmt.Errorf("question set %q not found in %s", name, dir)
	}
	return found[0], nil
}
