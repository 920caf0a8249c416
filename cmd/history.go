package cmd

import (
	"sort"
	"strconv"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/qadigest/internal/qa"
	"github.com/abhisek/qadigest/internal/spacedrep"
	"github.com/abhisek/qadigest/internal/ui/theme"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show when each question of a set was last delivered",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().String("set", "", "Set name (required)")
	_ = historyCmd.MarkFlagRequired("set")
}

func runHistory(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("set")

	d, err := loadDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	set, err := findSet(d.cfg.SetsDir, name)
	if err != nil {
		return err
	}
	if set.Err != nil {
		return set.Err
	}

	pool, err := qa.Load(set.PoolPath())
	if err != nil {
		d.logger.Sugar().Warnf("pool unavailable, orphan detection disabled: %v", err)
	}

	hist := d.history.Load(cmd.Context(), set.Config.InternalName)
	w := cmd.OutOrStdout()
	lipgloss.Fprintln(w, theme.Title.Render(set.Config.SubjectTitle))
	if len(hist) == 0 {
		lipgloss.Fprintln(w, theme.Hint.Render("Nothing delivered yet."))
		return nil
	}

	ids := make([]string, 0, len(hist))
	for id := range hist {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if !hist[ids[i]].Equal(hist[ids[j]]) {
			return hist[ids[i]].Before(hist[ids[j]])
		}
		return ids[i] < ids[j]
	})

	now := time.Now()
	t := theme.Table("Question", "Last delivered", "Days", "In pool")
	for _, id := range ids {
		at := hist[id]
		inPool := "-"
		switch {
		case pool.Has(id):
			inPool = theme.Good.Render("✓")
		case pool.Len() > 0:
			inPool = theme.Warn.Render("✗")
		}
		t.Row(truncate(id, 60), at.Local().Format(time.DateTime), strconv.Itoa(spacedrep.DaysSince(at, now)), inPool)
	}
	lipgloss.Fprintln(w, t.Render())

	never := 0
	for _, id := range pool.IDs() {
		if _, ok := hist.Delivered(id); !ok {
			never++
		}
	}
	if pool.Len() > 0 {
		lipgloss.Fprintf(w, "%d of %d questions delivered, %d never sent\n", pool.Len()-never, pool.Len(), never)
	}
	return nil
}
