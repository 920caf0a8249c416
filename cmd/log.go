package cmd

import (
	"fmt"
	"strconv"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/qadigest/internal/store"
	"github.com/abhisek/qadigest/internal/ui/theme"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "List recent delivery attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		set, _ := cmd.Flags().GetString("set")

		d, err := loadDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		events, err := d.db.DeliveryRepo().QueryDeliveries(cmd.Context(), store.QueryOpts{Limit: limit, Set: set})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		w := cmd.OutOrStdout()
		if len(events) == 0 {
			lipgloss.Fprintln(w, theme.Hint.Render("No deliveries recorded."))
			return nil
		}

		t := theme.Table("ID", "Timestamp", "Run", "Set", "Via", "Qs", "Ms", "OK")
		for _, e := range events {
			ok := theme.Good.Render("✓")
			if !e.Success {
				ok = theme.Bad.Render("✗ " + truncate(e.ErrorMessage, 40))
			}
			run := e.RunID
			if len(run) > 8 {
				run = run[:8]
			}
			t.Row(
				strconv.Itoa(e.ID),
				e.Timestamp.Local().Format(time.DateTime),
				run,
				e.Set,
				e.Notifier,
				strconv.Itoa(e.QuestionCount),
				strconv.FormatInt(e.LatencyMs, 10),
				ok,
			)
		}
		lipgloss.Fprintln(w, t.Render())
		return nil
	},
}

func init() {
	logCmd.Flags().Int("limit", 20, "Maximum number of events to show")
	logCmd.Flags().String("set", "", "Only show events for this set")
}
