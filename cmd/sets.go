package cmd

import (
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/qadigest/internal/history"
	"github.com/abhisek/qadigest/internal/qa"
	"github.com/abhisek/qadigest/internal/questionset"
	"github.com/abhisek/qadigest/internal/spacedrep"
	"github.com/abhisek/qadigest/internal/ui/theme"
)

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "List question sets and whether they are ready to run",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		sets, err := questionset.Discover(d.cfg.SetsDir)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(sets) == 0 {
			lipgloss.Fprintln(w, theme.Hint.Render("No question sets in "+d.cfg.SetsDir))
			return nil
		}

		t := theme.Table("Set", "Subject", "Algorithm", "Per run", "Pool", "Delivered", "Status")
		for _, s := range sets {
			if s.Err != nil {
				t.Row(s.Name(), "-", "-", "-", "-", "-", theme.Bad.Render("invalid: "+truncate(s.Err.Error(), 50)))
				continue
			}
			cfg := s.Config

			status := "ready"
			alg, algErr := spacedrep.ParseAlgorithm(cfg.QuestionAlgorithm)
			algLabel := string(alg)
			if algErr != nil {
				algLabel += theme.Warn.Render(" (fallback)")
			}

			poolSize, delivered := "-", "-"
			pool, err := qa.Load(s.PoolPath())
			if err != nil {
				status = "failed"
			} else {
				hist := d.history.Load(cmd.Context(), cfg.InternalName)
				n := 0
				for _, id := range pool.IDs() {
					if _, ok := hist.Delivered(id); ok {
						n++
					}
				}
				poolSize, delivered = strconv.Itoa(pool.Len()), strconv.Itoa(n)
			}
			if cfg.Paused {
				status = "paused"
			}

			t.Row(cfg.InternalName, truncate(cfg.SubjectTitle, 30), algLabel, strconv.Itoa(cfg.NumQuestions),
				poolSize, delivered, theme.State(status).Render(status))
		}
		lipgloss.Fprintln(w, t.Render())

		if lister, ok := d.history.(history.Lister); ok {
			recorded, err := lister.Sets(cmd.Context())
			if err != nil {
				d.logger.Warn("could not list recorded history", zap.Error(err))
				return nil
			}
			known := make([]string, 0, len(sets))
			for _, s := range sets {
				known = append(known, s.Name())
			}
			if orphans := history.Orphans(recorded, known); len(orphans) > 0 {
				lipgloss.Fprintln(w, theme.Warn.Render("History with no matching set: ")+strings.Join(orphans, ", "))
			}
		}
		return nil
	},
}
