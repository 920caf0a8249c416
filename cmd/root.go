package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/abhisek/qadigest/internal/config"
	"github.com/abhisek/qadigest/internal/store"
)

// errSetsFailed makes the process exit non-zero after a run in which at
// least one set failed. The report has already been printed.
var errSetsFailed = errors.New("one or more question sets failed")

var rootCmd = &cobra.Command{
	Use:   "qadigest",
	Short: "Email spaced-repetition digests of your question/answer pairs",
	Long: `qadigest picks the next questions from each question set, renders them
into a digest, hands the digest to the configured notifier and records when
each question was delivered. Run with no arguments from cron.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDigest(cmd)
	},
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./qadigest.yaml or $XDG_CONFIG_HOME/qadigest/qadigest.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides history.db_path and QADIGEST_DB)")
	rootCmd.PersistentFlags().String("sets-dir", "", "Directory containing question sets (overrides sets_dir)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	addRunFlags(rootCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(setsCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then history.db_path from config, then QADIGEST_DB or the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.History.DBPath != "" {
		return cfg.History.DBPath, store.EnsureDir(cfg.History.DBPath)
	}
	return store.DefaultDBPath()
}
