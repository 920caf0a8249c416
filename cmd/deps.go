package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/qadigest/internal/config"
	"github.com/abhisek/qadigest/internal/history"
	"github.com/abhisek/qadigest/internal/logging"
	"github.com/abhisek/qadigest/internal/notify"
	"github.com/abhisek/qadigest/internal/store"
)

// deps is everything a command needs, built from flags and config.
type deps struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *store.Store
	history history.Store
	closers []func() error
}

// loadDeps reads configuration, builds the logger, opens the SQLite store
// (which always holds the delivery log) and the configured history backend.
func loadDeps(cmd *cobra.Command) (*deps, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Options{File: cfgFile})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dir, _ := cmd.Flags().GetString("sets-dir"); dir != "" {
		cfg.SetsDir = dir
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()})
	if err != nil {
		return nil, err
	}
	if cfg.File != "" {
		logger.Debug("using config file", zap.String("path", cfg.File))
	}

	d := &deps{cfg: cfg, logger: logger}
	d.closers = append(d.closers, func() error {
		_ = logger.Sync()
		return nil
	})

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	d.db, err = store.Open(dbPath)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	d.closers = append(d.closers, d.db.Close)

	d.history = d.openHistory(cmd.Context())
	return d, nil
}

func (d *deps) openHistory(ctx context.Context) history.Store {
	switch d.cfg.History.Backend {
	case config.BackendSQLite:
		return d.db.HistoryRepo(d.logger)
	case config.BackendRedis:
		rc := d.cfg.History.Redis
		client := redis.NewClient(&redis.Options{
			Addr:     rc.Address,
			Password: rc.Password,
			DB:       rc.DB,
		})
		d.closers = append(d.closers, client.Close)

		// An unreachable server is not fatal here: loads fail soft and each
		// set's commit reports its own error.
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			d.logger.Warn("redis unreachable, history reads will start empty",
				zap.String("address", rc.Address), zap.Error(err))
		}
		return history.NewRedisStore(client, rc.Prefix, d.logger)
	default:
		return history.NewFileStore(d.cfg.History.Dir, d.logger)
	}
}

// notifier returns the configured notifier, or one printing to out for
// dry runs.
func (d *deps) notifier(dryRun bool, out io.Writer) (notify.Notifier, error) {
	if dryRun {
		return notify.WithLogging(notify.NewStdout(out), d.logger, nil), nil
	}
	return notify.New(d.cfg.Notify, d.logger, d.db.DeliveryRepo())
}

// Close releases resources in reverse order of acquisition.
func (d *deps) Close() {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = append(errs, d.closers[i]())
	}
	if err := errors.Join(errs...); err != nil {
		d.logger.Warn("cleanup failed", zap.Error(err))
	}
}
