// Package store is the SQLite persistence layer: delivery history for every
// question set and an append-only log of delivery attempts.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const (
	historyTable = "delivery_history"
	eventTable   = "delivery_events"
)

// Store holds the SQLite connection and provides access to repositories.
type Store struct {
	db *sql.DB
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// HistoryRepo returns a history.Store backed by this database.
func (s *Store) HistoryRepo(logger *zap.Logger) *HistoryRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryRepo{db: s.db, logger: logger.Named("history.sqlite")}
}

// DeliveryRepo returns the delivery event log backed by this database.
func (s *Store) DeliveryRepo() *DeliveryRepo {
	return &DeliveryRepo{db: s.db}
}

// applyPragmas configures SQLite for single-writer batch use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// migrate creates the tables. DDL stays in raw SQL; the ent builder is
// only used for queries.
func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + historyTable + ` (
			set_name     TEXT NOT NULL,
			question_id  TEXT NOT NULL,
			delivered_at TEXT NOT NULL,
			PRIMARY KEY (set_name, question_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + eventTable + ` (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL,
			set_name       TEXT NOT NULL,
			notifier       TEXT NOT NULL,
			subject        TEXT NOT NULL,
			question_count INTEGER NOT NULL,
			success        INTEGER NOT NULL,
			error_message  TEXT NOT NULL DEFAULT '',
			latency_ms     INTEGER NOT NULL,
			timestamp      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS delivery_events_set ON ` + eventTable + ` (set_name)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. QADIGEST_DB environment variable
// 2. $XDG_DATA_HOME/qadigest/history.db
// 3. ~/.local/share/qadigest/history.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("QADIGEST_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "qadigest", "history.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
