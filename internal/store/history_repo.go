package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"go.uber.org/zap"

	"github.com/abhisek/qadigest/internal/history"
)

// upsertBatch bounds the rows per INSERT to stay under SQLite's bound
// variable limit.
const upsertBatch = 500

// HistoryRepo implements history.Store on the delivery_history table.
type HistoryRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

var (
	_ history.Store  = (*HistoryRepo)(nil)
	_ history.Lister = (*HistoryRepo)(nil)
)

func (r *HistoryRepo) Load(ctx context.Context, set string) history.History {
	log := r.logger.With(zap.String("set", set))
	rec, err := r.record(ctx, set)
	if err != nil {
		log.Warn("history unreadable, starting empty", zap.Error(err))
		return history.History{}
	}
	if len(rec) == 0 {
		log.Info("no history yet, starting empty")
	}

	h, skipped := rec.Decode()
	if len(skipped) > 0 {
		log.Warn("skipping history entries with bad timestamps", zap.Strings("ids", skipped))
	}
	return h
}

// Commit upserts the delivered IDs in one transaction. Rows for other IDs
// are never touched, so the merge with the persisted record happens in the
// database.
func (r *HistoryRepo) Commit(ctx context.Context, set string, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	rec := history.Record{}.With(ids, at)
	keys := rec.Keys()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	defer tx.Rollback()

	for start := 0; start < len(keys); start += upsertBatch {
		end := min(start+upsertBatch, len(keys))
		ins := entsql.Dialect(dialect.SQLite).
			Insert(historyTable).
			Columns("set_name", "question_id", "delivered_at")
		for _, id := range keys[start:end] {
			ins.Values(set, id, rec[id])
		}
		ins.OnConflict(
			entsql.ConflictColumns("set_name", "question_id"),
			entsql.ResolveWithNewValues(),
		)
		query, args := ins.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history: %w", err)
	}
	return nil
}

// Sets returns the names of every set with recorded history.
func (r *HistoryRepo) Sets(ctx context.Context) ([]string, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("set_name").
		Distinct().
		From(entsql.Table(historyTable)).
		OrderBy("set_name").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sets: %w", err)
	}
	defer rows.Close()

	var sets []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		sets = append(sets, name)
	}
	return sets, rows.Err()
}

func (r *HistoryRepo) record(ctx context.Context, set string) (history.Record, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("question_id", "delivered_at").
		From(entsql.Table(historyTable)).
		Where(entsql.EQ("set_name", set)).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	rec := history.Record{}
	for rows.Next() {
		var id, at string
		if err := rows.Scan(&id, &at); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		rec[id] = at
	}
	return rec, rows.Err()
}
