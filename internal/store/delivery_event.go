package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// QueryOpts configures event queries.
type QueryOpts struct {
	Limit int    // max results (0 = unlimited)
	Set   string // only events for this set ("" = all)
}

// DeliveryEventData captures one delivery attempt.
type DeliveryEventData struct {
	RunID         string
	Set           string
	Notifier      string
	Subject       string
	QuestionCount int
	Success       bool
	ErrorMessage  string
	LatencyMs     int64
}

// DeliveryEventRecord is a persisted delivery attempt.
type DeliveryEventRecord struct {
	ID        int
	Timestamp time.Time
	DeliveryEventData
}

// DeliveryRepo appends and queries delivery events.
type DeliveryRepo struct {
	db *sql.DB
}

// AppendDelivery records a delivery attempt.
func (r *DeliveryRepo) AppendDelivery(ctx context.Context, data DeliveryEventData) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(eventTable).
		Columns("run_id", "set_name", "notifier", "subject", "question_count",
			"success", "error_message", "latency_ms", "timestamp").
		Values(data.RunID, data.Set, data.Notifier, data.Subject, data.QuestionCount,
			data.Success, data.ErrorMessage, data.LatencyMs, time.Now().UTC().Format(time.RFC3339)).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save delivery event: %w", err)
	}
	return nil
}

// QueryDeliveries returns delivery events, newest first.
func (r *DeliveryRepo) QueryDeliveries(ctx context.Context, opts QueryOpts) ([]DeliveryEventRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select("id", "timestamp", "run_id", "set_name", "notifier", "subject",
			"question_count", "success", "error_message", "latency_ms").
		From(entsql.Table(eventTable)).
		OrderBy(entsql.Desc("id"))
	if opts.Set != "" {
		sel.Where(entsql.EQ("set_name", opts.Set))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query delivery events: %w", err)
	}
	defer rows.Close()

	var out []DeliveryEventRecord
	for rows.Next() {
		var (
			rec DeliveryEventRecord
			ts  string
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.RunID, &rec.Set, &rec.Notifier, &rec.Subject,
			&rec.QuestionCount, &rec.Success, &rec.ErrorMessage, &rec.LatencyMs); err != nil {
			return nil, fmt.Errorf("scan delivery event: %w", err)
		}
		rec.Timestamp, _ = time.Parse(time.RFC3339, ts)
		out = append(out, rec)
	}
	return out, rows.Err()
}
