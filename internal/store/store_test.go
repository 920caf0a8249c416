package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestHistoryRepo_LoadEmpty(t *testing.T) {
	repo := openTestStore(t).HistoryRepo(nil)
	assert.Empty(t, repo.Load(context.Background(), "algebra"))
}

func TestHistoryRepo_CommitThenLoad(t *testing.T) {
	repo := openTestStore(t).HistoryRepo(nil)
	ctx := context.Background()
	at := time.Date(2025, 4, 5, 6, 7, 8, 0, time.Local)

	require.NoError(t, repo.Commit(ctx, "algebra", []string{"Q1", "Q2"}, at))

	h := repo.Load(ctx, "algebra")
	require.Len(t, h, 2)
	assert.True(t, h["Q1"].Equal(at))
	assert.True(t, h["Q2"].Equal(at))
}

func TestHistoryRepo_CommitIsAdditiveAndPerSet(t *testing.T) {
	repo := openTestStore(t).HistoryRepo(nil)
	ctx := context.Background()
	t0 := time.Date(2025, 4, 5, 6, 0, 0, 0, time.Local)
	t1 := t0.Add(36 * time.Hour)

	require.NoError(t, repo.Commit(ctx, "algebra", []string{"keep"}, t0.Add(-time.Hour)))
	require.NoError(t, repo.Commit(ctx, "biology", []string{"Q1"}, t0))
	require.NoError(t, repo.Commit(ctx, "algebra", []string{"Q1"}, t0))
	require.NoError(t, repo.Commit(ctx, "algebra", []string{"Q2"}, t1))

	h := repo.Load(ctx, "algebra")
	require.Len(t, h, 3)
	assert.True(t, h["keep"].Equal(t0.Add(-time.Hour)))
	assert.True(t, h["Q1"].Equal(t0))
	assert.True(t, h["Q2"].Equal(t1))

	assert.Len(t, repo.Load(ctx, "biology"), 1)

	sets, err := repo.Sets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"algebra", "biology"}, sets)
}

func TestHistoryRepo_RecommitUpdatesTimestamp(t *testing.T) {
	repo := openTestStore(t).HistoryRepo(nil)
	ctx := context.Background()
	t0 := time.Date(2025, 4, 5, 6, 0, 0, 0, time.Local)

	require.NoError(t, repo.Commit(ctx, "s", []string{"Q1"}, t0))
	require.NoError(t, repo.Commit(ctx, "s", []string{"Q1"}, t0.Add(time.Hour)))

	assert.True(t, repo.Load(ctx, "s")["Q1"].Equal(t0.Add(time.Hour)))
}

func TestHistoryRepo_LargeCommitIsBatched(t *testing.T) {
	repo := openTestStore(t).HistoryRepo(nil)
	ctx := context.Background()

	ids := make([]string, 1200)
	for i := range ids {
		ids[i] = fmt.Sprintf("question-%d", i)
	}
	require.NoError(t, repo.Commit(ctx, "big", ids, time.Now()))
	assert.Len(t, repo.Load(ctx, "big"), 1200)
}

func TestHistoryRepo_FailedCommitLeavesPriorRecord(t *testing.T) {
	s := openTestStore(t)
	repo := s.HistoryRepo(nil)
	ctx := context.Background()
	t0 := time.Date(2025, 4, 5, 6, 0, 0, 0, time.Local)
	require.NoError(t, repo.Commit(ctx, "s", []string{"Q1"}, t0))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	require.Error(t, repo.Commit(cancelled, "s", []string{"Q1", "Q2"}, t0.Add(time.Hour)))

	h := repo.Load(ctx, "s")
	require.Len(t, h, 1)
	assert.True(t, h["Q1"].Equal(t0))
}

func TestDeliveryRepo_AppendAndQuery(t *testing.T) {
	repo := openTestStore(t).DeliveryRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendDelivery(ctx, DeliveryEventData{
		RunID: "run-1", Set: "algebra", Notifier: "outbox",
		Subject: "Question Digest: Algebra", QuestionCount: 2, Success: true, LatencyMs: 12,
	}))
	require.NoError(t, repo.AppendDelivery(ctx, DeliveryEventData{
		RunID: "run-1", Set: "biology", Notifier: "outbox",
		Subject: "Question Digest: Biology", QuestionCount: 1, ErrorMessage: "disk full",
	}))

	all, err := repo.QueryDeliveries(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "biology", all[0].Set, "newest first")
	assert.False(t, all[0].Success)
	assert.Equal(t, "disk full", all[0].ErrorMessage)
	assert.True(t, all[1].Success)
	assert.False(t, all[1].Timestamp.IsZero())

	onlyAlgebra, err := repo.QueryDeliveries(ctx, QueryOpts{Set: "algebra"})
	require.NoError(t, err)
	require.Len(t, onlyAlgebra, 1)
	assert.Equal(t, 2, onlyAlgebra[0].QuestionCount)

	limited, err := repo.QueryDeliveries(ctx, QueryOpts{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
