package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedFileStore(t *testing.T) (*FileStore, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	return NewFileStore(t.TempDir(), zap.New(core)), logs
}

func TestFileStore_LoadMissingIsEmpty(t *testing.T) {
	s, logs := newObservedFileStore(t)
	h := s.Load(context.Background(), "algebra")
	assert.Empty(t, h)
	assert.Equal(t, 1, logs.FilterMessage("no history yet, starting empty").Len())
}

func TestFileStore_LoadCorruptIsEmpty(t *testing.T) {
	s, logs := newObservedFileStore(t)
	require.NoError(t, os.WriteFile(s.Path("algebra"), []byte("{not json"), 0o644))

	h := s.Load(context.Background(), "algebra")
	assert.Empty(t, h)
	assert.Equal(t, 1, logs.FilterMessage("history unreadable, starting empty").Len())
}

func TestFileStore_CommitThenLoad(t *testing.T) {
	s, _ := newObservedFileStore(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 7, 30, 0, 0, time.Local)

	require.NoError(t, s.Commit(ctx, "algebra", []string{"Q1", "Q2"}, at))

	h := s.Load(ctx, "algebra")
	require.Len(t, h, 2)
	assert.True(t, h["Q1"].Equal(at))
	assert.True(t, h["Q2"].Equal(at))
}

func TestFileStore_CommitIsAdditive(t *testing.T) {
	s, _ := newObservedFileStore(t)
	ctx := context.Background()
	t0 := time.Date(2025, 6, 1, 7, 0, 0, 0, time.Local)
	t1 := t0.Add(48 * time.Hour)

	require.NoError(t, s.Commit(ctx, "algebra", []string{"unrelated"}, t0.Add(-72*time.Hour)))
	require.NoError(t, s.Commit(ctx, "algebra", []string{"Q1"}, t0))
	require.NoError(t, s.Commit(ctx, "algebra", []string{"Q2"}, t1))

	h := s.Load(ctx, "algebra")
	require.Len(t, h, 3)
	assert.True(t, h["Q1"].Equal(t0))
	assert.True(t, h["Q2"].Equal(t1))
	assert.True(t, h["unrelated"].Equal(t0.Add(-72*time.Hour)))
}

func TestFileStore_RoundTripPreservesOtherEntries(t *testing.T) {
	s, _ := newObservedFileStore(t)
	ctx := context.Background()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	require.NoError(t, s.Commit(ctx, "set", []string{"A", "B", "C"}, t0))

	before := s.Load(ctx, "set")
	t1 := t0.Add(10 * 24 * time.Hour)
	require.NoError(t, s.Commit(ctx, "set", []string{"B"}, t1))
	after := s.Load(ctx, "set")

	assert.True(t, after["A"].Equal(before["A"]))
	assert.True(t, after["C"].Equal(before["C"]))
	assert.True(t, after["B"].Equal(t1))
}

func TestFileStore_CommitKeepsUnparseableValues(t *testing.T) {
	s, _ := newObservedFileStore(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(s.Path("set"), []byte(`{"weird":"someday"}`), 0o644))

	require.NoError(t, s.Commit(ctx, "set", []string{"Q1"}, time.Now()))

	data, err := os.ReadFile(s.Path("set"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"weird": "someday"`)
}

func TestFileStore_CommitMovesCorruptAside(t *testing.T) {
	s, _ := newObservedFileStore(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(s.Path("set"), []byte("{broken"), 0o644))

	require.NoError(t, s.Commit(ctx, "set", []string{"Q1"}, time.Now()))

	aside, err := os.ReadFile(s.Path("set") + ".corrupt")
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(aside))
	assert.Len(t, s.Load(ctx, "set"), 1)
}

func TestFileStore_FailedCommitLeavesPriorRecord(t *testing.T) {
	base := t.TempDir()
	s := NewFileStore(filepath.Join(base, "hist"), nil)
	ctx := context.Background()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	require.NoError(t, s.Commit(ctx, "set", []string{"Q1"}, t0))

	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	// A read-only directory makes the temp file creation fail.
	require.NoError(t, os.Chmod(filepath.Join(base, "hist"), 0o555))
	t.Cleanup(func() { _ = os.Chmod(filepath.Join(base, "hist"), 0o755) })

	err := s.Commit(ctx, "set", []string{"Q2"}, t0.Add(time.Hour))
	require.Error(t, err)

	h := s.Load(ctx, "set")
	require.Len(t, h, 1)
	assert.True(t, h["Q1"].Equal(t0))
}

func TestFileStore_EmptyCommitIsNoop(t *testing.T) {
	s, _ := newObservedFileStore(t)
	require.NoError(t, s.Commit(context.Background(), "set", nil, time.Now()))
	_, err := os.Stat(s.Path("set"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_RejectsPathLikeSetName(t *testing.T) {
	s, _ := newObservedFileStore(t)
	err := s.Commit(context.Background(), "../escape", []string{"Q1"}, time.Now())
	assert.Error(t, err)
	assert.Empty(t, s.Load(context.Background(), "../escape"))
}

func TestFileStore_Sets(t *testing.T) {
	s, _ := newObservedFileStore(t)
	ctx := context.Background()
	require.NoError(t, s.Commit(ctx, "physics", []string{"Q1"}, time.Now()))
	require.NoError(t, s.Commit(ctx, "algebra", []string{"Q1"}, time.Now()))
	require.NoError(t, os.WriteFile(s.Path("old")+".corrupt", []byte("{"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(s.dir, "nested.json"), 0o755))

	sets, err := s.Sets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"algebra", "physics"}, sets)
}

func TestFileStore_SetsMissingDir(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "none"), nil)
	sets, err := s.Sets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sets)
}
