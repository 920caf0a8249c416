package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every lookup at an empty temp dir so the developer's own
// config files and environment do not leak into tests.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for _, k := range []string{"SENDER_MAIL", "RECEIVER_MAIL", "QADIGEST_NOTIFY_FROM", "QADIGEST_NOTIFY_TO", "QADIGEST_HISTORY_BACKEND"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, "question_sets", cfg.SetsDir)
	assert.Equal(t, BackendFile, cfg.History.Backend)
	assert.Equal(t, "history", cfg.History.Dir)
	assert.Equal(t, "qadigest", cfg.History.Redis.Prefix)
	assert.Equal(t, "outbox", cfg.Notify.Kind)
	assert.Equal(t, 3, cfg.Notify.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Notify.Retry.InitialWait)
	assert.False(t, cfg.Delivery.CommitOnFailure)
	assert.False(t, cfg.Delivery.AlertOnFailure)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.File)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "qadigest.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
sets_dir: /srv/sets
history:
  backend: sqlite
  db_path: /srv/history.db
notify:
  kind: stdout
  to: file@example.com
  alert_on_failure: true
  retry:
    max_attempts: 5
    initial_wait: 250ms
delivery:
  commit_on_failure: true
log:
  level: debug
`), 0o644))
	t.Setenv("QADIGEST_NOTIFY_TO", "env@example.com")

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, "/srv/sets", cfg.SetsDir)
	assert.Equal(t, BackendSQLite, cfg.History.Backend)
	assert.Equal(t, "/srv/history.db", cfg.History.DBPath)
	assert.Equal(t, "stdout", cfg.Notify.Kind)
	assert.Equal(t, "env@example.com", cfg.Notify.To)
	assert.Equal(t, 5, cfg.Notify.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Notify.Retry.InitialWait)
	assert.True(t, cfg.Delivery.CommitOnFailure)
	assert.True(t, cfg.Delivery.AlertOnFailure)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, file, cfg.File)
}

func TestLoad_DotEnvAndLegacyMailVars(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("SENDER_MAIL=me@example.com\nRECEIVER_MAIL=you@example.com\nQADIGEST_HISTORY_BACKEND=redis\n"), 0o644))

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, "me@example.com", cfg.Notify.From)
	assert.Equal(t, "you@example.com", cfg.Notify.To)
	assert.Equal(t, BackendRedis, cfg.History.Backend)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	dir := isolate(t)
	_, err := Load(Options{File: filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	isolate(t)
	t.Setenv("QADIGEST_HISTORY_BACKEND", "postgres")

	_, err := Load(Options{})
	assert.ErrorContains(t, err, "unknown history backend")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			SetsDir: "sets",
			History: HistoryConfig{Backend: BackendFile},
		}
	}

	c := valid()
	c.Notify.Kind = "outbox"
	c.Notify.Retry.MaxAttempts = 1
	assert.NoError(t, c.Validate())

	c.Notify.Kind = "pigeon"
	assert.Error(t, c.Validate())

	c = valid()
	c.Notify.Kind = "stdout"
	c.Notify.Retry.MaxAttempts = 0
	assert.Error(t, c.Validate())
}
