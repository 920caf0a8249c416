// Package config loads qadigest settings from an optional YAML file,
// QADIGEST_* environment variables and a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/qadigest/internal/notify"
)

// History backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config is the complete runtime configuration.
type Config struct {
	SetsDir  string
	History  HistoryConfig
	Notify   notify.Config
	Delivery DeliveryConfig
	Log      LogConfig

	// File is the config file that was read, empty when none was found.
	File string
}

// HistoryConfig selects and configures the delivery history backend.
type HistoryConfig struct {
	Backend string
	Dir     string // file backend
	DBPath  string // sqlite backend; empty means the default location
	Redis   RedisConfig
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// DeliveryConfig controls what happens around delivery.
type DeliveryConfig struct {
	// CommitOnFailure records questions as delivered even when the
	// notifier reported an error.
	CommitOnFailure bool

	// AlertOnFailure sends one alert digest listing failed sets after a run.
	AlertOnFailure bool
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // console or json
}

// Options tells Load where to look.
type Options struct {
	// File is an explicit config file. When set it must exist.
	File string

	// EnvFile is the dotenv file loaded before reading the environment.
	// Defaults to ".env"; a missing file is ignored.
	EnvFile string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sets_dir", "question_sets")
	v.SetDefault("history.backend", BackendFile)
	v.SetDefault("history.dir", "history")
	v.SetDefault("history.db_path", "")
	v.SetDefault("history.redis.address", "localhost:6379")
	v.SetDefault("history.redis.password", "")
	v.SetDefault("history.redis.db", 0)
	v.SetDefault("history.redis.prefix", "qadigest")

	d := notify.DefaultConfig()
	v.SetDefault("notify.kind", d.Kind)
	v.SetDefault("notify.from", "")
	v.SetDefault("notify.to", "")
	v.SetDefault("notify.outbox_dir", d.OutboxDir)
	v.SetDefault("notify.alert_on_failure", false)
	v.SetDefault("notify.retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("notify.retry.initial_wait", d.Retry.InitialWait)
	v.SetDefault("notify.retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("notify.retry.multiplier", d.Retry.Multiplier)

	v.SetDefault("delivery.commit_on_failure", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load builds a Config. Precedence, highest first: QADIGEST_* environment
// variables (including those set by the dotenv file), the config file,
// defaults. SENDER_MAIL and RECEIVER_MAIL fill an unset sender and
// recipient.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("QADIGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("qadigest")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := userConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "qadigest"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		SetsDir: v.GetString("sets_dir"),
		History: HistoryConfig{
			Backend: strings.ToLower(v.GetString("history.backend")),
			Dir:     v.GetString("history.dir"),
			DBPath:  v.GetString("history.db_path"),
			Redis: RedisConfig{
				Address:  v.GetString("history.redis.address"),
				Password: v.GetString("history.redis.password"),
				DB:       v.GetInt("history.redis.db"),
				Prefix:   v.GetString("history.redis.prefix"),
			},
		},
		Notify: notify.Config{
			Kind:      strings.ToLower(v.GetString("notify.kind")),
			From:      v.GetString("notify.from"),
			To:        v.GetString("notify.to"),
			OutboxDir: v.GetString("notify.outbox_dir"),
			Retry: notify.RetryConfig{
				MaxAttempts: v.GetInt("notify.retry.max_attempts"),
				InitialWait: v.GetDuration("notify.retry.initial_wait"),
				MaxWait:     v.GetDuration("notify.retry.max_wait"),
				Multiplier:  v.GetFloat64("notify.retry.multiplier"),
			},
		},
		Delivery: DeliveryConfig{
			CommitOnFailure: v.GetBool("delivery.commit_on_failure"),
			AlertOnFailure:  v.GetBool("notify.alert_on_failure"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
		File: v.ConfigFileUsed(),
	}

	if cfg.Notify.From == "" {
		cfg.Notify.From = os.Getenv("SENDER_MAIL")
	}
	if cfg.Notify.To == "" {
		cfg.Notify.To = os.Getenv("RECEIVER_MAIL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.History.Backend {
	case BackendFile, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("unknown history backend %q (want file, sqlite or redis)", c.History.Backend)
	}
	switch c.Notify.Kind {
	case notify.KindOutbox, notify.KindStdout:
	default:
		return fmt.Errorf("unknown notifier %q (want outbox or stdout)", c.Notify.Kind)
	}
	if c.SetsDir == "" {
		return errors.New("sets_dir must not be empty")
	}
	if c.Notify.Retry.MaxAttempts < 1 {
		return fmt.Errorf("notify.retry.max_attempts must be at least 1, got %d", c.Notify.Retry.MaxAttempts)
	}
	return nil
}

// userConfigDir honors XDG_CONFIG_HOME, then falls back to ~/.config.
func userConfigDir() (string, error) {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}

