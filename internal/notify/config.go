package notify

import "time"

// Notifier kinds.
const (
	KindOutbox = "outbox"
	KindStdout = "stdout"
)

// Config holds notifier configuration.
type Config struct {
	// Kind selects the notifier. Values: "outbox", "stdout".
	Kind string

	From string
	To   string

	// OutboxDir receives one .eml file per digest for a mail relay to send.
	OutboxDir string

	Retry RetryConfig
}

// RetryConfig configures retry behavior for failed deliveries.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Kind:      KindOutbox,
		OutboxDir: "outbox",
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
	}
}
