package notify

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// New creates a Notifier from configuration, wrapped with retry and
// logging middleware. events may be nil.
func New(cfg Config, logger *zap.Logger, events DeliveryLog) (Notifier, error) {
	var base Notifier
	switch cfg.Kind {
	case KindOutbox, "":
		if cfg.OutboxDir == "" {
			return nil, fmt.Errorf("outbox notifier needs an outbox directory")
		}
		base = NewOutbox(cfg.OutboxDir)
	case KindStdout:
		base = NewStdout(os.Stdout)
	default:
		return nil, fmt.Errorf("unknown notifier: %q", cfg.Kind)
	}

	// caller → retry → logging → base
	logged := WithLogging(base, logger, events)
	return WithRetry(logged, cfg.Retry), nil
}
