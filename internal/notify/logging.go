package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/qadigest/internal/store"
)

// DeliveryLog records delivery attempts. *store.DeliveryRepo implements it.
type DeliveryLog interface {
	AppendDelivery(ctx context.Context, data store.DeliveryEventData) error
}

// LoggingNotifier is a decorator that logs every delivery attempt and, when
// a DeliveryLog is set, records it as an event.
type LoggingNotifier struct {
	inner  Notifier
	logger *zap.Logger
	events DeliveryLog
}

// WithLogging wraps a Notifier with logging. events may be nil.
func WithLogging(n Notifier, logger *zap.Logger, events DeliveryLog) Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingNotifier{inner: n, logger: logger.Named("notify"), events: events}
}

func (l *LoggingNotifier) Send(ctx context.Context, msg Message) error {
	start := time.Now()
	err := l.inner.Send(ctx, msg)
	latency := time.Since(start)

	fields := []zap.Field{
		zap.String("run_id", msg.RunID),
		zap.String("set", msg.Set),
		zap.String("notifier", l.inner.Name()),
		zap.Int("questions", msg.QuestionCount),
		zap.Duration("latency", latency),
	}
	if err != nil {
		l.logger.Warn("delivery failed", append(fields, zap.Error(err))...)
	} else {
		l.logger.Info("digest delivered", fields...)
	}

	if l.events != nil {
		data := store.DeliveryEventData{
			RunID:         msg.RunID,
			Set:           msg.Set,
			Notifier:      l.inner.Name(),
			Subject:       msg.Subject,
			QuestionCount: msg.QuestionCount,
			Success:       err == nil,
			LatencyMs:     latency.Milliseconds(),
		}
		if err != nil {
			data.ErrorMessage = err.Error()
		}
		// A failed event write never fails the delivery.
		if logErr := l.events.AppendDelivery(ctx, data); logErr != nil {
			l.logger.Warn("failed to record delivery event", zap.Error(logErr))
		}
	}

	return err
}

func (l *LoggingNotifier) Name() string {
	return l.inner.Name()
}
