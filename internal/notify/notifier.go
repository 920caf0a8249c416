// Package notify delivers assembled digests.
package notify

import "context"

// Message is one digest ready for delivery.
type Message struct {
	RunID   string
	Set     string
	From    string
	To      string
	Subject string
	HTML    string

	// QuestionCount is the number of questions carried, for the delivery log.
	QuestionCount int
}

// Notifier delivers messages. Send returns nil only when delivery is
// confirmed.
type Notifier interface {
	Send(ctx context.Context, msg Message) error

	// Name identifies the notifier in logs and delivery events.
	Name() string
}
