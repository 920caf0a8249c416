package notify

import "fmt"

// DeliveryError reports a failed delivery.
type DeliveryError struct {
	Notifier string
	Set      string
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %s via %s: %v", e.Set, e.Notifier, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// ErrInvalidMessage indicates a message that can never be delivered as
// is, such as one without a recipient. It is not retried.
type ErrInvalidMessage struct {
	Reason string
}

func (e *ErrInvalidMessage) Error() string {
	return "invalid message: " + e.Reason
}
