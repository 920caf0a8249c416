package notify

import (
	"context"
	"sync"
)

// Recorder is a deterministic Notifier for testing. It returns canned
// errors in FIFO order (nil once they run out) and records every message.
type Recorder struct {
	mu   sync.Mutex
	errs []error
	Sent []Message
}

// NewRecorder creates a Recorder with the given canned errors.
func NewRecorder(errs ...error) *Recorder {
	return &Recorder{errs: errs}
}

func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Sent = append(r.Sent, msg)
	if len(r.errs) == 0 {
		return nil
	}
	err := r.errs[0]
	r.errs = r.errs[1:]
	return err
}

// Name returns "recorder".
func (r *Recorder) Name() string { return "recorder" }

// FailNext queues an error for the next Send.
func (r *Recorder) FailNext(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

// Messages returns a copy of everything sent so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.Sent...)
}

// CallCount returns the number of Send calls made.
func (r *Recorder) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Sent)
}
