package notify

import (
	"context"
	"fmt"
	"io"
)

// Stdout writes digests to a writer instead of delivering them. Used for
// dry runs.
type Stdout struct {
	w io.Writer
}

// NewStdout creates a Stdout notifier writing to w.
func NewStdout(w io.Writer) *Stdout {
	return &Stdout{w: w}
}

func (s *Stdout) Send(_ context.Context, msg Message) error {
	_, err := fmt.Fprintf(s.w, "Set: %s\nTo: %s\nSubject: %s\n\n%s\n", msg.Set, msg.To, msg.Subject, msg.HTML)
	return err
}

func (s *Stdout) Name() string { return KindStdout }
