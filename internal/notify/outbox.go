package notify

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moby/sys/atomicwriter"
)

// Outbox writes each digest as an RFC 5322 message file into a directory
// that an external mail relay drains. A file appears complete or not at all.
type Outbox struct {
	dir string
	now func() time.Time
}

// NewOutbox creates an Outbox writing into dir.
func NewOutbox(dir string) *Outbox {
	return &Outbox{dir: dir, now: time.Now}
}

// Dir returns the outbox directory.
func (o *Outbox) Dir() string { return o.dir }

func (o *Outbox) Name() string { return KindOutbox }

func (o *Outbox) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return &ErrInvalidMessage{Reason: "no recipient"}
	}
	if msg.From == "" {
		return &ErrInvalidMessage{Reason: "no sender"}
	}

	id := uuid.New()
	now := o.now()
	data, err := composeEML(msg, id, now)
	if err != nil {
		return fmt.Errorf("compose message: %w", err)
	}

	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return fmt.Errorf("create outbox: %w", err)
	}
	name := fmt.Sprintf("%s-%s-%s.eml", now.UTC().Format("20060102T150405Z"), fileSafe(msg.Set), id.String()[:8])
	if err := atomicwriter.WriteFile(filepath.Join(o.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write outbox message: %w", err)
	}
	return nil
}

// composeEML renders a single-part HTML message, quoted-printable encoded.
func composeEML(msg Message, id uuid.UUID, now time.Time) ([]byte, error) {
	var b bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, v) }

	header("From", msg.From)
	header("To", msg.To)
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@qadigest>", id))
	if msg.RunID != "" {
		header("X-Qadigest-Run", msg.RunID)
	}
	if msg.Set != "" {
		header("X-Qadigest-Set", msg.Set)
	}
	header("MIME-Version", "1.0")
	header("Content-Type", `text/html; charset="utf-8"`)
	header("Content-Transfer-Encoding", "quoted-printable")
	b.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&b)
	if _, err := qp.Write([]byte(msg.HTML)); err != nil {
		return nil, err
	}
	if err := qp.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func fileSafe(s string) string {
	if s == "" {
		return "digest"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, s)
}
