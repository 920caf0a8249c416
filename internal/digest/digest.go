// Package digest turns selected question/answer pairs into an HTML email
// body.
package digest

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/abhisek/qadigest/internal/qa"
)

// ItemSeparator follows every rendered item.
const ItemSeparator = "<br><br>"

// SubjectPrefix starts every digest subject line.
const SubjectPrefix = "Question Digest: "

// Digest is an assembled, deliverable message.
type Digest struct {
	Subject     string
	HTML        string
	QuestionIDs []string
}

// Assembler renders digests. It is safe for concurrent use.
type Assembler struct {
	md goldmark.Markdown
}

// NewAssembler creates an Assembler using GitHub-flavored markdown. Raw
// HTML inside answers is kept.
func NewAssembler() *Assembler {
	return &Assembler{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, mathExtension{}),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

// Subject returns the subject line for a set.
func Subject(title string) string {
	return SubjectPrefix + title
}

// FormatItem returns the markdown for one entry. With keysAreQuestion the
// ID is shown as the question above its answer; otherwise the content
// stands alone.
func FormatItem(e qa.Entry, keysAreQuestion bool) string {
	if !keysAreQuestion {
		return e.Content
	}
	return "## Question\n\n" + e.ID + "\n\n## Answer\n\n" + e.Content + "\n"
}

// Assemble builds the digest for entries in the given order.
func (a *Assembler) Assemble(title string, keysAreQuestion bool, entries []qa.Entry) (Digest, error) {
	var body strings.Builder
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		rendered, err := a.Render(FormatItem(e, keysAreQuestion))
		if err != nil {
			return Digest{}, fmt.Errorf("render %q: %w", e.ID, err)
		}
		body.WriteString(rendered)
		body.WriteString(ItemSeparator)
		body.WriteString("\n")
		ids = append(ids, e.ID)
	}

	subject := Subject(title)
	return Digest{
		Subject:     subject,
		HTML:        Document(subject, body.String()),
		QuestionIDs: ids,
	}, nil
}

// Render converts markdown to an HTML fragment. LaTeX spans outside code
// are emitted verbatim (HTML-escaped).
func (a *Assembler) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := a.md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Document wraps an HTML fragment in a minimal document.
func Document(title, body string) string {
	return "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>" +
		html.EscapeString(title) + "</title>\n</head>\n<body>\n" + body + "</body>\n</html>\n"
}
