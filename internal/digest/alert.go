package digest

import (
	"fmt"
	"html"
	"strings"
)

// AlertSubject is the subject of the run failure alert.
const AlertSubject = "Question Digest: run failed"

// Failure names a set that failed and why.
type Failure struct {
	Set string
	Err string
}

// Alert builds the message sent when one or more sets failed during a run.
func Alert(runID string, failures []Failure) Digest {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>%d question set(s) failed in run <code>%s</code>.</p>\n<ul>\n",
		len(failures), html.EscapeString(runID))
	for _, f := range failures {
		fmt.Fprintf(&b, "<li><strong>%s</strong>: %s</li>\n", html.EscapeString(f.Set), html.EscapeString(f.Err))
	}
	b.WriteString("</ul>\n")

	return Digest{
		Subject: AlertSubject,
		HTML:    Document(AlertSubject, b.String()),
	}
}
