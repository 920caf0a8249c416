// Package history records when each question of a set was last delivered.
//
// A Store loads and commits one record per question set. Loading is
// fail-soft: a missing or unreadable record yields an empty History and
// the condition is logged, never returned. Committing re-reads the
// persisted record, stamps the delivered IDs and writes the merged record
// back in full, leaving the previous record intact if the write fails.
package history

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"
)

// LegacyTimeLayout is the offset-less local-time format older records
// were written in. It is still read but no longer written.
const LegacyTimeLayout = "2006-01-02 15:04:05"

// History maps question ID to the time it was last delivered.
type History map[string]time.Time

// Delivered returns when id was last delivered.
func (h History) Delivered(id string) (time.Time, bool) {
	t, ok := h[id]
	return t, ok
}

// Store persists delivery history per question set.
type Store interface {
	// Load returns the history for set, or an empty History when none can
	// be read.
	Load(ctx context.Context, set string) History

	// Commit marks ids as delivered at the given time, merging with the
	// persisted record.
	Commit(ctx context.Context, set string, ids []string, at time.Time) error
}

// Lister is implemented by stores that can enumerate the sets they hold
// history for.
type Lister interface {
	Sets(ctx context.Context) ([]string, error)
}

var (
	_ Lister = (*FileStore)(nil)
	_ Lister = (*RedisStore)(nil)
	_ Lister = (*MemoryStore)(nil)
)

// Orphans returns the recorded set names missing from known, keeping the
// order of recorded.
func Orphans(recorded, known []string) []string {
	have := make(map[string]bool, len(known))
	for _, k := range known {
		have[k] = true
	}
	var out []string
	for _, r := range recorded {
		if !have[r] {
			out = append(out, r)
		}
	}
	return out
}

// Record is the persisted form of a History: question ID to timestamp
// string. Unparseable values survive a commit untouched.
type Record map[string]string

// With returns a copy of r with every id stamped at the given time.
func (r Record) With(ids []string, at time.Time) Record {
	out := make(Record, len(r)+len(ids))
	for k, v := range r {
		out[k] = v
	}
	stamp := FormatTime(at)
	for _, id := range ids {
		out[id] = stamp
	}
	return out
}

// Keys returns the record's question IDs in lexical order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Decode converts a record into a History. Entries with unparseable
// timestamps are left out and reported in skipped.
func (r Record) Decode() (h History, skipped []string) {
	h = make(History, len(r))
	for _, id := range r.Keys() {
		t, err := ParseTime(r[id])
		if err != nil {
			skipped = append(skipped, id)
			continue
		}
		h[id] = t
	}
	return h, skipped
}

// FormatTime renders t as RFC 3339 in UTC, so stamps written across a
// daylight-saving change still order correctly.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseTime parses a persisted timestamp in RFC 3339 or the legacy layout.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(LegacyTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

var setNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidSetName reports whether name can safely key a history record.
func ValidSetName(name string) bool {
	return setNamePattern.MatchString(name)
}
