// Package qa holds the question/answer pool a question set draws from.
package qa

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/abhisek/qadigest/internal/validate"
)

// ErrPoolNotFound is returned when a set's pool file does not exist.
var ErrPoolNotFound = errors.New("question pool not found")

// poolSchema describes the on-disk pool: a flat object of question id to
// answer content.
const poolSchema = `{
	"type": "object",
	"additionalProperties": {"type": "string"}
}`

// Entry is one question/answer pair. Content is opaque to the scheduler;
// it may carry markdown, LaTeX or image references.
type Entry struct {
	ID      string
	Content string
}

// Length returns the character length of the answer content.
func (e Entry) Length() int {
	return utf8.RuneCountInString(e.Content)
}

// Pool is an ordered set of entries with unique IDs. Order follows the
// backing document and is the tie-break order for every selection policy.
type Pool struct {
	entries []Entry
	index   map[string]int
}

// NewPool builds a pool from entries. A repeated ID keeps its first
// position and takes the later content.
func NewPool(entries ...Entry) Pool {
	var p Pool
	for _, e := range entries {
		p.add(e.ID, e.Content)
	}
	return p
}

func (p *Pool) add(id, content string) {
	if p.index == nil {
		p.index = make(map[string]int)
	}
	if i, ok := p.index[id]; ok {
		p.entries[i].Content = content
		return
	}
	p.index[id] = len(p.entries)
	p.entries = append(p.entries, Entry{ID: id, Content: content})
}

// Len returns the number of entries.
func (p Pool) Len() int { return len(p.entries) }

// Entries returns a copy of the entries in pool order.
func (p Pool) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// IDs returns the question IDs in pool order.
func (p Pool) IDs() []string {
	ids := make([]string, len(p.entries))
	for i, e := range p.entries {
		ids[i] = e.ID
	}
	return ids
}

// Has reports whether id is in the pool.
func (p Pool) Has(id string) bool {
	_, ok := p.index[id]
	return ok
}

// Get returns the entry for id.
func (p Pool) Get(id string) (Entry, bool) {
	i, ok := p.index[id]
	if !ok {
		return Entry{}, false
	}
	return p.entries[i], true
}

// Parse decodes a pool document, keeping the key order of the JSON object.
func Parse(data []byte) (Pool, error) {
	if err := validate.JSON("qa-pool", poolSchema, data); err != nil {
		return Pool{}, fmt.Errorf("validate pool: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil { // opening '{', shape checked above
		return Pool{}, fmt.Errorf("decode pool: %w", err)
	}

	var p Pool
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Pool{}, fmt.Errorf("decode pool key: %w", err)
		}
		id, ok := tok.(string)
		if !ok {
			return Pool{}, fmt.Errorf("decode pool: unexpected token %v", tok)
		}
		var content string
		if err := dec.Decode(&content); err != nil {
			return Pool{}, fmt.Errorf("decode answer for %q: %w", id, err)
		}
		p.add(id, content)
	}
	return p, nil
}

// Load reads and parses the pool file at path.
func Load(path string) (Pool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Pool{}, fmt.Errorf("%w: %s", ErrPoolNotFound, path)
		}
		return Pool{}, fmt.Errorf("read pool: %w", err)
	}
	return Parse(data)
}
