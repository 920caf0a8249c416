package history

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps records in process. Used for dry runs and tests.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record

	// FailCommit, when set, is returned by every Commit without writing.
	FailCommit error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Seed replaces the record for set.
func (m *MemoryStore) Seed(set string, rec Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[set] = rec.With(nil, time.Time{})
}

// Record returns a copy of the persisted record for set.
func (m *MemoryStore) Record(set string) Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[set].With(nil, time.Time{})
}

func (m *MemoryStore) Load(_ context.Context, set string) History {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, _ := m.records[set].Decode()
	return h
}

func (m *MemoryStore) Commit(_ context.Context, set string, ids []string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCommit != nil {
		return m.FailCommit
	}
	if len(ids) == 0 {
		return nil
	}
	m.records[set] = m.records[set].With(ids, at)
	return nil
}

func (m *MemoryStore) Sets(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sets := make([]string, 0, len(m.records))
	for set := range m.records {
		sets = append(sets, set)
	}
	slices.Sort(sets)
	return sets, nil
}
