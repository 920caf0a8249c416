package runner

import (
	"time"

	"github.com/abhisek/qadigest/internal/spacedrep"
)

// State is how far a set got during a run.
type State string

const (
	StateLoaded    State = "loaded"
	StatePaused    State = "paused"
	StateSelected  State = "selected"
	StateDelivered State = "delivered"
	StateCommitted State = "committed"
	StateFailed    State = "failed"
)

// SetResult is the outcome for one question set.
type SetResult struct {
	Set   string
	Dir   string
	State State

	Algorithm spacedrep.Algorithm
	// FallbackAlgorithm is set when the configured algorithm was unknown and
	// the default was used instead; RequestedAlgorithm holds the raw name.
	FallbackAlgorithm  bool
	RequestedAlgorithm string

	PoolSize  int
	Selected  []string
	Delivered bool
	Committed bool

	// Err is non-nil exactly when State is StateFailed.
	Err error
}

// Report summarizes a run.
type Report struct {
	RunID    string
	DryRun   bool
	Started  time.Time
	Finished time.Time
	Sets     []SetResult

	// AlertErr is the error from sending the failure alert, if one was sent.
	AlertErr error
}

// Failed reports whether any set failed.
func (r *Report) Failed() bool {
	return len(r.Failures()) > 0
}

// Failures returns the failed sets in run order.
func (r *Report) Failures() []SetResult {
	var out []SetResult
	for _, s := range r.Sets {
		if s.State == StateFailed {
			out = append(out, s)
		}
	}
	return out
}

// Count returns how many sets ended in state.
func (r *Report) Count(state State) int {
	n := 0
	for _, s := range r.Sets {
		if s.State == state {
			n++
		}
	}
	return n
}
