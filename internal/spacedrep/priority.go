package spacedrep

import (
	"math"
	"sort"
	"time"

	"github.com/abhisek/qadigest/internal/history"
	"github.com/abhisek/qadigest/internal/qa"
)

// MaxPriorityDays caps how much a delivery's age counts.
const MaxPriorityDays = 30

// NewQuestionPriority is the spaced-repetition score of a question that
// has never been delivered. It sits one above the cap so new questions
// outrank every aged one.
const NewQuestionPriority = MaxPriorityDays + 1

// DaysSince returns whole days elapsed from t to now, rounded down.
// Negative when t lies in the future.
func DaysSince(t, now time.Time) int {
	return int(math.Floor(now.Sub(t).Hours() / 24))
}

// Priority returns the spaced-repetition score of id.
func Priority(hist history.History, id string, now time.Time) int {
	t, ok := hist.Delivered(id)
	if !ok {
		return NewQuestionPriority
	}
	return min(DaysSince(t, now), MaxPriorityDays)
}

func spacedRepetition(pool qa.Pool, hist history.History, n int, now time.Time) []string {
	type scored struct {
		id       string
		priority int
	}

	ids := pool.IDs()
	ranked := make([]scored, len(ids))
	for i, id := range ids {
		ranked[i] = scored{id: id, priority: Priority(hist, id, now)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].priority > ranked[j].priority
	})

	out := make([]string, n)
	for i := range out {
		out[i] = ranked[i].id
	}
	return out
}
