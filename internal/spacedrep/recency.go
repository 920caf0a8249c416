package spacedrep

import (
	"sort"

	"github.com/abhisek/qadigest/internal/history"
	"github.com/abhisek/qadigest/internal/qa"
)

func leastRecentlyChosen(pool qa.Pool, hist history.History, n int) []string {
	type sent struct {
		id string
		at int64
	}

	var never []string
	var delivered []sent
	for _, id := range pool.IDs() {
		if t, ok := hist.Delivered(id); ok {
			delivered = append(delivered, sent{id: id, at: t.UnixNano()})
		} else {
			never = append(never, id)
		}
	}

	// Oldest first; equal timestamps keep pool order.
	sort.SliceStable(delivered, func(i, j int) bool {
		return delivered[i].at < delivered[j].at
	})

	out := make([]string, 0, n)
	out = append(out, never[:min(n, len(never))]...)
	for _, d := range delivered {
		if len(out) == n {
			break
		}
		out = append(out, d.id)
	}
	return out
}
