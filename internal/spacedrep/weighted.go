package spacedrep

import (
	"math/rand/v2"
	"slices"
	"sort"
	"time"

	"github.com/abhisek/qadigest/internal/history"
	"github.com/abhisek/qadigest/internal/qa"
)

// TimeWeight returns the age factor used by weighted spaced repetition:
// days since delivery clamped to [0, MaxPriorityDays], with never-sent
// questions at the cap.
func TimeWeight(hist history.History, id string, now time.Time) int {
	t, ok := hist.Delivered(id)
	if !ok {
		return MaxPriorityDays
	}
	return max(0, min(DaysSince(t, now), MaxPriorityDays))
}

// CombinedWeight scales answer length by age: length * (1 + age/2).
func CombinedWeight(length, timeWeight int) float64 {
	return float64(length) * (1 + float64(timeWeight)/2)
}

func weightedRandom(pool qa.Pool, n int, rng *rand.Rand) []string {
	entries := pool.Entries()
	ids := make([]string, len(entries))
	weights := make([]float64, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		weights[i] = float64(e.Length())
	}
	return weightedSample(rng, ids, weights, n)
}

func weightedSpacedRepetition(pool qa.Pool, hist history.History, n int, now time.Time, rng *rand.Rand) []string {
	type weighted struct {
		id     string
		weight float64
	}

	entries := pool.Entries()
	cands := make([]weighted, len(entries))
	for i, e := range entries {
		cands[i] = weighted{id: e.ID, weight: CombinedWeight(e.Length(), TimeWeight(hist, e.ID, now))}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].weight > cands[j].weight
	})

	ids := make([]string, len(cands))
	weights := make([]float64, len(cands))
	for i, c := range cands {
		ids[i] = c.id
		weights[i] = c.weight
	}
	return weightedSample(rng, ids, weights, n)
}

// weightedSample draws up to n distinct IDs. Each draw picks a remaining ID
// with probability proportional to its weight, then removes it. When every
// remaining weight is zero the draw is uniform.
func weightedSample(rng *rand.Rand, ids []string, weights []float64, n int) []string {
	ids = slices.Clone(ids)
	weights = slices.Clone(weights)
	for i, w := range weights {
		if w < 0 {
			weights[i] = 0
		}
	}

	out := make([]string, 0, min(n, len(ids)))
	for len(out) < n && len(ids) > 0 {
		i := pickWeighted(rng, weights)
		out = append(out, ids[i])
		ids = slices.Delete(ids, i, i+1)
		weights = slices.Delete(weights, i, i+1)
	}
	return out
}

func pickWeighted(rng *rand.Rand, weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return rng.IntN(len(weights))
	}

	r := rng.Float64() * total
	for i, w := range weights {
		if r < w {
			return i
		}
		r -= w
	}
	// Float rounding can leave r just above the last bucket.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return len(weights) - 1
}
