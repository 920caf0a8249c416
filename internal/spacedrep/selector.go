package spacedrep

import (
	"math/rand/v2"
	"time"

	"github.com/abhisek/qadigest/internal/history"
	"github.com/abhisek/qadigest/internal/qa"
)

// Selector runs selection algorithms with an injected random source and
// clock.
type Selector struct {
	rng *rand.Rand
	now func() time.Time
}

// Option configures a Selector.
type Option func(*Selector)

// WithRand sets the random source used by the weighted algorithms.
func WithRand(rng *rand.Rand) Option {
	return func(s *Selector) { s.rng = rng }
}

// WithSeed seeds the random source deterministically.
func WithSeed(seed uint64) Option {
	return func(s *Selector) { s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithClock sets the clock used to age deliveries.
func WithClock(now func() time.Time) Option {
	return func(s *Selector) { s.now = now }
}

// NewSelector creates a Selector. Without options it uses a randomly
// seeded source and the wall clock.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now: time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Select returns up to n question IDs from pool using alg. History entries
// for IDs outside the pool are ignored.
func (s *Selector) Select(alg Algorithm, pool qa.Pool, hist history.History, n int) []string {
	n = max(0, min(n, pool.Len()))
	if n == 0 {
		return []string{}
	}

	switch alg {
	case SpacedRepetition:
		return spacedRepetition(pool, hist, n, s.now())
	case WeightedRandom:
		return weightedRandom(pool, n, s.rng)
	case WeightedSpacedRepetition:
		return weightedSpacedRepetition(pool, hist, n, s.now(), s.rng)
	default:
		return leastRecentlyChosen(pool, hist, n)
	}
}

// SelectByName parses name and selects with the resulting algorithm. The
// parse error, if any, is returned with the default algorithm's result.
func (s *Selector) SelectByName(name string, pool qa.Pool, hist history.History, n int) ([]string, Algorithm, error) {
	alg, err := ParseAlgorithm(name)
	return s.Select(alg, pool, hist, n), alg, err
}
