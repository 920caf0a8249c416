// Package spacedrep chooses which questions of a set to deliver next.
//
// Selection is pure: it reads a pool and a delivery history and returns
// an ordered list of question IDs drawn from the pool only, without
// duplicates, of length min(n, pool size). Four algorithms are available;
// ParseAlgorithm maps a configured name to one of them.
package spacedrep

import (
	"fmt"
	"strings"
)

// Algorithm names a selection policy.
type Algorithm string

const (
	// LeastRecentlyChosen delivers never-sent questions first (pool order),
	// then the oldest deliveries.
	LeastRecentlyChosen Algorithm = "least-recently-chosen"

	// SpacedRepetition ranks by days since delivery, capped, with
	// never-sent questions above the cap.
	SpacedRepetition Algorithm = "spaced-repetition"

	// WeightedRandom samples without replacement, weighted by answer length.
	WeightedRandom Algorithm = "weighted-random"

	// WeightedSpacedRepetition samples without replacement, weighted by
	// answer length scaled by days since delivery.
	WeightedSpacedRepetition Algorithm = "weighted-spaced-repetition"
)

func (a Algorithm) String() string { return string(a) }

// DefaultAlgorithm is used when no algorithm is configured or the
// configured name is unknown.
const DefaultAlgorithm = LeastRecentlyChosen

// Algorithms lists every supported algorithm.
func Algorithms() []Algorithm {
	return []Algorithm{LeastRecentlyChosen, SpacedRepetition, WeightedRandom, WeightedSpacedRepetition}
}

// UnknownAlgorithmError reports a configured name that matched no
// algorithm. The caller receives DefaultAlgorithm alongside it.
type UnknownAlgorithmError struct {
	Name string
}

func (e *UnknownAlgorithmError) Error() string {
	return fmt.Sprintf("unknown question algorithm %q, using %s", e.Name, DefaultAlgorithm)
}

// ParseAlgorithm maps a configured name to an Algorithm. Matching ignores
// case and treats spaces and underscores as hyphens, so the module-style
// name "least_recently_chosen" is accepted. An empty name selects the
// default silently; an unrecognized name selects the default and returns
// an *UnknownAlgorithmError.
func ParseAlgorithm(name string) (Algorithm, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	if norm == "" {
		return DefaultAlgorithm, nil
	}
	for _, a := range Algorithms() {
		if string(a) == norm {
			return a, nil
		}
	}
	return DefaultAlgorithm, &UnknownAlgorithmError{Name: name}
}
