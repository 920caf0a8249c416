package spacedrep

import (
	"errors"
	"testing"
)

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		name string
		want Algorithm
	}{
		{"least-recently-chosen", LeastRecentlyChosen},
		{"least_recently_chosen", LeastRecentlyChosen},
		{"Spaced Repetition", SpacedRepetition},
		{"WEIGHTED_RANDOM", WeightedRandom},
		{" weighted-spaced-repetition ", WeightedSpacedRepetition},
		{"", DefaultAlgorithm},
	}
	for _, tt := range tests {
		got, err := ParseAlgorithm(tt.name)
		if err != nil {
			t.Errorf("ParseAlgorithm(%q) error = %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("ParseAlgorithm(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestParseAlgorithm_Unknown(t *testing.T) {
	got, err := ParseAlgorithm("fibonacci_shuffle")
	if got != DefaultAlgorithm {
		t.Errorf("got %s, want default %s", got, DefaultAlgorithm)
	}

	var unknown *UnknownAlgorithmError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected *UnknownAlgorithmError, got %v", err)
	}
	if unknown.Name != "fibonacci_shuffle" {
		t.Errorf("Name = %q", unknown.Name)
	}
}
