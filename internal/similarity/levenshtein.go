// Package similarity scores how alike two identifier strings are on a 0-100
// scale. The resolver only depends on the Scorer contract, so any
// edit-distance implementation can be substituted.
package similarity

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Scorer returns a similarity ratio between 0 (nothing in common) and 100
// (identical).
type Scorer interface {
	Score(a, b string) int
}

// LevenshteinScorer rates strings by edit distance relative to the length of
// the longer string. Comparison is case-insensitive.
type LevenshteinScorer struct{}

func NewLevenshteinScorer() Scorer {
	return LevenshteinScorer{}
}

func (LevenshteinScorer) Score(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	if a == b {
		if a == "" {
			return 0
		}
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	ra, rb := []rune(a), []rune(b)
	distance := levenshtein.DistanceForStrings(ra, rb, levenshtein.DefaultOptions)

	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}

	score := 100 - (distance*100+maxLen/2)/maxLen
	if score < 0 {
		return 0
	}
	return score
}
