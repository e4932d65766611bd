package authority

import (
	"math"

	"github.com/mediafold/mediafold/internal/normalize"
)

// Candidate scoring: 0–100, deterministic, symmetric in the two titles.
// Up to 80 points come from title similarity, up to 20 from the year.

const (
	maxTitleScore = 80
	maxYearScore  = 20
)

// ScoreCandidate scores a search candidate against the query title and year.
// An exact normalized title with a matching year scores 100.
func ScoreCandidate(queryTitle string, queryYear *int, c Candidate) int {
	return titleScore(queryTitle, c.Title) + yearScore(queryYear, c.Year)
}

func titleScore(a, b string) int {
	na := normalize.NormalizeTitle(a)
	nb := normalize.NormalizeTitle(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return maxTitleScore
	}
	return int(math.Round(diceCoefficient(na, nb) * maxTitleScore))
}

// diceCoefficient computes the Sørensen–Dice coefficient over character
// bigrams of the normalized titles. Symmetric and order-insensitive enough
// for short titles while still penalizing token differences.
func diceCoefficient(a, b string) float64 {
	ba := bigrams(a)
	bb := bigrams(b)
	if len(ba) == 0 || len(bb) == 0 {
		return 0
	}

	counts := make(map[string]int, len(ba))
	for _, g := range ba {
		counts[g]++
	}
	overlap := 0
	for _, g := range bb {
		if counts[g] > 0 {
			counts[g]--
			overlap++
		}
	}
	return 2 * float64(overlap) / float64(len(ba)+len(bb))
}

func bigrams(s string) []string {
	runes := []rune(s)
	if len(runes) < 2 {
		return []string{string(runes)}
	}
	grams := make([]string, 0, len(runes)-1)
	for i := 0; i+1 < len(runes); i++ {
		grams = append(grams, string(runes[i:i+2]))
	}
	return grams
}

// yearScore: exact match earns full points, off-by-one (release-date vs
// premiere-date discrepancies) half, a missing year on either side stays
// neutral rather than punishing sparse metadata.
func yearScore(query, candidate *int) int {
	if query == nil || candidate == nil {
		return maxYearScore / 2
	}
	switch diff := abs(*query - *candidate); diff {
	case 0:
		return maxYearScore
	case 1:
		return maxYearScore / 2
	default:
		return 0
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
