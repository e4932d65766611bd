package authority

import (
	"testing"
)

func intPtr(n int) *int { return &n }

func TestScoreCandidate(t *testing.T) {
	tests := []struct {
		name       string
		queryTitle string
		queryYear  *int
		candidate  Candidate
		want       int
	}{
		{
			name:       "exact title and year",
			queryTitle: "Fight Club",
			queryYear:  intPtr(1999),
			candidate:  Candidate{Title: "Fight Club", Year: intPtr(1999)},
			want:       100,
		},
		{
			name:       "exact after normalization",
			queryTitle: "Fight.Club.1080p",
			queryYear:  intPtr(1999),
			candidate:  Candidate{Title: "fight club", Year: intPtr(1999)},
			want:       100,
		},
		{
			name:       "exact title, year off by one",
			queryTitle: "Fight Club",
			queryYear:  intPtr(2000),
			candidate:  Candidate{Title: "Fight Club", Year: intPtr(1999)},
			want:       90,
		},
		{
			name:       "exact title, missing query year",
			queryTitle: "Fight Club",
			candidate:  Candidate{Title: "Fight Club", Year: intPtr(1999)},
			want:       90,
		},
		{
			name:       "exact title, year far off",
			queryTitle: "Fight Club",
			queryYear:  intPtr(1980),
			candidate:  Candidate{Title: "Fight Club", Year: intPtr(1999)},
			want:       80,
		},
		{
			name:       "empty candidate title",
			queryTitle: "Fight Club",
			queryYear:  intPtr(1999),
			candidate:  Candidate{Title: "", Year: intPtr(1999)},
			want:       20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreCandidate(tt.queryTitle, tt.queryYear, tt.candidate)
			if got != tt.want {
				t.Errorf("ScoreCandidate() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreCandidateSimilarTitlesRankHigher(t *testing.T) {
	year := intPtr(2010)
	near := ScoreCandidate("Inception", year, Candidate{Title: "Inceptions", Year: year})
	far := ScoreCandidate("Inception", year, Candidate{Title: "The Expendables", Year: year})

	if near <= far {
		t.Errorf("similar title scored %d, dissimilar %d", near, far)
	}
	if near >= 100 {
		t.Errorf("inexact title should not reach a perfect score, got %d", near)
	}
}

func TestScoreCandidateDeterministic(t *testing.T) {
	c := Candidate{Title: "The Matrix Reloaded", Year: intPtr(2003)}
	first := ScoreCandidate("The Matrix", intPtr(1999), c)
	for i := 0; i < 10; i++ {
		if got := ScoreCandidate("The Matrix", intPtr(1999), c); got != first {
			t.Fatalf("run %d: got %d, want %d", i, got, first)
		}
	}
}

func TestDiceCoefficientBounds(t *testing.T) {
	if d := diceCoefficient("abc", "abc"); d != 1 {
		t.Errorf("identical strings coefficient = %f, want 1", d)
	}
	if d := diceCoefficient("abc", "xyz"); d != 0 {
		t.Errorf("disjoint strings coefficient = %f, want 0", d)
	}
	if d := diceCoefficient("night", "nacht"); d <= 0 || d >= 1 {
		t.Errorf("overlapping strings coefficient = %f, want in (0, 1)", d)
	}
}
