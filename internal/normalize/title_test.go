package normalize

import "testing"

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "dots folded to spaces",
			input: "The.Matrix.1999",
			want:  "the matrix 1999",
		},
		{
			name:  "underscores folded to spaces",
			input: "Fight_Club",
			want:  "fight club",
		},
		{
			name:  "bracketed groups stripped",
			input: "Inception (2010) [1080p]",
			want:  "inception",
		},
		{
			name:  "technical tokens stripped",
			input: "Dune.Part.Two.2024.WEB-DL.[EN]",
			want:  "dune part two 2024",
		},
		{
			name:  "adjacent tokens all stripped",
			input: "Movie 2020 1080p hdr hevc",
			want:  "movie 2020",
		},
		{
			name:  "plain title keeps its dash",
			input: "Spider-Man",
			want:  "spider-man",
		},
		{
			name:  "release group stripped from release-shaped names",
			input: "Blade.Runner.[1982]-ION",
			want:  "blade runner",
		},
		{
			name:  "whitespace collapsed",
			input: "  some    title  ",
			want:  "some title",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTitle(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeTitleDeterministic(t *testing.T) {
	input := "Interstellar.2014.2160p.UHD.BluRay.x265"
	first := NormalizeTitle(input)
	for i := 0; i < 10; i++ {
		if got := NormalizeTitle(input); got != first {
			t.Fatalf("run %d: got %q, want %q", i, got, first)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"The.Matrix.1999", "the-matrix-1999"},
		{"Fight Club", "fight-club"},
		{"Spider-Man", "spider-man"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Slug(tt.input); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
