package normalize

import (
	"strings"
	"testing"

	"github.com/mediafold/mediafold/internal/media"
)

func intPtr(n int) *int { return &n }

func TestResolverResolve(t *testing.T) {
	tests := []struct {
		name   string
		item   media.RawItem
		want   string
		wantOK bool
	}{
		{
			name: "movie with year",
			item: media.RawItem{
				OriginalTitle: "Fight Club",
				Year:          intPtr(1999),
				Kind:          media.KindMovie,
			},
			want:   "movie:fight-club:1999",
			wantOK: true,
		},
		{
			name: "fully tagged episode",
			item: media.RawItem{
				OriginalTitle: "Breaking Bad",
				Season:        intPtr(5),
				Episode:       intPtr(16),
				Kind:          media.KindEpisode,
			},
			want:   "episode:breaking-bad:S05E16",
			wantOK: true,
		},
		{
			name: "episode key is independent of year",
			item: media.RawItem{
				OriginalTitle: "Breaking Bad",
				Year:          intPtr(2012),
				Season:        intPtr(5),
				Episode:       intPtr(16),
				Kind:          media.KindEpisode,
			},
			want:   "episode:breaking-bad:S05E16",
			wantOK: true,
		},
		{
			name: "episode missing season degrades to movie key",
			item: media.RawItem{
				OriginalTitle: "Breaking Bad",
				Year:          intPtr(2012),
				Episode:       intPtr(16),
				Kind:          media.KindEpisode,
			},
			want:   "movie:breaking-bad:2012",
			wantOK: true,
		},
		{
			name: "explicit identity wins over everything",
			item: media.RawItem{
				OriginalTitle:    "whatever",
				Year:             intPtr(2001),
				Kind:             media.KindMovie,
				ExplicitIdentity: "cm:0011223344556677",
			},
			want:   "cm:0011223344556677",
			wantOK: true,
		},
		{
			name: "live is never linked",
			item: media.RawItem{
				OriginalTitle: "CNN HD",
				Kind:          media.KindLive,
			},
			wantOK: false,
		},
		{
			name: "missing year is unlinkable",
			item: media.RawItem{
				OriginalTitle: "Fight Club",
				Kind:          media.KindMovie,
			},
			wantOK: false,
		},
		{
			name: "title that normalizes to nothing is unlinkable",
			item: media.RawItem{
				OriginalTitle: "[1080p]",
				Year:          intPtr(2020),
				Kind:          media.KindMovie,
			},
			wantOK: false,
		},
	}

	r := NewResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.item)
			if ok != tt.wantOK {
				t.Fatalf("Resolve() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolverDeterministic(t *testing.T) {
	item := media.RawItem{
		OriginalTitle: "The.Matrix.1999.1080p",
		Year:          intPtr(1999),
		Kind:          media.KindMovie,
	}

	r := NewResolver()
	first, ok := r.Resolve(item)
	if !ok {
		t.Fatal("expected item to resolve")
	}
	for i := 0; i < 20; i++ {
		got, ok := r.Resolve(item)
		if !ok || got != first {
			t.Fatalf("run %d: got (%q, %v), want (%q, true)", i, got, ok, first)
		}
	}
}

func TestGlobalIdentity(t *testing.T) {
	id := GlobalIdentity("The Matrix", intPtr(1999))

	if !strings.HasPrefix(id, "cm:") {
		t.Errorf("identity %q missing cm: prefix", id)
	}
	if len(id) != len("cm:")+16 {
		t.Errorf("identity %q has wrong length %d", id, len(id))
	}

	// Deterministic across equivalent spellings of the same title.
	if other := GlobalIdentity("the.matrix [1080p]", intPtr(1999)); other != id {
		t.Errorf("equivalent titles diverged: %q vs %q", id, other)
	}

	// Year participates in the hash.
	if other := GlobalIdentity("The Matrix", intPtr(2003)); other == id {
		t.Error("different years produced the same identity")
	}
	if other := GlobalIdentity("The Matrix", nil); other == id {
		t.Error("missing year produced the same identity as 1999")
	}
}
