package normalize

import (
	"testing"

	"github.com/mediafold/mediafold/internal/health"
	"github.com/mediafold/mediafold/internal/media"
)

type staticHints map[string]string

func (h staticHints) PlayableHints(media.RawItem) map[string]string { return h }

func TestDeriverQualityDetection(t *testing.T) {
	tests := []struct {
		name       string
		title      string
		wantTag    media.QualityTag
		wantHeight int
	}{
		{"uhd from 2160p", "Dune.Part.Two.2024.2160p.WEB-DL", media.QualityUHD, 2160},
		{"uhd from 4k marker", "Movie 2020 4K HDR", media.QualityUHD, 2160},
		{"fhd", "The.Matrix.1999.1080p.BluRay", media.QualityFHD, 1080},
		{"hd", "Show.S01E02.720p.HDTV", media.QualityHD, 720},
		{"cam outranks resolution guess", "New.Release.2024.HDCAM", media.QualityCAM, 0},
		{"web without resolution", "Series Finale WEBRip", media.QualityWEB, 0},
		{"bluray without resolution", "Old.Classic.1962.BDRip", media.QualityBLURAY, 0},
		{"untagged defaults to sd", "Some Movie 2001", media.QualitySD, 0},
		{"sd with 480p height", "Some Movie 2001 480p", media.QualitySD, 480},
	}

	d := NewDeriver(health.NewMemoryStore(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := media.RawItem{
				OriginalTitle: tt.title,
				Pipeline:      media.PipelineChat,
				SourceItemID:  "1:1",
			}
			v, ok := d.Derive(item)
			if !ok {
				t.Fatal("expected a live variant")
			}
			if v.Quality != tt.wantTag {
				t.Errorf("quality = %q, want %q", v.Quality, tt.wantTag)
			}
			if v.ResolutionHeight != tt.wantHeight {
				t.Errorf("resolution = %d, want %d", v.ResolutionHeight, tt.wantHeight)
			}
		})
	}
}

func TestDeriverLanguageDetection(t *testing.T) {
	tests := []struct {
		name  string
		title string
		label string
		want  string
	}{
		{"bracket marker in title", "Der.Film.2020.[GER]", "", "de"},
		{"word marker in title", "Le Film 2020 French", "", "fr"},
		{"label token", "Movie 2020", "DE | Filme", "de"},
		{"label token with separators", "Movie 2020", "VOD-EN-Movies", "en"},
		{"unknown stays unknown", "Movie 2020", "Top Picks", ""},
	}

	d := NewDeriver(health.NewMemoryStore(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := media.RawItem{
				OriginalTitle: tt.title,
				SourceLabel:   tt.label,
				Pipeline:      media.PipelineIPTV,
				SourceItemID:  "u",
			}
			v, _ := d.Derive(item)
			if v.Language != tt.want {
				t.Errorf("language = %q, want %q", v.Language, tt.want)
			}
		})
	}
}

func TestDeriverOriginalWithSubs(t *testing.T) {
	d := NewDeriver(health.NewMemoryStore(), nil)

	v, _ := d.Derive(media.RawItem{
		OriginalTitle: "Parasite.2019.OmU",
		Pipeline:      media.PipelineChat,
		SourceItemID:  "1:2",
	})
	if !v.OriginalWithSubs {
		t.Error("expected OmU marker to set OriginalWithSubs")
	}

	v, _ = d.Derive(media.RawItem{
		OriginalTitle: "Parasite.2019",
		Pipeline:      media.PipelineChat,
		SourceItemID:  "1:3",
	})
	if v.OriginalWithSubs {
		t.Error("unexpected OriginalWithSubs without marker")
	}
}

func TestDeriverDeadVariantExcluded(t *testing.T) {
	store := health.NewMemoryStore()
	d := NewDeriver(store, nil)

	item := media.RawItem{
		OriginalTitle: "Movie 2020",
		Pipeline:      media.PipelineChat,
		SourceItemID:  "9:9",
	}

	if _, ok := d.Derive(item); !ok {
		t.Fatal("variant should be live before marking")
	}

	if err := store.MarkDead(media.VariantKey(media.PipelineChat, "9:9")); err != nil {
		t.Fatalf("MarkDead: %v", err)
	}

	if _, ok := d.Derive(item); ok {
		t.Error("variant should be excluded after marking dead")
	}
}

func TestDeriverPlayableHints(t *testing.T) {
	hints := map[media.Pipeline]HintBuilder{
		media.PipelineIPTV: staticHints{"url": "http://example/stream"},
	}
	d := NewDeriver(health.NewMemoryStore(), hints)

	v, _ := d.Derive(media.RawItem{
		OriginalTitle: "Movie 2020",
		Pipeline:      media.PipelineIPTV,
		SourceItemID:  "http://example/stream",
	})
	if v.PlayableHints["url"] != "http://example/stream" {
		t.Errorf("hints = %v, want url set", v.PlayableHints)
	}

	// Pipeline without a registered builder gets no hints.
	v, _ = d.Derive(media.RawItem{
		OriginalTitle: "Movie 2020",
		Pipeline:      media.PipelineChat,
		SourceItemID:  "1:4",
	})
	if v.PlayableHints != nil {
		t.Errorf("unexpected hints %v for unregistered pipeline", v.PlayableHints)
	}
}

func TestVariantKey(t *testing.T) {
	if got := media.VariantKey(media.PipelineChat, "42:7"); got != "chat:42:7" {
		t.Errorf("VariantKey = %q, want %q", got, "chat:42:7")
	}
}
