package library

import (
	"path/filepath"
	"testing"

	"github.com/mediafold/mediafold/internal/media"
)

func intPtr(n int) *int { return &n }

func newTestRepo(t *testing.T) *WorkRepository {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewWorkRepository(db)
}

func sampleWorks() []media.Work {
	return []media.Work{
		{
			CanonicalID:       "movie:fight-club:1999",
			Title:             "Fight Club",
			Year:              intPtr(1999),
			Kind:              media.KindMovie,
			PrimaryVariantKey: "chat:1:1",
			AuthorityRef:      &media.AuthorityRef{Type: media.AuthorityMovie, ID: 550},
			Variants: []media.Variant{
				{
					Key:              "chat:1:1",
					Quality:          media.QualityFHD,
					ResolutionHeight: 1080,
					Language:         "en",
					Pipeline:         media.PipelineChat,
					SourceItemID:     "1:1",
					SourceLabel:      "movies",
					PlayableHints:    map[string]string{"chat_id": "1", "message_id": "1"},
				},
				{
					Key:          "iptv:http://example/fc",
					Quality:      media.QualitySD,
					Pipeline:     media.PipelineIPTV,
					SourceItemID: "http://example/fc",
				},
			},
		},
		{
			Title:             "Mystery Clip",
			Kind:              media.KindUnknown,
			PrimaryVariantKey: "chat:2:9",
			Variants: []media.Variant{
				{Key: "chat:2:9", Quality: media.QualitySD, Pipeline: media.PipelineChat, SourceItemID: "2:9"},
			},
		},
	}
}

func TestWorkRepositoryRoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.ReplaceAll(sampleWorks()); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	works, err := repo.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(works) != 2 {
		t.Fatalf("works = %d, want 2", len(works))
	}

	w := works[0]
	if w.CanonicalID != "movie:fight-club:1999" {
		t.Errorf("canonical id = %q", w.CanonicalID)
	}
	if w.Year == nil || *w.Year != 1999 {
		t.Errorf("year = %v", w.Year)
	}
	if w.AuthorityRef == nil || w.AuthorityRef.ID != 550 || w.AuthorityRef.Type != media.AuthorityMovie {
		t.Errorf("authority ref = %+v", w.AuthorityRef)
	}
	if len(w.Variants) != 2 {
		t.Fatalf("variants = %d, want 2", len(w.Variants))
	}
	// Variant order (the ranking) survives the round trip.
	if w.Variants[0].Key != "chat:1:1" || w.Variants[1].Key != "iptv:http://example/fc" {
		t.Errorf("variant order = %q, %q", w.Variants[0].Key, w.Variants[1].Key)
	}
	if w.Variants[0].PlayableHints["chat_id"] != "1" {
		t.Errorf("playable hints = %v", w.Variants[0].PlayableHints)
	}
	if w.Variants[0].ResolutionHeight != 1080 || w.Variants[0].Language != "en" {
		t.Errorf("variant attrs = %d/%q", w.Variants[0].ResolutionHeight, w.Variants[0].Language)
	}

	// Unlinked singleton keeps its empty canonical id and nil optionals.
	u := works[1]
	if u.CanonicalID != "" || u.Year != nil || u.AuthorityRef != nil {
		t.Errorf("unlinked work = %+v", u)
	}
}

func TestWorkRepositoryReplaceAllReplaces(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.ReplaceAll(sampleWorks()); err != nil {
		t.Fatalf("first ReplaceAll: %v", err)
	}
	if err := repo.ReplaceAll([]media.Work{
		{
			CanonicalID:       "movie:heat:1995",
			Title:             "Heat",
			Year:              intPtr(1995),
			Kind:              media.KindMovie,
			PrimaryVariantKey: "chat:3:1",
			Variants: []media.Variant{
				{Key: "chat:3:1", Quality: media.QualityHD, Pipeline: media.PipelineChat, SourceItemID: "3:1"},
			},
		},
	}); err != nil {
		t.Fatalf("second ReplaceAll: %v", err)
	}

	works, variants, err := repo.Counts()
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if works != 1 || variants != 1 {
		t.Errorf("counts = %d works / %d variants, want 1/1", works, variants)
	}
}

func TestWorkRepositoryGetByIDMissing(t *testing.T) {
	repo := newTestRepo(t)

	w, err := repo.GetByID(12345)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if w != nil {
		t.Errorf("expected nil for missing id, got %+v", w)
	}
}

func TestWorkRepositoryUpdateEnrichment(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.ReplaceAll(sampleWorks()[1:]); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	works, err := repo.List()
	if err != nil || len(works) != 1 {
		t.Fatalf("List: %v (%d works)", err, len(works))
	}

	w := works[0]
	w.Title = "Found Title"
	w.Year = intPtr(2011)
	w.AuthorityRef = &media.AuthorityRef{Type: media.AuthorityTV, ID: 42}
	w.PosterPath = "/poster.jpg"

	if err := repo.UpdateEnrichment(w.ID, &w.Work); err != nil {
		t.Fatalf("UpdateEnrichment: %v", err)
	}

	got, err := repo.GetByID(w.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Found Title" || got.Year == nil || *got.Year != 2011 {
		t.Errorf("enriched work = %q/%v", got.Title, got.Year)
	}
	if got.AuthorityRef == nil || got.AuthorityRef.Type != media.AuthorityTV || got.AuthorityRef.ID != 42 {
		t.Errorf("enriched ref = %+v", got.AuthorityRef)
	}
	if got.PosterPath != "/poster.jpg" {
		t.Errorf("poster = %q", got.PosterPath)
	}
	// Variants are untouched by enrichment.
	if len(got.Variants) != 1 || got.Variants[0].Key != "chat:2:9" {
		t.Errorf("variants changed: %+v", got.Variants)
	}
}
