package normalize

import (
	"strings"

	"github.com/mediafold/mediafold/internal/health"
	"github.com/mediafold/mediafold/internal/media"
)

// HintBuilder constructs the opaque playable hints for one pipeline's items.
// Pipelines that resolve playback URLs at playback time return an empty map.
type HintBuilder interface {
	PlayableHints(item media.RawItem) map[string]string
}

// qualityMarkers is scanned in order against the original (non-normalized)
// title; the first match wins.
var qualityMarkers = []struct {
	tag     media.QualityTag
	height  int
	markers []string
}{
	{media.QualityUHD, 2160, []string{"UHD", "4K", "2160P"}},
	{media.QualityFHD, 1080, []string{"1080P", "FHD"}},
	{media.QualityHD, 720, []string{"720P"}},
	{media.QualityCAM, 0, []string{"HDCAM", "CAM"}},
	{media.QualityWEB, 0, []string{"WEB-DL", "WEBRIP"}},
	{media.QualityBLURAY, 0, []string{"BLURAY", "BDRIP"}},
}

// languageMarkers maps title/label markers to ISO-639-1 codes. Scanned in
// order; the first match wins. Unmatched stays unknown, never guessed.
var languageMarkers = []struct {
	code    string
	markers []string
	tokens  []string
}{
	{"de", []string{"[ger]", "[de]", "german", "deutsch"}, []string{"de", "ger"}},
	{"en", []string{"[eng]", "[en]", "english"}, []string{"en", "eng"}},
	{"fr", []string{"[fre]", "[fr]", "french"}, []string{"fr", "fre"}},
	{"es", []string{"[spa]", "[es]", "spanish"}, []string{"es", "spa"}},
	{"it", []string{"[ita]", "[it]", "italian"}, []string{"it", "ita"}},
}

var originalSubsMarkers = []string{"omu", "[omu]", "ov ", "[ov]", "subbed"}

// Deriver converts raw items into variant descriptors, consulting the health
// store to exclude renditions known to be permanently broken.
type Deriver struct {
	health health.Store
	hints  map[media.Pipeline]HintBuilder
}

// NewDeriver creates a variant deriver. hints may be nil; pipelines without
// a registered builder get empty playable hints.
func NewDeriver(store health.Store, hints map[media.Pipeline]HintBuilder) *Deriver {
	if store == nil {
		store = health.NewMemoryStore()
	}
	return &Deriver{health: store, hints: hints}
}

// Derive builds the variant for a raw item, or ok=false when the rendition
// is marked permanently dead.
func (d *Deriver) Derive(item media.RawItem) (media.Variant, bool) {
	key := media.VariantKey(item.Pipeline, item.SourceItemID)
	if d.health.IsDead(key) {
		return media.Variant{}, false
	}

	v := media.Variant{
		Key:          key,
		Quality:      media.QualitySD,
		Pipeline:     item.Pipeline,
		SourceItemID: item.SourceItemID,
		SourceLabel:  item.SourceLabel,
	}

	upper := strings.ToUpper(item.OriginalTitle)
	for _, q := range qualityMarkers {
		if containsAny(upper, q.markers) {
			v.Quality = q.tag
			v.ResolutionHeight = q.height
			break
		}
	}
	if v.ResolutionHeight == 0 && strings.Contains(upper, "480P") {
		v.ResolutionHeight = 480
	}

	v.Language = detectLanguage(item.OriginalTitle, item.SourceLabel)

	lower := strings.ToLower(item.OriginalTitle)
	for _, m := range originalSubsMarkers {
		if strings.Contains(lower, m) {
			v.OriginalWithSubs = true
			break
		}
	}

	if b, ok := d.hints[item.Pipeline]; ok {
		v.PlayableHints = b.PlayableHints(item)
	}

	return v, true
}

func detectLanguage(title, label string) string {
	haystack := strings.ToLower(title + " " + label)
	tokens := strings.FieldsFunc(strings.ToLower(label), func(r rune) bool {
		return r == ' ' || r == '|' || r == '-' || r == '_' || r == '.'
	})

	for _, lm := range languageMarkers {
		if containsAny(haystack, lm.markers) {
			return lm.code
		}
		for _, tok := range tokens {
			for _, want := range lm.tokens {
				if tok == want {
					return lm.code
				}
			}
		}
	}
	return ""
}

// containsAny is case-sensitive; callers pass haystack and markers in
// matching case.
func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
