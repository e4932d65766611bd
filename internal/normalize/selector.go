package normalize

import (
	"fmt"
	"sort"

	"github.com/mediafold/mediafold/internal/media"
)

// Preferences is the explicit configuration driving variant ranking. Never
// read from ambient/global state.
type Preferences struct {
	PreferredLanguages          []string
	PreferOriginalWithSubtitles bool
	QualityWeights              map[media.QualityTag]int
}

// DefaultPreferences ranks by raw fidelity: UHD best, CAM worst, with WEB
// sources ahead of untagged SD.
func DefaultPreferences() Preferences {
	return Preferences{
		PreferredLanguages: []string{"en"},
		QualityWeights: map[media.QualityTag]int{
			media.QualityUHD:    90,
			media.QualityFHD:    70,
			media.QualityBLURAY: 65,
			media.QualityHD:     50,
			media.QualityWEB:    40,
			media.QualitySD:     20,
			media.QualityCAM:    0,
		},
	}
}

// Validate fails fast on malformed preferences: unknown quality tags or
// negative weights are programmer errors, caught before any pass runs.
func (p Preferences) Validate() error {
	known := make(map[media.QualityTag]struct{}, len(media.QualityTags))
	for _, t := range media.QualityTags {
		known[t] = struct{}{}
	}
	for tag, w := range p.QualityWeights {
		if _, ok := known[tag]; !ok {
			return fmt.Errorf("unknown quality tag %q in preference weights", tag)
		}
		if w < 0 {
			return fmt.Errorf("negative weight %d for quality tag %q", w, tag)
		}
	}
	return nil
}

func (p Preferences) qualityWeight(tag media.QualityTag) int {
	if w, ok := p.QualityWeights[tag]; ok {
		return w
	}
	return 0
}

// languageRank returns the position of lang in the preferred list; unknown
// or unlisted languages rank after every listed one.
func (p Preferences) languageRank(lang string) int {
	if lang != "" {
		for i, l := range p.PreferredLanguages {
			if l == lang {
				return i
			}
		}
	}
	return len(p.PreferredLanguages)
}

// SortByPreference orders variants best first. The sort is stable: variants
// that compare equal keep their original discovery order, so output never
// depends on map iteration order upstream.
func SortByPreference(variants []media.Variant, prefs Preferences) []media.Variant {
	sorted := make([]media.Variant, len(variants))
	copy(sorted, variants)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]

		if wa, wb := prefs.qualityWeight(a.Quality), prefs.qualityWeight(b.Quality); wa != wb {
			return wa > wb
		}
		if a.ResolutionHeight != b.ResolutionHeight {
			return a.ResolutionHeight > b.ResolutionHeight
		}
		if ra, rb := prefs.languageRank(a.Language), prefs.languageRank(b.Language); ra != rb {
			return ra < rb
		}
		if prefs.PreferOriginalWithSubtitles && a.OriginalWithSubs != b.OriginalWithSubs {
			return a.OriginalWithSubs
		}
		return false
	})

	return sorted
}
