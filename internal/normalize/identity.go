package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/mediafold/mediafold/internal/media"
)

// Canonical identity forms:
//
//	cm:<16 hex>                  pre-linked hash identity (GlobalIdentity)
//	movie:<slug>:<year>          fallback key for year-bearing items
//	episode:<slug>:SxxEyy        fallback key for fully-tagged episodes
//
// Identity generation is a pure function of the item's title, year, season,
// episode and kind. No clock, no external state.

const hashIdentityPrefix = "cm:"

// GlobalIdentity computes the hash-form identity a producer may attach to
// RawItem.ExplicitIdentity to pre-link items across pipelines. It is the only
// legitimate source of the "cm:" form; the resolver never invents it.
func GlobalIdentity(title string, year *int) string {
	y := "unknown"
	if year != nil {
		y = strconv.Itoa(*year)
	}
	sum := sha256.Sum256([]byte(NormalizeTitle(title) + "|" + y))
	return hashIdentityPrefix + hex.EncodeToString(sum[:8])
}

// Resolver produces canonical identities for raw items.
type Resolver struct{}

// NewResolver creates a canonical identity resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns the canonical identity for an item, or ok=false when the
// item is unlinkable. Calling Resolve twice on byte-identical input yields
// byte-identical output.
func (r *Resolver) Resolve(item media.RawItem) (string, bool) {
	// Live content is never deduplicated by identity.
	if item.Kind == media.KindLive {
		return "", false
	}

	// Explicit identities always win and are trusted as already-correct.
	if id := strings.TrimSpace(item.ExplicitIdentity); id != "" {
		return id, true
	}

	slug := Slug(item.OriginalTitle)
	if slug == "" {
		return "", false
	}

	// Fully-tagged episodes key on title+SxxEyy, independent of year.
	if item.Kind == media.KindEpisode && item.Season != nil && item.Episode != nil {
		return fmt.Sprintf("episode:%s:S%02dE%02d", slug, *item.Season, *item.Episode), true
	}

	// Everything else, including episodes missing season or episode
	// numbers, degrades to the movie-shaped title+year key.
	if item.Year == nil {
		return "", false
	}
	return fmt.Sprintf("movie:%s:%d", slug, *item.Year), true
}
