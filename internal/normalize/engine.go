package normalize

import (
	"github.com/mediafold/mediafold/internal/media"
)

// Engine orchestrates identity resolution, variant derivation and selection
// into one normalized-work record per identity group.
//
// Normalize is a pure, synchronous, single-pass computation: same items and
// preferences in, same works out, forever. The only external state it touches
// is the read-only health store inside the deriver.
type Engine struct {
	resolver *Resolver
	deriver  *Deriver
}

// NewEngine creates a normalization engine.
func NewEngine(resolver *Resolver, deriver *Deriver) *Engine {
	return &Engine{resolver: resolver, deriver: deriver}
}

// Result summarizes a normalization pass alongside its works.
type Result struct {
	Works         []media.Work
	LinkedItems   int
	UnlinkedItems int
	DeadDropped   int
}

// Normalize groups raw items by canonical identity, derives and filters
// variants per group, and emits one work per surviving group. Linked works
// come first, unlinked singletons after; callers may rely on that order.
func (e *Engine) Normalize(items []media.RawItem, prefs Preferences) Result {
	var res Result

	// Group linked items by identity, preserving insertion order of both
	// groups and group members.
	type group struct {
		identity string
		items    []media.RawItem
	}
	var groups []*group
	index := make(map[string]*group)
	var unlinked []media.RawItem

	for _, item := range items {
		identity, ok := e.resolver.Resolve(item)
		if !ok {
			unlinked = append(unlinked, item)
			continue
		}
		res.LinkedItems++
		g, seen := index[identity]
		if !seen {
			g = &group{identity: identity}
			index[identity] = g
			groups = append(groups, g)
		}
		g.items = append(g.items, item)
	}
	res.UnlinkedItems = len(unlinked)

	for _, g := range groups {
		variants := make([]media.Variant, 0, len(g.items))
		for _, item := range g.items {
			v, alive := e.deriver.Derive(item)
			if !alive {
				res.DeadDropped++
				continue
			}
			variants = append(variants, v)
		}
		// A work with zero live variants does not exist.
		if len(variants) == 0 {
			continue
		}

		first := g.items[0]
		res.Works = append(res.Works, buildWork(g.identity, first, variants, prefs))
	}

	for _, item := range unlinked {
		v, alive := e.deriver.Derive(item)
		if !alive {
			res.DeadDropped++
			continue
		}
		res.Works = append(res.Works, buildWork("", item, []media.Variant{v}, prefs))
	}

	return res
}

func buildWork(identity string, first media.RawItem, variants []media.Variant, prefs Preferences) media.Work {
	sorted := SortByPreference(variants, prefs)
	return media.Work{
		CanonicalID:       identity,
		Title:             first.OriginalTitle,
		Year:              first.Year,
		Kind:              first.Kind,
		Variants:          sorted,
		PrimaryVariantKey: sorted[0].Key,
		AuthorityRef:      first.AuthorityRef,
	}
}
