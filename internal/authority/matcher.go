package authority

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mediafold/mediafold/internal/media"
	"github.com/mediafold/mediafold/internal/metrics"
	"github.com/mediafold/mediafold/internal/normalize"
)

// Outcome is the terminal result of an enrichment attempt.
type Outcome string

const (
	OutcomeAccepted  Outcome = "accepted"
	OutcomeAmbiguous Outcome = "ambiguous"
	OutcomeRejected  Outcome = "rejected"
)

// Decision describes how an enrichment attempt ended. Ref is set only on
// accepted outcomes. Reason is a stable machine-readable token.
type Decision struct {
	Outcome Outcome             `json:"outcome"`
	Ref     *media.AuthorityRef `json:"ref,omitempty"`
	Score   int                 `json:"score,omitempty"`
	Margin  int                 `json:"margin,omitempty"`
	Reason  string              `json:"reason"`
}

// Config sizes the matcher's caches and thresholds. All values are named
// configuration, validated at construction.
type Config struct {
	DetailsCacheSize int
	SearchCacheSize  int
	DetailsTTL       time.Duration
	SearchTTL        time.Duration

	// AcceptScore is both the accept floor and the usefulness floor: a top
	// candidate below it is rejected outright. AcceptMargin is the minimum
	// lead over the second-best candidate.
	AcceptScore  int
	AcceptMargin int
}

// DefaultConfig returns the production cache bounds and decision thresholds.
func DefaultConfig() Config {
	return Config{
		DetailsCacheSize: 256,
		SearchCacheSize:  256,
		DetailsTTL:       7 * 24 * time.Hour,
		SearchTTL:        24 * time.Hour,
		AcceptScore:      85,
		AcceptMargin:     10,
	}
}

// Validate fails fast on configuration that could only come from a
// programming mistake.
func (c Config) Validate() error {
	if c.DetailsCacheSize <= 0 || c.SearchCacheSize <= 0 {
		return fmt.Errorf("cache sizes must be positive (details=%d search=%d)", c.DetailsCacheSize, c.SearchCacheSize)
	}
	if c.DetailsTTL <= 0 || c.SearchTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive (details=%s search=%s)", c.DetailsTTL, c.SearchTTL)
	}
	if c.AcceptScore < 1 || c.AcceptScore > 100 {
		return fmt.Errorf("accept score %d outside 1..100", c.AcceptScore)
	}
	if c.AcceptMargin < 0 {
		return fmt.Errorf("accept margin %d is negative", c.AcceptMargin)
	}
	return nil
}

type searchKey struct {
	typ      media.AuthorityRefType
	title    string
	year     int // 0 = unknown
	language string
}

// Matcher resolves normalized works against the external authority. Enrich
// may be called concurrently for different works; the caches are the only
// shared mutable state. One request attempt per call, no retries — repeat
// work is absorbed by the caches and the next pass.
type Matcher struct {
	provider Provider
	cfg      Config

	movieDetails *Cache[int, *Details]
	tvDetails    *Cache[int, *Details]
	searches     *Cache[searchKey, []Candidate]

	log     *slog.Logger
	metrics *metrics.Metrics // may be nil
}

// NewMatcher creates a matcher. metrics may be nil.
func NewMatcher(provider Provider, cfg Config, m *metrics.Metrics) (*Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matcher config: %w", err)
	}
	return &Matcher{
		provider:     provider,
		cfg:          cfg,
		movieDetails: NewCache[int, *Details](cfg.DetailsCacheSize, cfg.DetailsTTL),
		tvDetails:    NewCache[int, *Details](cfg.DetailsCacheSize, cfg.DetailsTTL),
		searches:     NewCache[searchKey, []Candidate](cfg.SearchCacheSize, cfg.SearchTTL),
		log:          slog.With("component", "authority-matcher"),
		metrics:      m,
	}, nil
}

// Enrich resolves one work against the authority. It mutates the work only
// on success paths (adopted ref, applied details) and never on failure:
// enrichment is best-effort and a transport error leaves the work exactly as
// it came in.
func (m *Matcher) Enrich(ctx context.Context, work *media.Work) Decision {
	decision := m.enrich(ctx, work)
	if m.metrics != nil {
		m.metrics.AuthorityDecisions.WithLabelValues(string(decision.Outcome)).Inc()
	}
	return decision
}

func (m *Matcher) enrich(ctx context.Context, work *media.Work) Decision {
	// Path A: a known ref (explicit or previously accepted) skips search.
	if work.AuthorityRef != nil {
		if err := m.applyDetails(ctx, work, *work.AuthorityRef); err != nil {
			m.log.Warn("authority details fetch failed", "title", work.Title, "error", err)
			return Decision{Outcome: OutcomeRejected, Reason: "provider_error"}
		}
		return Decision{Outcome: OutcomeAccepted, Ref: work.AuthorityRef, Reason: "known_ref"}
	}

	switch work.Kind {
	case media.KindMovie:
		return m.matchAndApply(ctx, work, media.AuthorityMovie)
	case media.KindSeries, media.KindEpisode:
		return m.matchAndApply(ctx, work, media.AuthorityTV)
	case media.KindUnknown:
		return m.matchUnknown(ctx, work)
	default:
		// Live content carries no stable identity to enrich.
		return Decision{Outcome: OutcomeRejected, Reason: "kind_not_enrichable"}
	}
}

// matchUnknown tries the movie catalog first, then the series catalog. An
// accept on either path stops; two ambiguous results stay ambiguous;
// anything else is a reject.
func (m *Matcher) matchUnknown(ctx context.Context, work *media.Work) Decision {
	movie := m.matchAndApply(ctx, work, media.AuthorityMovie)
	if movie.Outcome == OutcomeAccepted {
		return movie
	}
	tv := m.matchAndApply(ctx, work, media.AuthorityTV)
	if tv.Outcome == OutcomeAccepted {
		return tv
	}
	if movie.Outcome == OutcomeAmbiguous && tv.Outcome == OutcomeAmbiguous {
		return Decision{Outcome: OutcomeAmbiguous, Reason: "ambiguous_both_kinds"}
	}
	return Decision{Outcome: OutcomeRejected, Reason: "no_confident_match"}
}

func (m *Matcher) matchAndApply(ctx context.Context, work *media.Work, typ media.AuthorityRefType) Decision {
	candidates, err := m.searchCandidates(ctx, typ, work)
	if err != nil {
		m.log.Warn("authority search failed", "title", work.Title, "type", typ, "error", err)
		return Decision{Outcome: OutcomeRejected, Reason: "provider_error"}
	}

	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, ScoredCandidate{
			Candidate: c,
			Score:     ScoreCandidate(work.Title, work.Year, c),
		})
	}

	decision := Decide(scored, m.cfg.AcceptScore, m.cfg.AcceptMargin)
	switch decision.Outcome {
	case OutcomeAccepted:
		ref := *decision.Ref
		work.AuthorityRef = &ref
		if err := m.applyDetails(ctx, work, ref); err != nil {
			// The adopted ref stands; only the detail fields stay stale.
			m.log.Warn("details fetch after accept failed", "title", work.Title, "error", err)
		}
	case OutcomeAmbiguous:
		m.log.Warn("ambiguous authority match",
			"title", work.Title,
			"type", typ,
			"score", decision.Score,
			"margin", decision.Margin,
		)
	default:
		m.log.Debug("authority match rejected",
			"title", work.Title,
			"type", typ,
			"reason", decision.Reason,
		)
	}
	return decision
}

// ScoredCandidate pairs a search candidate with its query score.
type ScoredCandidate struct {
	Candidate
	Score int
}

// Decide applies the accept/ambiguous/reject procedure to scored candidates.
// Pure function of its inputs:
//
//	top score >= acceptScore and lead over second best >= acceptMargin -> accept
//	top score >= acceptScore but lead too small                        -> ambiguous
//	no candidates or top score below acceptScore                      -> reject
func Decide(scored []ScoredCandidate, acceptScore, acceptMargin int) Decision {
	if len(scored) == 0 {
		return Decision{Outcome: OutcomeRejected, Reason: "no_candidates"}
	}

	sorted := make([]ScoredCandidate, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Ref.ID < sorted[j].Ref.ID
	})

	top := sorted[0]
	margin := top.Score
	if len(sorted) > 1 {
		margin = top.Score - sorted[1].Score
	}

	if top.Score < acceptScore {
		return Decision{Outcome: OutcomeRejected, Score: top.Score, Margin: margin, Reason: "score_below_threshold"}
	}
	if margin < acceptMargin {
		return Decision{Outcome: OutcomeAmbiguous, Score: top.Score, Margin: margin, Reason: "margin_below_threshold"}
	}

	ref := top.Ref
	return Decision{Outcome: OutcomeAccepted, Ref: &ref, Score: top.Score, Margin: margin, Reason: "confident_match"}
}

func (m *Matcher) searchCandidates(ctx context.Context, typ media.AuthorityRefType, work *media.Work) ([]Candidate, error) {
	key := searchKey{typ: typ, title: normalize.NormalizeTitle(work.Title), language: primaryLanguage(work)}
	if work.Year != nil {
		key.year = *work.Year
	}

	if cached, ok := m.searches.Get(key); ok {
		m.countCache("search", true)
		return cached, nil
	}
	m.countCache("search", false)

	if m.metrics != nil {
		m.metrics.AuthorityRequests.Inc()
	}
	candidates, err := m.provider.Search(ctx, typ, work.Title, work.Year)
	if err != nil {
		if m.metrics != nil {
			m.metrics.AuthorityErrors.Inc()
		}
		return nil, err
	}
	m.searches.Put(key, candidates)
	return candidates, nil
}

// applyDetails fetches the full authority record and applies year, title and
// artwork to the work. The work's ref is never overwritten here.
func (m *Matcher) applyDetails(ctx context.Context, work *media.Work, ref media.AuthorityRef) error {
	cache := m.movieDetails
	cacheName := "movie_details"
	if ref.Type == media.AuthorityTV {
		cache = m.tvDetails
		cacheName = "tv_details"
	}

	details, ok := cache.Get(ref.ID)
	if ok {
		m.countCache(cacheName, true)
	} else {
		m.countCache(cacheName, false)
		if m.metrics != nil {
			m.metrics.AuthorityRequests.Inc()
		}
		var err error
		details, err = m.provider.Details(ctx, ref)
		if err != nil {
			if m.metrics != nil {
				m.metrics.AuthorityErrors.Inc()
			}
			return err
		}
		cache.Put(ref.ID, details)
	}

	if details.Title != "" {
		work.Title = details.Title
	}
	if details.Year != nil {
		y := *details.Year
		work.Year = &y
	}
	if details.PosterPath != "" {
		work.PosterPath = details.PosterPath
	}
	if details.BackdropPath != "" {
		work.BackdropPath = details.BackdropPath
	}
	return nil
}

func (m *Matcher) countCache(name string, hit bool) {
	if m.metrics == nil {
		return
	}
	if hit {
		m.metrics.CacheHits.WithLabelValues(name).Inc()
	} else {
		m.metrics.CacheMisses.WithLabelValues(name).Inc()
	}
}

func primaryLanguage(work *media.Work) string {
	if len(work.Variants) == 0 {
		return ""
	}
	return work.Variants[0].Language
}
