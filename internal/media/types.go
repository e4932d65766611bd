package media

// Kind classifies what a raw item claims to be.
type Kind string

const (
	KindMovie   Kind = "movie"
	KindSeries  Kind = "series"
	KindEpisode Kind = "episode"
	KindLive    Kind = "live"
	KindUnknown Kind = "unknown"
)

// Pipeline identifies the acquisition pipeline that produced a raw item.
type Pipeline string

const (
	PipelineChat Pipeline = "chat"
	PipelineIPTV Pipeline = "iptv"
)

// AuthorityRefType is the catalog namespace of an external authority id.
type AuthorityRefType string

const (
	AuthorityMovie AuthorityRefType = "movie"
	AuthorityTV    AuthorityRefType = "tv"
)

// AuthorityRef is a typed id in the external reference catalog.
type AuthorityRef struct {
	Type AuthorityRefType `json:"type"`
	ID   int              `json:"id"`
}

// RawItem is one loosely-structured media description as delivered by an
// acquisition pipeline. (Pipeline, SourceItemID) is globally unique and
// immutable once assigned; everything else is best-effort pipeline output.
type RawItem struct {
	OriginalTitle string
	Year          *int
	Season        *int
	Episode       *int
	DurationMs    int64
	Kind          Kind

	// ExplicitIdentity is an opaque pre-linked identity supplied by the
	// producer (see normalize.GlobalIdentity). Trusted verbatim when set.
	ExplicitIdentity string

	Pipeline     Pipeline
	SourceItemID string
	SourceLabel  string

	AuthorityRef *AuthorityRef

	// Attrs carries pipeline-specific playback attributes (stream URL,
	// chat/message ids). Only the originating pipeline's adapter
	// interprets them.
	Attrs map[string]string
}

// QualityTag is the coarse quality classification of a variant.
type QualityTag string

const (
	QualityCAM    QualityTag = "cam"
	QualitySD     QualityTag = "sd"
	QualityHD     QualityTag = "hd"
	QualityFHD    QualityTag = "fhd"
	QualityUHD    QualityTag = "uhd"
	QualityWEB    QualityTag = "web"
	QualityBLURAY QualityTag = "bluray"
)

// QualityTags lists every valid tag, used for preference validation.
var QualityTags = []QualityTag{
	QualityCAM, QualitySD, QualityHD, QualityFHD, QualityUHD, QualityWEB, QualityBLURAY,
}

// Variant is one playable rendition of a work, tied to a single pipeline
// item. Variants are re-derived from scratch on every normalization pass and
// never mutated in place.
type Variant struct {
	Key              string            `json:"key"`
	Quality          QualityTag        `json:"quality"`
	ResolutionHeight int               `json:"resolution_height,omitempty"` // 0 = unknown
	Language         string            `json:"language,omitempty"`          // ISO-639-1, "" = unknown
	OriginalWithSubs bool              `json:"original_with_subs"`
	PlayableHints    map[string]string `json:"playable_hints,omitempty"`
	Pipeline         Pipeline          `json:"pipeline"`
	SourceItemID     string            `json:"source_item_id"`
	SourceLabel      string            `json:"source_label"`
}

// VariantKey derives the stable rendition key for a pipeline item.
func VariantKey(p Pipeline, sourceItemID string) string {
	return string(p) + ":" + sourceItemID
}

// Work is one deduplicated underlying work with its ranked renditions.
// CanonicalID is empty only for unlinkable singleton items. Variants is
// non-empty and ordered best first.
type Work struct {
	CanonicalID       string        `json:"canonical_id,omitempty"`
	Title             string        `json:"title"`
	Year              *int          `json:"year,omitempty"`
	Kind              Kind          `json:"kind"`
	Variants          []Variant     `json:"variants"`
	PrimaryVariantKey string        `json:"primary_variant_key"`
	AuthorityRef      *AuthorityRef `json:"authority_ref,omitempty"`
	PosterPath        string        `json:"poster_path,omitempty"`
	BackdropPath      string        `json:"backdrop_path,omitempty"`
}
