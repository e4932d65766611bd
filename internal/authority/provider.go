package authority

import (
	"context"

	"github.com/mediafold/mediafold/internal/media"
)

// Provider is the external reference catalog boundary. Any authority that
// can look up details by typed id and search by title/year is pluggable.
type Provider interface {
	Details(ctx context.Context, ref media.AuthorityRef) (*Details, error)
	Search(ctx context.Context, typ media.AuthorityRefType, title string, year *int) ([]Candidate, error)
}

// Details is the full record the authority holds for a typed id.
type Details struct {
	Ref          media.AuthorityRef
	Title        string
	Year         *int
	PosterPath   string
	BackdropPath string
}

// Candidate is one search result, scored later against the query.
type Candidate struct {
	Ref          media.AuthorityRef
	Title        string
	Year         *int
	PosterPath   string
	BackdropPath string
}
