package library

import (
	"time"

	"github.com/mediafold/mediafold/internal/media"
)

// StoredWork is a normalized work as persisted, with its database identity.
type StoredWork struct {
	ID        int64
	CreatedAt time.Time

	media.Work
}
