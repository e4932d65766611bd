package library

import "errors"

// Sentinel errors for library operations.
var (
	ErrNotFound = errors.New("work not found")
)
