package types

import "errors"

// Domain errors shared across packages.
var (
	ErrEmptyQuery     = errors.New("query cannot be empty")
	ErrEmptyContent   = errors.New("content cannot be empty")
	ErrInvalidTopK    = errors.New("topK must be positive")
	ErrNoSources      = errors.New("no sources selected")
	ErrSchemaMismatch = errors.New("response does not match answer schema")
)
