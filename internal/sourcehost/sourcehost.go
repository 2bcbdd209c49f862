// Package sourcehost abstracts access to repository trees and file
// contents so the indexer can ingest from GitHub or a local checkout
// through the same interface.
package sourcehost

import (
	"context"
	"errors"
)

// Errors returned by source hosts.
var (
	ErrInvalidRepo     = errors.New("sourcehost: invalid repository identifier")
	ErrFileNotFound    = errors.New("sourcehost: file not found")
	ErrDiffUnsupported = errors.New("sourcehost: diff not supported by this host")
)

// FileEntry describes one file in a repository tree.
type FileEntry struct {
	Path string
	Size int64
	SHA  string
}

// ChangedFile describes one file touched between two revisions.
type ChangedFile struct {
	Path   string
	Status string // added, modified, removed, renamed
}

// Host provides read access to a source repository. Implementations
// must be safe for concurrent use; the indexer fans file fetches out
// across workers.
type Host interface {
	// ListTree returns every file under the given revision. Revision
	// may be a branch, tag, or commit SHA; empty means the default
	// branch.
	ListTree(ctx context.Context, repo, revision string) ([]FileEntry, error)

	// GetFileContent returns the raw bytes of one file at a revision.
	GetFileContent(ctx context.Context, repo, path, revision string) ([]byte, error)

	// GetDiff returns the files changed between two revisions. Hosts
	// without revision history return ErrDiffUnsupported.
	GetDiff(ctx context.Context, repo, base, head string) ([]ChangedFile, error)

	// ResolveRevision resolves a ref to an immutable commit SHA so
	// permalinks stay stable after the ref moves.
	ResolveRevision(ctx context.Context, repo, revision string) (string, error)

	// BaseURL is the host prefix used for citation permalinks, for
	// example "https://github.com".
	BaseURL() string
}
