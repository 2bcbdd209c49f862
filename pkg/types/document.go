package types

import (
	"crypto/sha256"
	"errors"
	"time"
)

// Document identifies an indexed source file. One row exists per
// (repo, path); re-indexing at a new revision supersedes the previous
// row's revision and content hash rather than duplicating it.
type Document struct {
	ID          int64
	Repo        string // owner/name form, e.g. "acme/payments"
	Revision    string // commit SHA or ref the content was read at
	Path        string // repository-relative path
	Language    string // best-effort language tag, e.g. "typescript"
	ContentHash [32]byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ComputeContentHash computes the SHA-256 hash of the document content.
func ComputeContentHash(content []byte) [32]byte {
	return sha256.Sum256(content)
}

// Validate checks the document identity fields.
func (d *Document) Validate() error {
	if d.Repo == "" {
		return errors.New("document repo is required")
	}
	if d.Revision == "" {
		return errors.New("document revision is required")
	}
	if d.Path == "" {
		return errors.New("document path is required")
	}
	return nil
}
