package types

import (
	"crypto/sha256"
	"errors"
)

// ChunkKind classifies how a chunk was produced.
type ChunkKind string

const (
	ChunkSection     ChunkKind = "section"     // markup heading section
	ChunkRoute       ChunkKind = "route"       // controller route handler
	ChunkDeclaration ChunkKind = "declaration" // top-level source declaration
	ChunkFile        ChunkKind = "file"        // whole-file fallback
	ChunkFactsheet   ChunkKind = "factsheet"   // synthetic fact summary
)

// Chunk is one ordered, addressable unit of a document's text.
// Chunks are fully replaced whenever their owning document is
// re-indexed; ordinals are assigned by discovery order and are stable
// for unchanged content.
type Chunk struct {
	// Identification
	ID         int64
	DocumentID int64
	Ordinal    int

	// Content
	Text        string
	ContentHash [32]byte

	// Metadata
	Kind      ChunkKind
	Title     string // heading title, route "METHOD /path", or symbol name
	Symbol    string // declared name where one exists
	StartLine int    // 1-based, file-relative
	EndLine   int
}

// ComputeContentHash computes and stores the SHA-256 hash of the text.
func (c *Chunk) ComputeContentHash() {
	c.ContentHash = sha256.Sum256([]byte(c.Text))
}

// ValidateKind checks the chunk kind against the known set.
func (c *Chunk) ValidateKind() error {
	switch c.Kind {
	case ChunkSection, ChunkRoute, ChunkDeclaration, ChunkFile, ChunkFactsheet:
		return nil
	default:
		return errors.New("invalid chunk kind")
	}
}

// Validate performs comprehensive validation of the chunk.
func (c *Chunk) Validate() error {
	if c.Text == "" {
		return errors.New("chunk text cannot be empty")
	}
	if err := c.ValidateKind(); err != nil {
		return err
	}
	if c.Ordinal < 0 {
		return errors.New("chunk ordinal must be non-negative")
	}
	if c.StartLine <= 0 || c.EndLine <= 0 {
		return errors.New("line numbers must be positive")
	}
	if c.StartLine > c.EndLine {
		return errors.New("start line must be before or equal to end line")
	}
	var zero [32]byte
	if c.ContentHash == zero {
		return errors.New("content hash must be computed")
	}
	return nil
}

// EstimateTokenCount estimates tokens using the chars/4 heuristic.
func (c *Chunk) EstimateTokenCount() int {
	return len(c.Text) / 4
}
