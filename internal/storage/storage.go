package storage

import (
	"context"
	"time"

	"github.com/codequarry/codequarry/pkg/types"
)

// Store defines the interface for persisting and querying indexed
// documents, chunks, embeddings, and extracted facts.
type Store interface {
	// Document operations
	UpsertDocument(ctx context.Context, doc *types.Document) error
	GetDocument(ctx context.Context, documentID int64) (*types.Document, error)
	GetDocumentByPath(ctx context.Context, repo, path string) (*types.Document, error)
	ListDocuments(ctx context.Context, repo string) ([]*types.Document, error)
	DeleteDocument(ctx context.Context, documentID int64) error

	// Chunk operations
	ReplaceChunks(ctx context.Context, documentID int64, chunks []*types.Chunk) error
	GetChunk(ctx context.Context, chunkID int64) (*types.Chunk, error)
	ListChunksByDocument(ctx context.Context, documentID int64) ([]*types.Chunk, error)

	// Embedding operations
	UpsertEmbedding(ctx context.Context, embedding *Embedding) error
	GetEmbedding(ctx context.Context, chunkID int64) (*Embedding, error)

	// Fact operations
	ClearFacts(ctx context.Context, documentID int64) error
	InsertSymbols(ctx context.Context, documentID int64, symbols []types.Symbol) error
	InsertEndpoints(ctx context.Context, documentID int64, endpoints []types.Endpoint) error
	InsertEdges(ctx context.Context, documentID int64, edges []types.Edge) error
	InsertFindings(ctx context.Context, documentID int64, findings []types.Finding) error
	ListEndpointsByDocument(ctx context.Context, documentID int64) ([]types.Endpoint, error)
	ListSymbolsByDocument(ctx context.Context, documentID int64) ([]types.Symbol, error)

	// Search operations
	SearchVector(ctx context.Context, vector []float32, limit int, filter *types.RepoFilter) ([]VectorResult, error)
	SearchText(ctx context.Context, query string, limit int, filter *types.RepoFilter) ([]TextResult, error)
	SearchEndpointPins(ctx context.Context, tokens []string, limit int, filter *types.RepoFilter) ([]PinResult, error)
	SearchSymbolPins(ctx context.Context, tokens []string, limit int, filter *types.RepoFilter) ([]PinResult, error)
	SearchEdgePins(ctx context.Context, tokens []string, limit int, filter *types.RepoFilter) ([]PinResult, error)

	// Status operations
	GetStatus(ctx context.Context) (*IndexStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Store // Embed Store interface for transaction operations
}

// Embedding represents a vector embedding for a chunk
type Embedding struct {
	ID        int64
	ChunkID   int64
	Vector    []byte // Serialized float32 array
	Dimension int
	Provider  string
	Model     string
	CreatedAt time.Time
}

// VectorResult represents a result from vector similarity search
type VectorResult struct {
	ChunkID         int64
	Kind            types.ChunkKind
	SimilarityScore float64
}

// TextResult represents a result from full-text search
type TextResult struct {
	ChunkID   int64
	BM25Score float64
}

// PinResult represents a structured-fact match joined back to its
// document so results can be cited without a second lookup.
type PinResult struct {
	DocumentID int64
	Repo       string
	Path       string
	Revision   string
	Label      string // endpoint "VERB /path", symbol name, or edge target
	Symbol     string // handler or symbol name when known
	StartLine  int
	EndLine    int
}

// IndexStatus contains statistics about the index
type IndexStatus struct {
	DocumentsCount  int
	ChunksCount     int
	EmbeddingsCount int
	SymbolsCount    int
	EndpointsCount  int
	EdgesCount      int
	FindingsCount   int
	IndexSizeMB     float64
	Health          HealthStatus
}

// HealthStatus represents the health of the index
type HealthStatus struct {
	DatabaseAccessible  bool
	EmbeddingsAvailable bool
	FTSIndexesBuilt     bool
}
