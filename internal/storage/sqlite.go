package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/codequarry/codequarry/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStore) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, store: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx    *sql.Tx
	store *SQLiteStore
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStore) querier() querier {
	return s.db
}

// Document operations

// upsertDocumentWithQuerier is the internal implementation that uses a querier.
// The document key is (repo, path): re-indexing the same path moves the
// revision and hash forward instead of creating a second row.
func (s *SQLiteStore) upsertDocumentWithQuerier(ctx context.Context, q querier, doc *types.Document) error {
	query := `
		INSERT INTO documents (repo, revision, path, language, content_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repo, path) DO UPDATE SET
			revision = excluded.revision,
			language = excluded.language,
			content_hash = excluded.content_hash,
			updated_at = excluded.updated_at
		RETURNING id, created_at
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		doc.Repo, doc.Revision, doc.Path, doc.Language,
		doc.ContentHash[:], now, now).Scan(&doc.ID, &doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	doc.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) UpsertDocument(ctx context.Context, doc *types.Document) error {
	return s.upsertDocumentWithQuerier(ctx, s.querier(), doc)
}

const documentColumns = `id, repo, revision, path, language, content_hash, created_at, updated_at`

func scanDocument(row interface{ Scan(...interface{}) error }) (*types.Document, error) {
	var doc types.Document
	var hash []byte
	err := row.Scan(
		&doc.ID, &doc.Repo, &doc.Revision, &doc.Path, &doc.Language,
		&hash, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	copy(doc.ContentHash[:], hash)
	return &doc, nil
}

// getDocumentWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) getDocumentWithQuerier(ctx context.Context, q querier, documentID int64) (*types.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = ?`
	return scanDocument(q.QueryRowContext(ctx, query, documentID))
}

func (s *SQLiteStore) GetDocument(ctx context.Context, documentID int64) (*types.Document, error) {
	return s.getDocumentWithQuerier(ctx, s.querier(), documentID)
}

// getDocumentByPathWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) getDocumentByPathWithQuerier(ctx context.Context, q querier, repo, path string) (*types.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE repo = ? AND path = ?`
	return scanDocument(q.QueryRowContext(ctx, query, repo, path))
}

func (s *SQLiteStore) GetDocumentByPath(ctx context.Context, repo, path string) (*types.Document, error) {
	return s.getDocumentByPathWithQuerier(ctx, s.querier(), repo, path)
}

// listDocumentsWithQuerier is the internal implementation that uses a querier.
// An empty repo lists every document.
func (s *SQLiteStore) listDocumentsWithQuerier(ctx context.Context, q querier, repo string) ([]*types.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	args := []interface{}{}
	if repo != "" {
		query += ` WHERE repo = ?`
		args = append(args, repo)
	}
	query += ` ORDER BY repo, path`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	docs := make([]*types.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteStore) ListDocuments(ctx context.Context, repo string) ([]*types.Document, error) {
	return s.listDocumentsWithQuerier(ctx, s.querier(), repo)
}

// deleteDocumentWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) deleteDocumentWithQuerier(ctx context.Context, q querier, documentID int64) error {
	query := `DELETE FROM documents WHERE id = ?`
	_, err := q.ExecContext(ctx, query, documentID)
	return err
}

func (s *SQLiteStore) DeleteDocument(ctx context.Context, documentID int64) error {
	return s.deleteDocumentWithQuerier(ctx, s.querier(), documentID)
}

// Chunk operations

// replaceChunksWithQuerier removes every prior chunk for the document
// and inserts the new set. Callers that need atomicity across a
// failure mid-write must invoke this through a transaction; embeddings
// for the removed chunks go with them via cascade.
func (s *SQLiteStore) replaceChunksWithQuerier(ctx context.Context, q querier, documentID int64, chunks []*types.Chunk) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("failed to delete prior chunks: %w", err)
	}

	query := `
		INSERT INTO chunks (
			document_id, ordinal, kind, title, symbol, text, content_hash,
			token_count, start_line, end_line, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	now := time.Now()
	for _, chunk := range chunks {
		chunk.DocumentID = documentID
		err := q.QueryRowContext(ctx, query,
			documentID, chunk.Ordinal, string(chunk.Kind), chunk.Title, chunk.Symbol,
			chunk.Text, chunk.ContentHash[:], chunk.EstimateTokenCount(),
			chunk.StartLine, chunk.EndLine, now,
		).Scan(&chunk.ID)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", chunk.Ordinal, err)
		}
	}
	return nil
}

func (s *SQLiteStore) ReplaceChunks(ctx context.Context, documentID int64, chunks []*types.Chunk) error {
	return s.replaceChunksWithQuerier(ctx, s.querier(), documentID, chunks)
}

const chunkColumns = `id, document_id, ordinal, kind, title, symbol, text, content_hash, start_line, end_line`

func scanChunk(row interface{ Scan(...interface{}) error }) (*types.Chunk, error) {
	var chunk types.Chunk
	var hash []byte
	var kind string
	err := row.Scan(
		&chunk.ID, &chunk.DocumentID, &chunk.Ordinal, &kind, &chunk.Title,
		&chunk.Symbol, &chunk.Text, &hash, &chunk.StartLine, &chunk.EndLine,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	chunk.Kind = types.ChunkKind(kind)
	copy(chunk.ContentHash[:], hash)
	return &chunk, nil
}

// getChunkWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) getChunkWithQuerier(ctx context.Context, q querier, chunkID int64) (*types.Chunk, error) {
	query := `SELECT ` + chunkColumns + ` FROM chunks WHERE id = ?`
	return scanChunk(q.QueryRowContext(ctx, query, chunkID))
}

func (s *SQLiteStore) GetChunk(ctx context.Context, chunkID int64) (*types.Chunk, error) {
	return s.getChunkWithQuerier(ctx, s.querier(), chunkID)
}

// listChunksByDocumentWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) listChunksByDocumentWithQuerier(ctx context.Context, q querier, documentID int64) ([]*types.Chunk, error) {
	query := `SELECT ` + chunkColumns + ` FROM chunks WHERE document_id = ? ORDER BY ordinal`
	rows, err := q.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	chunks := make([]*types.Chunk, 0)
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func (s *SQLiteStore) ListChunksByDocument(ctx context.Context, documentID int64) ([]*types.Chunk, error) {
	return s.listChunksByDocumentWithQuerier(ctx, s.querier(), documentID)
}

// Embedding operations

// upsertEmbeddingWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) upsertEmbeddingWithQuerier(ctx context.Context, q querier, embedding *Embedding) error {
	query := `
		INSERT INTO embeddings (chunk_id, vector, dimension, provider, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			vector = excluded.vector,
			dimension = excluded.dimension,
			provider = excluded.provider,
			model = excluded.model
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		embedding.ChunkID, embedding.Vector, embedding.Dimension,
		embedding.Provider, embedding.Model, now)
	if err != nil {
		return fmt.Errorf("failed to upsert embedding: %w", err)
	}

	if embedding.ID == 0 {
		id, err := result.LastInsertId()
		if err == nil {
			embedding.ID = id
		}
	}

	embedding.CreatedAt = now
	return nil
}

func (s *SQLiteStore) UpsertEmbedding(ctx context.Context, embedding *Embedding) error {
	return s.upsertEmbeddingWithQuerier(ctx, s.querier(), embedding)
}

// getEmbeddingWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) getEmbeddingWithQuerier(ctx context.Context, q querier, chunkID int64) (*Embedding, error) {
	query := `
		SELECT id, chunk_id, vector, dimension, provider, model, created_at
		FROM embeddings
		WHERE chunk_id = ?
	`
	var embedding Embedding
	err := q.QueryRowContext(ctx, query, chunkID).Scan(
		&embedding.ID, &embedding.ChunkID, &embedding.Vector,
		&embedding.Dimension, &embedding.Provider, &embedding.Model,
		&embedding.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &embedding, nil
}

func (s *SQLiteStore) GetEmbedding(ctx context.Context, chunkID int64) (*Embedding, error) {
	return s.getEmbeddingWithQuerier(ctx, s.querier(), chunkID)
}

// Fact operations

// clearFactsWithQuerier removes all extracted facts for a document.
// Facts are replaced wholesale on re-index, never merged.
func (s *SQLiteStore) clearFactsWithQuerier(ctx context.Context, q querier, documentID int64) error {
	for _, table := range []string{"symbols", "endpoints", "edges"} {
		if _, err := q.ExecContext(ctx, `DELETE FROM `+table+` WHERE document_id = ?`, documentID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func (s *SQLiteStore) ClearFacts(ctx context.Context, documentID int64) error {
	return s.clearFactsWithQuerier(ctx, s.querier(), documentID)
}

// insertSymbolsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) insertSymbolsWithQuerier(ctx context.Context, q querier, documentID int64, symbols []types.Symbol) error {
	query := `
		INSERT INTO symbols (document_id, kind, name, signature, exported, async, start_line, end_line)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, sym := range symbols {
		_, err := q.ExecContext(ctx, query,
			documentID, string(sym.Kind), sym.Name, sym.Signature,
			sym.Exported, sym.Async, sym.StartLine, sym.EndLine)
		if err != nil {
			return fmt.Errorf("failed to insert symbol %s: %w", sym.Name, err)
		}
	}
	return nil
}

func (s *SQLiteStore) InsertSymbols(ctx context.Context, documentID int64, symbols []types.Symbol) error {
	return s.insertSymbolsWithQuerier(ctx, s.querier(), documentID, symbols)
}

// insertEndpointsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) insertEndpointsWithQuerier(ctx context.Context, q querier, documentID int64, endpoints []types.Endpoint) error {
	query := `
		INSERT INTO endpoints (document_id, protocol, method, path, handler, request_type, response_type, start_line, end_line)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, ep := range endpoints {
		_, err := q.ExecContext(ctx, query,
			documentID, ep.Protocol, ep.Method, ep.Path, ep.Handler,
			ep.Request, ep.Response, ep.StartLine, ep.EndLine)
		if err != nil {
			return fmt.Errorf("failed to insert endpoint %s %s: %w", ep.Method, ep.Path, err)
		}
	}
	return nil
}

func (s *SQLiteStore) InsertEndpoints(ctx context.Context, documentID int64, endpoints []types.Endpoint) error {
	return s.insertEndpointsWithQuerier(ctx, s.querier(), documentID, endpoints)
}

// insertEdgesWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) insertEdgesWithQuerier(ctx context.Context, q querier, documentID int64, edges []types.Edge) error {
	query := `
		INSERT INTO edges (document_id, type, target_kind, target_value, line, method, confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for _, edge := range edges {
		_, err := q.ExecContext(ctx, query,
			documentID, string(edge.Type), edge.TargetKind, edge.TargetValue,
			edge.Line, edge.Method, edge.Confidence)
		if err != nil {
			return fmt.Errorf("failed to insert edge %s: %w", edge.TargetValue, err)
		}
	}
	return nil
}

func (s *SQLiteStore) InsertEdges(ctx context.Context, documentID int64, edges []types.Edge) error {
	return s.insertEdgesWithQuerier(ctx, s.querier(), documentID, edges)
}

// insertFindingsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) insertFindingsWithQuerier(ctx context.Context, q querier, documentID int64, findings []types.Finding) error {
	query := `
		INSERT INTO findings (document_id, tool, rule_id, severity, message, start_line, end_line)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for _, f := range findings {
		_, err := q.ExecContext(ctx, query,
			documentID, f.Tool, f.RuleID, f.Severity, f.Message, f.StartLine, f.EndLine)
		if err != nil {
			return fmt.Errorf("failed to insert finding %s/%s: %w", f.Tool, f.RuleID, err)
		}
	}
	return nil
}

func (s *SQLiteStore) InsertFindings(ctx context.Context, documentID int64, findings []types.Finding) error {
	return s.insertFindingsWithQuerier(ctx, s.querier(), documentID, findings)
}

// listEndpointsByDocumentWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) listEndpointsByDocumentWithQuerier(ctx context.Context, q querier, documentID int64) ([]types.Endpoint, error) {
	query := `
		SELECT id, document_id, protocol, method, path, handler, request_type, response_type, start_line, end_line
		FROM endpoints
		WHERE document_id = ?
		ORDER BY start_line
	`
	rows, err := q.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	endpoints := make([]types.Endpoint, 0)
	for rows.Next() {
		var ep types.Endpoint
		err := rows.Scan(
			&ep.ID, &ep.DocumentID, &ep.Protocol, &ep.Method, &ep.Path,
			&ep.Handler, &ep.Request, &ep.Response, &ep.StartLine, &ep.EndLine)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, ep)
	}
	return endpoints, rows.Err()
}

func (s *SQLiteStore) ListEndpointsByDocument(ctx context.Context, documentID int64) ([]types.Endpoint, error) {
	return s.listEndpointsByDocumentWithQuerier(ctx, s.querier(), documentID)
}

// listSymbolsByDocumentWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) listSymbolsByDocumentWithQuerier(ctx context.Context, q querier, documentID int64) ([]types.Symbol, error) {
	query := `
		SELECT id, document_id, kind, name, signature, exported, async, start_line, end_line
		FROM symbols
		WHERE document_id = ?
		ORDER BY start_line
	`
	rows, err := q.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	symbols := make([]types.Symbol, 0)
	for rows.Next() {
		var sym types.Symbol
		var kind string
		err := rows.Scan(
			&sym.ID, &sym.DocumentID, &kind, &sym.Name, &sym.Signature,
			&sym.Exported, &sym.Async, &sym.StartLine, &sym.EndLine)
		if err != nil {
			return nil, err
		}
		sym.Kind = types.SymbolKind(kind)
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

func (s *SQLiteStore) ListSymbolsByDocument(ctx context.Context, documentID int64) ([]types.Symbol, error) {
	return s.listSymbolsByDocumentWithQuerier(ctx, s.querier(), documentID)
}

// Search operations

func (s *SQLiteStore) SearchVector(ctx context.Context, queryVector []float32, limit int, filter *types.RepoFilter) ([]VectorResult, error) {
	// Implementation moved to separate file for clarity
	return searchVector(ctx, s.db, queryVector, limit, filter)
}

func (s *SQLiteStore) SearchText(ctx context.Context, query string, limit int, filter *types.RepoFilter) ([]TextResult, error) {
	// Implementation moved to separate file for clarity
	return searchText(ctx, s.db, query, limit, filter)
}

func (s *SQLiteStore) SearchEndpointPins(ctx context.Context, tokens []string, limit int, filter *types.RepoFilter) ([]PinResult, error) {
	return searchEndpointPins(ctx, s.db, tokens, limit, filter)
}

func (s *SQLiteStore) SearchSymbolPins(ctx context.Context, tokens []string, limit int, filter *types.RepoFilter) ([]PinResult, error) {
	return searchSymbolPins(ctx, s.db, tokens, limit, filter)
}

func (s *SQLiteStore) SearchEdgePins(ctx context.Context, tokens []string, limit int, filter *types.RepoFilter) ([]PinResult, error) {
	return searchEdgePins(ctx, s.db, tokens, limit, filter)
}

// Status operations

func (s *SQLiteStore) GetStatus(ctx context.Context) (*IndexStatus, error) {
	status := &IndexStatus{}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM documents", &status.DocumentsCount},
		{"SELECT COUNT(*) FROM chunks", &status.ChunksCount},
		{"SELECT COUNT(*) FROM embeddings", &status.EmbeddingsCount},
		{"SELECT COUNT(*) FROM symbols", &status.SymbolsCount},
		{"SELECT COUNT(*) FROM endpoints", &status.EndpointsCount},
		{"SELECT COUNT(*) FROM edges", &status.EdgesCount},
		{"SELECT COUNT(*) FROM findings", &status.FindingsCount},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}

	// Calculate database size
	var pageCount, pageSize int
	err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	if err == nil {
		_ = s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.IndexSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	status.Health = HealthStatus{
		DatabaseAccessible:  true,
		EmbeddingsAvailable: status.EmbeddingsCount > 0,
		FTSIndexesBuilt:     true, // FTS indexes are created with migrations
	}

	return status, nil
}

// Transaction implementations

// Write operations use the internal helper that takes a querier so
// they run inside the transaction; searches read committed state.

func (t *sqliteTx) UpsertDocument(ctx context.Context, doc *types.Document) error {
	return t.store.upsertDocumentWithQuerier(ctx, t.querier(), doc)
}

func (t *sqliteTx) GetDocument(ctx context.Context, documentID int64) (*types.Document, error) {
	return t.store.getDocumentWithQuerier(ctx, t.querier(), documentID)
}

func (t *sqliteTx) GetDocumentByPath(ctx context.Context, repo, path string) (*types.Document, error) {
	return t.store.getDocumentByPathWithQuerier(ctx, t.querier(), repo, path)
}

func (t *sqliteTx) ListDocuments(ctx context.Context, repo string) ([]*types.Document, error) {
	return t.store.listDocumentsWithQuerier(ctx, t.querier(), repo)
}

func (t *sqliteTx) DeleteDocument(ctx context.Context, documentID int64) error {
	return t.store.deleteDocumentWithQuerier(ctx, t.querier(), documentID)
}

func (t *sqliteTx) ReplaceChunks(ctx context.Context, documentID int64, chunks []*types.Chunk) error {
	return t.store.replaceChunksWithQuerier(ctx, t.querier(), documentID, chunks)
}

func (t *sqliteTx) GetChunk(ctx context.Context, chunkID int64) (*types.Chunk, error) {
	return t.store.getChunkWithQuerier(ctx, t.querier(), chunkID)
}

func (t *sqliteTx) ListChunksByDocument(ctx context.Context, documentID int64) ([]*types.Chunk, error) {
	return t.store.listChunksByDocumentWithQuerier(ctx, t.querier(), documentID)
}

func (t *sqliteTx) UpsertEmbedding(ctx context.Context, embedding *Embedding) error {
	return t.store.upsertEmbeddingWithQuerier(ctx, t.querier(), embedding)
}

func (t *sqliteTx) GetEmbedding(ctx context.Context, chunkID int64) (*Embedding, error) {
	return t.store.getEmbeddingWithQuerier(ctx, t.querier(), chunkID)
}

func (t *sqliteTx) ClearFacts(ctx context.Context, documentID int64) error {
	return t.store.clearFactsWithQuerier(ctx, t.querier(), documentID)
}

func (t *sqliteTx) InsertSymbols(ctx context.Context, documentID int64, symbols []types.Symbol) error {
	return t.store.insertSymbolsWithQuerier(ctx, t.querier(), documentID, symbols)
}

func (t *sqliteTx) InsertEndpoints(ctx context.Context, documentID int64, endpoints []types.Endpoint) error {
	return t.store.insertEndpointsWithQuerier(ctx, t.querier(), documentID, endpoints)
}

func (t *sqliteTx) InsertEdges(ctx context.Context, documentID int64, edges []types.Edge) error {
	return t.store.insertEdgesWithQuerier(ctx, t.querier(), documentID, edges)
}

func (t *sqliteTx) InsertFindings(ctx context.Context, documentID int64, findings []types.Finding) error {
	return t.store.insertFindingsWithQuerier(ctx, t.querier(), documentID, findings)
}

func (t *sqliteTx) ListEndpointsByDocument(ctx context.Context, documentID int64) ([]types.Endpoint, error) {
	return t.store.listEndpointsByDocumentWithQuerier(ctx, t.querier(), documentID)
}

func (t *sqliteTx) ListSymbolsByDocument(ctx context.Context, documentID int64) ([]types.Symbol, error) {
	return t.store.listSymbolsByDocumentWithQuerier(ctx, t.querier(), documentID)
}

func (t *sqliteTx) SearchVector(ctx context.Context, vector []float32, limit int, filter *types.RepoFilter) ([]VectorResult, error) {
	return t.store.SearchVector(ctx, vector, limit, filter)
}

func (t *sqliteTx) SearchText(ctx context.Context, query string, limit int, filter *types.RepoFilter) ([]TextResult, error) {
	return t.store.SearchText(ctx, query, limit, filter)
}

func (t *sqliteTx) SearchEndpointPins(ctx context.Context, tokens []string, limit int, filter *types.RepoFilter) ([]PinResult, error) {
	return t.store.SearchEndpointPins(ctx, tokens, limit, filter)
}

func (t *sqliteTx) SearchSymbolPins(ctx context.Context, tokens []string, limit int, filter *types.RepoFilter) ([]PinResult, error) {
	return t.store.SearchSymbolPins(ctx, tokens, limit, filter)
}

func (t *sqliteTx) SearchEdgePins(ctx context.Context, tokens []string, limit int, filter *types.RepoFilter) ([]PinResult, error) {
	return t.store.SearchEdgePins(ctx, tokens, limit, filter)
}

func (t *sqliteTx) GetStatus(ctx context.Context) (*IndexStatus, error) {
	return t.store.GetStatus(ctx)
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
