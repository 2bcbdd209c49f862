// Package storage provides SQLite-based persistence for indexed
// repository data.
//
// The storage layer manages:
//   - Documents (one row per repo+path, with revision and content hash)
//   - Code chunks with stable ordinals
//   - Vector embeddings
//   - Extracted facts: symbols, endpoints, edges, findings
//   - Full-text search indexes
//
// # Database Schema
//
// Tables:
//   - documents: repo, revision, path, language, SHA-256 content hash
//   - chunks: chunked document text with kind, title, symbol, line span
//   - chunks_fts: FTS5 trigram full-text index over chunk text
//   - embeddings: vector embeddings keyed by chunk
//   - symbols, endpoints, edges, findings: extracted facts per document
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStore("~/.codequarry/index.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	doc := &types.Document{
//	    Repo:        "acme/payments",
//	    Revision:    "3f2a91c",
//	    Path:        "src/users/users.controller.ts",
//	    Language:    "typescript",
//	    ContentHash: types.ComputeContentHash(content),
//	}
//	err = db.UpsertDocument(ctx, doc)
//
// # Transactions
//
// Chunk and fact replacement must be atomic, so re-indexing a document
// runs inside one transaction:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	_ = tx.ReplaceChunks(ctx, doc.ID, chunks)
//	_ = tx.ClearFacts(ctx, doc.ID)
//	_ = tx.InsertSymbols(ctx, doc.ID, facts.Symbols)
//	_ = tx.InsertEndpoints(ctx, doc.ID, facts.Endpoints)
//	_ = tx.InsertEdges(ctx, doc.ID, facts.Edges)
//
//	if err := tx.Commit(); err != nil {
//	    return err
//	}
//
// # Search
//
// Three signal families run over the same candidate space:
//
//	vecResults, _ := db.SearchVector(ctx, queryVector, 24, filter)
//	txtResults, _ := db.SearchText(ctx, "refund webhook", 24, filter)
//	pins, _ := db.SearchEndpointPins(ctx, tokens, 24, filter)
//
// Vector search uses cosine similarity via the sqlite-vec extension
// (CGO build) or a pure Go scan (purego build). Text search uses FTS5
// with a trigram tokenizer and normalized BM25 scores. Pin searches
// match query tokens against structured facts by substring.
//
// # Build Tags
//
// The storage package supports two build configurations:
//
// CGO Build (sqlite_vec tag):
//
//   - Uses github.com/mattn/go-sqlite3 driver
//
//   - Includes sqlite-vec extension for fast vector operations
//
//   - Requires C compiler
//
//     CGO_ENABLED=1 go build -tags "sqlite_vec"
//
// Pure Go Build (purego tag):
//
//   - Uses modernc.org/sqlite driver
//
//   - Pure Go vector operations (slower)
//
//   - No C compiler needed
//
//     CGO_ENABLED=0 go build -tags "purego"
package storage
