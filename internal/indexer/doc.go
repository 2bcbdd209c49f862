// Package indexer coordinates the end-to-end indexing pipeline.
//
// The indexer orchestrates fetching, chunking, fact extraction,
// embedding, and storage, managing concurrency and per-file error
// handling for repository-scale ingestion.
//
// # Basic Usage
//
//	idx := indexer.New(store, emb, host, logger)
//
//	stats, err := idx.SyncRepository(ctx, "acme/payments", "main", nil)
//	fmt.Printf("Indexed %d files in %v\n", stats.FilesIndexed, stats.Duration)
//
// # Pipeline
//
// For each file the indexer executes:
//
//  1. Fetch content from the source host
//  2. Incremental decision: unchanged content hash ⇒ skip
//  3. Chunk by content category and extract facts
//  4. Build factsheet chunks from endpoints and exported symbols
//  5. Embed all chunk texts (batched, one provider round per document)
//  6. Replace the document's chunks and facts in one transaction
//
// Step 6 is atomic: a storage failure rolls back the whole document
// and the previous index state stays intact and queryable.
//
// # Incremental Indexing
//
// Re-syncing an unchanged repository is cheap. Content hashes gate
// re-indexing per file, and SyncDiff narrows the candidate set to the
// files a host reports changed between two revisions:
//
//	stats, err := idx.SyncDiff(ctx, "acme/payments", "v1.3.0", "v1.4.0")
//
// Hosts without revision history (local directories) fall back to a
// full hash-gated sync.
//
// # Concurrency
//
// Files are fetched and indexed by an errgroup worker pool, NumCPU
// workers by default. A per-file failure is logged at warn level and
// skipped; the sync carries on. Only storage-level failures abort the
// run. A non-blocking lock rejects a second concurrent sync with
// ErrSyncInProgress rather than queueing it.
//
// # Findings
//
// IngestFindings attaches an external static-analysis report to
// already-indexed documents, matching paths best-effort so reports
// rooted differently from the index still land.
package indexer
