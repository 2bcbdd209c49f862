package indexer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/codequarry/codequarry/internal/chunker"
	"github.com/codequarry/codequarry/internal/embedder"
	"github.com/codequarry/codequarry/internal/extractor"
	"github.com/codequarry/codequarry/internal/sourcehost"
	"github.com/codequarry/codequarry/internal/storage"
	"github.com/codequarry/codequarry/pkg/types"
)

// ErrSyncInProgress is returned when a repository sync is requested
// while another sync holds the lock.
var ErrSyncInProgress = errors.New("indexer: sync already in progress")

// maxFileSize skips bundles and other generated blobs.
const maxFileSize = 1 << 20 // 1 MiB

// Indexer coordinates the pipeline: fetch -> chunk -> extract ->
// embed -> store. One document is always replaced atomically.
type Indexer struct {
	chunker   *chunker.Chunker
	extractor *extractor.Extractor
	store     storage.Store
	embedder  embedder.Embedder
	host      sourcehost.Host
	logger    zerolog.Logger

	workers int
	lock    SyncLock
}

// Config tunes a repository sync.
type Config struct {
	Workers int // concurrent file workers (default: runtime.NumCPU())
}

// Statistics summarizes one sync run. SyncID correlates the run's
// log lines with the returned summary.
type Statistics struct {
	SyncID        string
	FilesIndexed  int
	FilesSkipped  int
	FilesFailed   int
	FilesRemoved  int
	ChunksCreated int
	Duration      time.Duration
}

// New creates an Indexer.
func New(store storage.Store, emb embedder.Embedder, host sourcehost.Host, logger zerolog.Logger) *Indexer {
	return &Indexer{
		chunker:   chunker.New(),
		extractor: extractor.New(),
		store:     store,
		embedder:  emb,
		host:      host,
		logger:    logger,
		workers:   runtime.NumCPU(),
	}
}

// SyncRepository indexes every eligible file of a repository at the
// given revision. Unchanged files (same content hash) are skipped;
// per-file failures are logged and skipped. Only one sync may run at
// a time per Indexer.
func (idx *Indexer) SyncRepository(ctx context.Context, repo, revision string, cfg *Config) (*Statistics, error) {
	if !idx.lock.TryAcquire() {
		return nil, ErrSyncInProgress
	}
	defer idx.lock.Release()

	workers := idx.workers
	if cfg != nil && cfg.Workers > 0 {
		workers = cfg.Workers
	}

	start := time.Now()
	syncID := uuid.NewString()
	logger := idx.logger.With().Str("sync_id", syncID).Logger()

	resolved, err := idx.host.ResolveRevision(ctx, repo, revision)
	if err != nil {
		return nil, fmt.Errorf("resolve revision: %w", err)
	}

	entries, err := idx.host.ListTree(ctx, repo, resolved)
	if err != nil {
		return nil, fmt.Errorf("list tree: %w", err)
	}

	var indexed, skipped, failed, chunks int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, entry := range entries {
		if !indexable(entry) {
			continue
		}
		g.Go(func() error {
			n, err := idx.syncFile(gctx, repo, resolved, entry.Path)
			switch {
			case errors.Is(err, errUnchanged):
				atomic.AddInt32(&skipped, 1)
			case err != nil:
				if gctx.Err() != nil {
					return gctx.Err()
				}
				atomic.AddInt32(&failed, 1)
				logger.Warn().
					Str("repo", repo).
					Str("path", entry.Path).
					Err(err).
					Msg("indexing file failed, skipping")
			default:
				atomic.AddInt32(&indexed, 1)
				atomic.AddInt32(&chunks, int32(n))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &Statistics{
		SyncID:        syncID,
		FilesIndexed:  int(indexed),
		FilesSkipped:  int(skipped),
		FilesFailed:   int(failed),
		ChunksCreated: int(chunks),
		Duration:      time.Since(start),
	}

	logger.Info().
		Str("repo", repo).
		Str("revision", resolved).
		Int("indexed", stats.FilesIndexed).
		Int("skipped", stats.FilesSkipped).
		Int("failed", stats.FilesFailed).
		Dur("duration", stats.Duration).
		Msg("repository sync complete")

	return stats, nil
}

// SyncDiff indexes only the files changed between two revisions.
// Hosts without diff support fall back to a full sync, which still
// skips unchanged content by hash.
func (idx *Indexer) SyncDiff(ctx context.Context, repo, base, head string) (*Statistics, error) {
	changed, err := idx.host.GetDiff(ctx, repo, base, head)
	if errors.Is(err, sourcehost.ErrDiffUnsupported) {
		return idx.SyncRepository(ctx, repo, head, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get diff: %w", err)
	}

	if !idx.lock.TryAcquire() {
		return nil, ErrSyncInProgress
	}
	defer idx.lock.Release()

	start := time.Now()
	stats := &Statistics{SyncID: uuid.NewString()}

	resolved, err := idx.host.ResolveRevision(ctx, repo, head)
	if err != nil {
		return nil, fmt.Errorf("resolve revision: %w", err)
	}

	for _, file := range changed {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if file.Status == "removed" {
			if err := idx.removeDocument(ctx, repo, file.Path); err != nil {
				idx.logger.Warn().Str("path", file.Path).Err(err).Msg("removing document failed")
				stats.FilesFailed++
				continue
			}
			stats.FilesRemoved++
			continue
		}

		n, err := idx.syncFile(ctx, repo, resolved, file.Path)
		switch {
		case errors.Is(err, errUnchanged):
			stats.FilesSkipped++
		case err != nil:
			stats.FilesFailed++
			idx.logger.Warn().Str("path", file.Path).Err(err).Msg("indexing file failed, skipping")
		default:
			stats.FilesIndexed++
			stats.ChunksCreated += n
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// errUnchanged signals a file whose content hash matches the index.
var errUnchanged = errors.New("content unchanged")

// syncFile fetches one file and indexes it, returning the chunk count.
func (idx *Indexer) syncFile(ctx context.Context, repo, revision, path string) (int, error) {
	content, err := idx.host.GetFileContent(ctx, repo, path, revision)
	if err != nil {
		return 0, fmt.Errorf("fetch content: %w", err)
	}

	hash := types.ComputeContentHash(content)
	if existing, err := idx.store.GetDocumentByPath(ctx, repo, path); err == nil {
		if existing.ContentHash == hash {
			return 0, errUnchanged
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return 0, err
	}

	return idx.IndexDocument(ctx, repo, revision, path, content)
}

// IndexDocument indexes a single file's content: upsert the document,
// chunk, extract facts, build factsheets, embed, and replace the
// stored state in one transaction. Returns the stored chunk count.
func (idx *Indexer) IndexDocument(ctx context.Context, repo, revision, path string, content []byte) (int, error) {
	language := chunker.DetectLanguage(path, "")

	doc := &types.Document{
		Repo:        repo,
		Revision:    revision,
		Path:        path,
		Language:    language,
		ContentHash: types.ComputeContentHash(content),
	}

	docChunks, err := idx.chunker.Chunk(content, path, language)
	if err != nil {
		return 0, fmt.Errorf("chunk: %w", err)
	}

	facts, err := idx.extractor.Extract(content, path, language)
	if err != nil {
		return 0, fmt.Errorf("extract: %w", err)
	}

	docChunks = append(docChunks, buildFactsheets(path, facts, len(docChunks))...)

	// One provider round per document, before any transaction is held.
	embeddings, err := idx.embedChunks(ctx, docChunks)
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}

	tx, err := idx.store.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.UpsertDocument(ctx, doc); err != nil {
		return 0, fmt.Errorf("upsert document: %w", err)
	}

	chunkPtrs := make([]*types.Chunk, len(docChunks))
	for i := range docChunks {
		chunkPtrs[i] = &docChunks[i]
	}
	if err := tx.ReplaceChunks(ctx, doc.ID, chunkPtrs); err != nil {
		return 0, fmt.Errorf("replace chunks: %w", err)
	}

	if err := tx.ClearFacts(ctx, doc.ID); err != nil {
		return 0, fmt.Errorf("clear facts: %w", err)
	}
	if err := tx.InsertSymbols(ctx, doc.ID, facts.Symbols); err != nil {
		return 0, fmt.Errorf("insert symbols: %w", err)
	}
	if err := tx.InsertEndpoints(ctx, doc.ID, facts.Endpoints); err != nil {
		return 0, fmt.Errorf("insert endpoints: %w", err)
	}
	if err := tx.InsertEdges(ctx, doc.ID, facts.Edges); err != nil {
		return 0, fmt.Errorf("insert edges: %w", err)
	}

	for i, emb := range embeddings {
		if err := tx.UpsertEmbedding(ctx, &storage.Embedding{
			ChunkID:   chunkPtrs[i].ID,
			Vector:    storage.SerializeVector(emb.Vector),
			Dimension: emb.Dimension,
			Provider:  emb.Provider,
			Model:     emb.Model,
		}); err != nil {
			return 0, fmt.Errorf("upsert embedding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	idx.logger.Debug().
		Str("repo", repo).
		Str("path", path).
		Int("chunks", len(docChunks)).
		Int("symbols", len(facts.Symbols)).
		Int("endpoints", len(facts.Endpoints)).
		Int("edges", len(facts.Edges)).
		Msg("document indexed")

	return len(docChunks), nil
}

// embedChunks embeds all chunk texts, batching to the provider limit.
func (idx *Indexer) embedChunks(ctx context.Context, chunks []types.Chunk) ([]*embedder.Embedding, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings := make([]*embedder.Embedding, 0, len(texts))
	for start := 0; start < len(texts); start += embedder.MaxBatchSize {
		end := start + embedder.MaxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := idx.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, batch...)
	}
	return embeddings, nil
}

// removeDocument drops a document and, by cascade, its chunks,
// embeddings, and facts.
func (idx *Indexer) removeDocument(ctx context.Context, repo, path string) error {
	doc, err := idx.store.GetDocumentByPath(ctx, repo, path)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return idx.store.DeleteDocument(ctx, doc.ID)
}

// indexable filters tree entries down to files worth chunking.
func indexable(entry sourcehost.FileEntry) bool {
	if entry.Size > maxFileSize {
		return false
	}
	return chunker.DetectCategory(entry.Path, "") != chunker.CategoryUnknown
}
