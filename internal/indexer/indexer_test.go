package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codequarry/codequarry/internal/embedder"
	"github.com/codequarry/codequarry/internal/sourcehost"
	"github.com/codequarry/codequarry/internal/storage"
	"github.com/codequarry/codequarry/pkg/types"
)

const controllerContent = `import { Controller, Get, Post, Body, Param } from '@nestjs/common';

@Controller('users')
export class UsersController {
  constructor(private readonly usersService: UsersService) {}

  @Get(':id')
  findOne(@Param('id') id: string): Promise<User> {
    return this.usersService.findOne(id);
  }

  @Post()
  create(@Body() dto: CreateUserDto): Promise<User> {
    return this.usersService.create(dto);
  }
}
`

const serviceContent = `export class UsersService {
  async findOne(id: string): Promise<User> {
    return this.repo.findOne(id);
  }
}
`

func newTestIndexer(t *testing.T, files map[string]string) (*Indexer, storage.Store) {
	t.Helper()

	root := t.TempDir()
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	host, err := sourcehost.NewLocalHost(root)
	require.NoError(t, err)

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	emb, err := embedder.NewLocalProvider(embedder.NewCache(1000))
	require.NoError(t, err)

	return New(store, emb, host, zerolog.Nop()), store
}

func TestSyncRepository_IndexesEligibleFiles(t *testing.T) {
	idx, store := newTestIndexer(t, map[string]string{
		"src/users.controller.ts": controllerContent,
		"src/users.service.ts":    serviceContent,
		"assets/logo.png":         "\x89PNG not indexable",
	})

	stats, err := idx.SyncRepository(context.Background(), "", "", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesIndexed)
	assert.Equal(t, 0, stats.FilesFailed)
	assert.NotEmpty(t, stats.SyncID)

	status, err := store.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, status.DocumentsCount)
	assert.Positive(t, status.ChunksCount)
	assert.Equal(t, status.ChunksCount, status.EmbeddingsCount)
	assert.Positive(t, status.EndpointsCount)
	assert.Positive(t, status.SymbolsCount)
}

func TestSyncRepository_SkipsUnchangedContent(t *testing.T) {
	idx, _ := newTestIndexer(t, map[string]string{
		"src/users.service.ts": serviceContent,
	})

	first, err := idx.SyncRepository(context.Background(), "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, first.FilesIndexed)

	second, err := idx.SyncRepository(context.Background(), "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, second.FilesIndexed)
	assert.Equal(t, 1, second.FilesSkipped)
}

func TestIndexDocument_CreatesFactsheets(t *testing.T) {
	idx, store := newTestIndexer(t, nil)

	ctx := context.Background()
	_, err := idx.IndexDocument(ctx, "acme/payments", "abc1234", "src/users.controller.ts", []byte(controllerContent))
	require.NoError(t, err)

	doc, err := store.GetDocumentByPath(ctx, "acme/payments", "src/users.controller.ts")
	require.NoError(t, err)

	chunks, err := store.ListChunksByDocument(ctx, doc.ID)
	require.NoError(t, err)

	var factsheets []*types.Chunk
	for _, c := range chunks {
		if c.Kind == types.ChunkFactsheet {
			factsheets = append(factsheets, c)
		}
	}
	require.NotEmpty(t, factsheets)

	var titles []string
	for _, f := range factsheets {
		titles = append(titles, f.Title)
	}
	assert.Contains(t, titles, "GET /users/:id")
	assert.Contains(t, titles, "POST /users")
	assert.Contains(t, titles, "UsersController")

	// Every chunk, factsheets included, carries an embedding
	for _, c := range chunks {
		_, err := store.GetEmbedding(ctx, c.ID)
		require.NoError(t, err)
	}
}

func TestIndexDocument_ReindexReplacesState(t *testing.T) {
	idx, store := newTestIndexer(t, nil)
	ctx := context.Background()

	_, err := idx.IndexDocument(ctx, "acme/payments", "rev1", "src/users.controller.ts", []byte(controllerContent))
	require.NoError(t, err)

	// Re-index with the service content: endpoints disappear
	_, err = idx.IndexDocument(ctx, "acme/payments", "rev2", "src/users.controller.ts", []byte(serviceContent))
	require.NoError(t, err)

	doc, err := store.GetDocumentByPath(ctx, "acme/payments", "src/users.controller.ts")
	require.NoError(t, err)
	assert.Equal(t, "rev2", doc.Revision)

	endpoints, err := store.ListEndpointsByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, endpoints)

	docs, err := store.ListDocuments(ctx, "acme/payments")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestSyncLock_RejectsConcurrentSync(t *testing.T) {
	idx, _ := newTestIndexer(t, map[string]string{
		"src/users.service.ts": serviceContent,
	})

	require.True(t, idx.lock.TryAcquire())
	defer idx.lock.Release()

	_, err := idx.SyncRepository(context.Background(), "", "", nil)
	assert.ErrorIs(t, err, ErrSyncInProgress)
}

func TestIngestFindings(t *testing.T) {
	idx, store := newTestIndexer(t, nil)
	ctx := context.Background()

	_, err := idx.IndexDocument(ctx, "acme/payments", "rev1", "src/users.service.ts", []byte(serviceContent))
	require.NoError(t, err)

	report := `{
		"tool": "eslint",
		"findings": [
			{"path": "src/users.service.ts", "rule_id": "no-floating-promises", "severity": "warning", "message": "unawaited promise", "start_line": 3, "end_line": 3},
			{"path": "packages/api/src/users.service.ts", "rule_id": "complexity", "severity": "info", "message": "too complex", "start_line": 2, "end_line": 4},
			{"path": "src/missing.ts", "rule_id": "x", "severity": "error", "message": "orphan", "start_line": 1, "end_line": 1}
		]
	}`

	attached, err := idx.IngestFindings(ctx, "acme/payments", []byte(report))
	require.NoError(t, err)
	assert.Equal(t, 2, attached)

	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, status.FindingsCount)
}

func TestIngestFindings_InvalidReport(t *testing.T) {
	idx, _ := newTestIndexer(t, nil)

	_, err := idx.IngestFindings(context.Background(), "acme/payments", []byte("not json"))
	assert.Error(t, err)

	_, err = idx.IngestFindings(context.Background(), "acme/payments", []byte(`{"findings": []}`))
	assert.Error(t, err)
}
