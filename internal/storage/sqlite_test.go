package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codequarry/codequarry/pkg/types"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testDocument(repo, path string) *types.Document {
	return &types.Document{
		Repo:        repo,
		Revision:    "3f2a91c",
		Path:        path,
		Language:    "typescript",
		ContentHash: types.ComputeContentHash([]byte("content of " + path)),
	}
}

func testChunk(ordinal int, text string) *types.Chunk {
	chunk := &types.Chunk{
		Ordinal:   ordinal,
		Kind:      types.ChunkDeclaration,
		Title:     "decl",
		Symbol:    "decl",
		Text:      text,
		StartLine: ordinal*10 + 1,
		EndLine:   ordinal*10 + 5,
	}
	chunk.ComputeContentHash()
	return chunk
}

func TestUpsertDocument_IdempotentOnRepoPath(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("acme/payments", "src/app.ts")
	require.NoError(t, store.UpsertDocument(ctx, doc))
	require.NotZero(t, doc.ID)
	firstID := doc.ID

	// Same repo+path at a newer revision must update in place
	again := testDocument("acme/payments", "src/app.ts")
	again.Revision = "9b7d22e"
	again.Language = "javascript"
	require.NoError(t, store.UpsertDocument(ctx, again))
	assert.Equal(t, firstID, again.ID)

	docs, err := store.ListDocuments(ctx, "acme/payments")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "9b7d22e", docs[0].Revision)
	assert.Equal(t, "javascript", docs[0].Language)
}

func TestGetDocumentByPath(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("acme/payments", "src/billing.ts")
	require.NoError(t, store.UpsertDocument(ctx, doc))

	got, err := store.GetDocumentByPath(ctx, "acme/payments", "src/billing.ts")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, doc.ContentHash, got.ContentHash)

	_, err = store.GetDocumentByPath(ctx, "acme/payments", "src/missing.ts")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceChunks_ReplacesPriorSet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("acme/payments", "src/app.ts")
	require.NoError(t, store.UpsertDocument(ctx, doc))

	first := []*types.Chunk{testChunk(0, "old alpha"), testChunk(1, "old beta"), testChunk(2, "old gamma")}
	require.NoError(t, store.ReplaceChunks(ctx, doc.ID, first))
	for _, c := range first {
		require.NotZero(t, c.ID)
	}

	second := []*types.Chunk{testChunk(0, "new delta")}
	require.NoError(t, store.ReplaceChunks(ctx, doc.ID, second))

	chunks, err := store.ListChunksByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "new delta", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Ordinal)

	// Prior chunk rows are gone entirely
	_, err = store.GetChunk(ctx, first[1].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceChunks_CascadesEmbeddings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("acme/payments", "src/app.ts")
	require.NoError(t, store.UpsertDocument(ctx, doc))

	chunks := []*types.Chunk{testChunk(0, "embedded text")}
	require.NoError(t, store.ReplaceChunks(ctx, doc.ID, chunks))

	emb := &Embedding{
		ChunkID:   chunks[0].ID,
		Vector:    SerializeVector([]float32{0.1, 0.2, 0.3}),
		Dimension: 3,
		Provider:  "ollama",
		Model:     "nomic-embed-text",
	}
	require.NoError(t, store.UpsertEmbedding(ctx, emb))

	require.NoError(t, store.ReplaceChunks(ctx, doc.ID, []*types.Chunk{testChunk(0, "replacement")}))

	_, err := store.GetEmbedding(ctx, emb.ChunkID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceChunks_InTransactionRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("acme/payments", "src/app.ts")
	require.NoError(t, store.UpsertDocument(ctx, doc))
	require.NoError(t, store.ReplaceChunks(ctx, doc.ID, []*types.Chunk{testChunk(0, "committed")}))

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.ReplaceChunks(ctx, doc.ID, []*types.Chunk{testChunk(0, "uncommitted")}))
	require.NoError(t, tx.Rollback())

	chunks, err := store.ListChunksByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "committed", chunks[0].Text)
}

func TestFactsClearThenInsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("acme/payments", "src/users/users.controller.ts")
	require.NoError(t, store.UpsertDocument(ctx, doc))

	require.NoError(t, store.InsertSymbols(ctx, doc.ID, []types.Symbol{
		{Kind: types.KindClass, Name: "UsersController", Exported: true, StartLine: 4, EndLine: 16},
	}))
	require.NoError(t, store.InsertEndpoints(ctx, doc.ID, []types.Endpoint{
		{Protocol: "http", Method: "POST", Path: "/users", Handler: "UsersController.create", StartLine: 12, EndLine: 15},
	}))
	require.NoError(t, store.InsertEdges(ctx, doc.ID, []types.Edge{
		{Type: types.EdgePublish, TargetKind: "topic", TargetValue: "user.created", Line: 14, Method: types.ExtractionHeuristic, Confidence: 0.7},
	}))

	endpoints, err := store.ListEndpointsByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, endpoints, 1)
	assert.Equal(t, "POST", endpoints[0].Method)
	assert.Equal(t, "/users", endpoints[0].Path)

	symbols, err := store.ListSymbolsByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	assert.Equal(t, types.KindClass, symbols[0].Kind)

	require.NoError(t, store.ClearFacts(ctx, doc.ID))

	endpoints, err = store.ListEndpointsByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, endpoints)
	symbols, err = store.ListSymbolsByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

func TestSearchText_FindsChunkAndHonorsRepoFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("acme/payments", "src/refund.ts")
	require.NoError(t, store.UpsertDocument(ctx, doc))
	require.NoError(t, store.ReplaceChunks(ctx, doc.ID, []*types.Chunk{
		testChunk(0, "function processRefund(order) { return refundGateway.submit(order) }"),
		testChunk(1, "function unrelatedHelper() { return 42 }"),
	}))

	other := testDocument("acme/identity", "src/login.ts")
	require.NoError(t, store.UpsertDocument(ctx, other))
	require.NoError(t, store.ReplaceChunks(ctx, other.ID, []*types.Chunk{
		testChunk(0, "function processRefund(ticket) { /* identity copy */ }"),
	}))

	results, err := store.SearchText(ctx, "processRefund", 10, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Greater(t, r.BM25Score, 0.0)
		assert.LessOrEqual(t, r.BM25Score, 1.0)
	}

	filter := types.SomeRepos("acme/payments")
	filtered, err := store.SearchText(ctx, "processRefund", 10, &filter)
	require.NoError(t, err)
	require.NotEmpty(t, filtered)
	for _, r := range filtered {
		chunk, err := store.GetChunk(ctx, r.ChunkID)
		require.NoError(t, err)
		assert.Equal(t, doc.ID, chunk.DocumentID)
	}
}

func TestSearchText_EmptyQuery(t *testing.T) {
	store := newTestStore(t)
	_, err := store.SearchText(context.Background(), "   ", 10, nil)
	assert.ErrorIs(t, err, types.ErrEmptyQuery)
}

func TestSearchVector_RanksBySimilarity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("acme/payments", "src/app.ts")
	require.NoError(t, store.UpsertDocument(ctx, doc))
	chunks := []*types.Chunk{testChunk(0, "near"), testChunk(1, "far")}
	require.NoError(t, store.ReplaceChunks(ctx, doc.ID, chunks))

	near := []float32{1, 0, 0}
	far := []float32{0, 1, 0}
	require.NoError(t, store.UpsertEmbedding(ctx, &Embedding{
		ChunkID: chunks[0].ID, Vector: SerializeVector(near), Dimension: 3,
		Provider: "ollama", Model: "nomic-embed-text",
	}))
	require.NoError(t, store.UpsertEmbedding(ctx, &Embedding{
		ChunkID: chunks[1].ID, Vector: SerializeVector(far), Dimension: 3,
		Provider: "ollama", Model: "nomic-embed-text",
	}))

	results, err := store.SearchVector(ctx, []float32{0.9, 0.1, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, chunks[0].ID, results[0].ChunkID)
	assert.Greater(t, results[0].SimilarityScore, results[1].SimilarityScore)
	assert.Equal(t, types.ChunkDeclaration, results[0].Kind)
}

func TestSearchEndpointPins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("acme/payments", "src/users/users.controller.ts")
	require.NoError(t, store.UpsertDocument(ctx, doc))
	require.NoError(t, store.InsertEndpoints(ctx, doc.ID, []types.Endpoint{
		{Protocol: "http", Method: "POST", Path: "/users", Handler: "UsersController.create", StartLine: 12, EndLine: 15},
		{Protocol: "http", Method: "GET", Path: "/refunds/:id", Handler: "RefundsController.findOne", StartLine: 20, EndLine: 24},
	}))

	pins, err := store.SearchEndpointPins(ctx, []string{"users"}, 10, nil)
	require.NoError(t, err)
	require.Len(t, pins, 1)
	assert.Equal(t, "POST /users", pins[0].Label)
	assert.Equal(t, "UsersController.create", pins[0].Symbol)
	assert.Equal(t, "acme/payments", pins[0].Repo)
	assert.Equal(t, "src/users/users.controller.ts", pins[0].Path)
	assert.Equal(t, 12, pins[0].StartLine)

	// Short tokens never match
	none, err := store.SearchEndpointPins(ctx, []string{"to", "a"}, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchSymbolAndEdgePins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("acme/payments", "src/events.ts")
	require.NoError(t, store.UpsertDocument(ctx, doc))
	require.NoError(t, store.InsertSymbols(ctx, doc.ID, []types.Symbol{
		{Kind: types.KindFunction, Name: "publishRefund", Exported: true, StartLine: 3, EndLine: 9},
	}))
	require.NoError(t, store.InsertEdges(ctx, doc.ID, []types.Edge{
		{Type: types.EdgePublish, TargetKind: "topic", TargetValue: "refund.requested", Line: 5, Method: types.ExtractionHeuristic, Confidence: 0.7},
	}))

	symPins, err := store.SearchSymbolPins(ctx, []string{"publishrefund"}, 10, nil)
	require.NoError(t, err)
	require.Len(t, symPins, 1)
	assert.Equal(t, "publishRefund", symPins[0].Label)

	edgePins, err := store.SearchEdgePins(ctx, []string{"refund.requested"}, 10, nil)
	require.NoError(t, err)
	require.Len(t, edgePins, 1)
	assert.Equal(t, "refund.requested", edgePins[0].Label)
	assert.Equal(t, 5, edgePins[0].StartLine)
}

func TestGetStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("acme/payments", "src/app.ts")
	require.NoError(t, store.UpsertDocument(ctx, doc))
	require.NoError(t, store.ReplaceChunks(ctx, doc.ID, []*types.Chunk{testChunk(0, "status text")}))

	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.DocumentsCount)
	assert.Equal(t, 1, status.ChunksCount)
	assert.Equal(t, 0, status.EmbeddingsCount)
	assert.True(t, status.Health.DatabaseAccessible)
	assert.False(t, status.Health.EmbeddingsAvailable)
}

func TestDeleteDocument_CascadesEverything(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("acme/payments", "src/app.ts")
	require.NoError(t, store.UpsertDocument(ctx, doc))
	require.NoError(t, store.ReplaceChunks(ctx, doc.ID, []*types.Chunk{testChunk(0, "text")}))
	require.NoError(t, store.InsertSymbols(ctx, doc.ID, []types.Symbol{
		{Kind: types.KindFunction, Name: "fn", StartLine: 1, EndLine: 2},
	}))

	require.NoError(t, store.DeleteDocument(ctx, doc.ID))

	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Zero(t, status.DocumentsCount)
	assert.Zero(t, status.ChunksCount)
	assert.Zero(t, status.SymbolsCount)
}
