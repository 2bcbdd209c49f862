package retriever

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codequarry/codequarry/internal/config"
	"github.com/codequarry/codequarry/internal/embedder"
	"github.com/codequarry/codequarry/internal/storage"
	"github.com/codequarry/codequarry/pkg/types"
)

// stubEmbedder returns a fixed vector, or fails when broken.
type stubEmbedder struct {
	vector []float32
	broken bool
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) (*embedder.Embedding, error) {
	if s.broken {
		return nil, errors.New("provider down")
	}
	return &embedder.Embedding{Vector: s.vector, Dimension: len(s.vector), Provider: "stub", Model: "stub"}, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]*embedder.Embedding, error) {
	out := make([]*embedder.Embedding, len(texts))
	for i := range texts {
		emb, err := s.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

func (s *stubEmbedder) Dimension() int   { return len(s.vector) }
func (s *stubEmbedder) Provider() string { return "stub" }
func (s *stubEmbedder) Model() string    { return "stub" }
func (s *stubEmbedder) Close() error     { return nil }

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// seedChunk stores a document with one chunk and its embedding,
// returning the chunk ID.
func seedChunk(t *testing.T, store storage.Store, repo, path, text string, kind types.ChunkKind, vector []float32) int64 {
	t.Helper()
	ctx := context.Background()

	doc := &types.Document{
		Repo:        repo,
		Revision:    "abc1234",
		Path:        path,
		Language:    "typescript",
		ContentHash: types.ComputeContentHash([]byte(text)),
	}
	require.NoError(t, store.UpsertDocument(ctx, doc))

	chunk := &types.Chunk{
		Ordinal:   0,
		Text:      text,
		Kind:      kind,
		StartLine: 1,
		EndLine:   5,
	}
	chunk.ComputeContentHash()
	require.NoError(t, store.ReplaceChunks(ctx, doc.ID, []*types.Chunk{chunk}))

	require.NoError(t, store.UpsertEmbedding(ctx, &storage.Embedding{
		ChunkID:   chunk.ID,
		Vector:    storage.SerializeVector(vector),
		Dimension: len(vector),
		Provider:  "stub",
		Model:     "stub",
	}))

	return chunk.ID
}

func TestSearch_BlendsSignals(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	refundChunk := seedChunk(t, store, "acme/payments", "src/refunds.controller.ts",
		"export class RefundsController { create(dto: CreateRefundDto) {} }",
		types.ChunkRoute, []float32{1, 0, 0})
	seedChunk(t, store, "acme/payments", "src/unrelated.ts",
		"export const copyright = 2024",
		types.ChunkDeclaration, []float32{0, 1, 0})

	doc, err := store.GetDocumentByPath(ctx, "acme/payments", "src/refunds.controller.ts")
	require.NoError(t, err)
	require.NoError(t, store.InsertEndpoints(ctx, doc.ID, []types.Endpoint{{
		Protocol: "http", Method: "POST", Path: "/refunds",
		Handler: "RefundsController.create", StartLine: 1, EndLine: 5,
	}}))

	r := New(store, &stubEmbedder{vector: []float32{0.9, 0.1, 0}}, config.Default().Weights, zerolog.Nop())

	results, err := r.Search(ctx, "RefundsController refunds", 5, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	// The semantically close chunk outranks the fixed-score pin
	assert.Equal(t, refundChunk, results[0].ChunkID)
	assert.Greater(t, results[0].Score, config.Default().Weights.EndpointPin)

	var pinSeen bool
	for _, res := range results {
		if res.Signal == types.SignalEndpointPin {
			pinSeen = true
			assert.Equal(t, "POST /refunds", res.Preview)
			assert.Equal(t, "RefundsController.create", res.Symbol)
			assert.Zero(t, res.ChunkID)
		}
	}
	assert.True(t, pinSeen, "endpoint pin expected in results")
}

func TestSearch_FactsheetBoost(t *testing.T) {
	store := newTestStore(t)

	plain := seedChunk(t, store, "acme/payments", "src/a.ts", "refund processing logic",
		types.ChunkDeclaration, []float32{1, 0, 0})
	sheet := seedChunk(t, store, "acme/payments", "src/b.ts", "HTTP endpoint POST /refunds in src/b.ts.",
		types.ChunkFactsheet, []float32{1, 0, 0})

	r := New(store, &stubEmbedder{vector: []float32{1, 0, 0}}, config.Default().Weights, zerolog.Nop())

	results, err := r.Search(context.Background(), "zzzz", 5, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Identical similarity, but the factsheet gets the boost
	assert.Equal(t, sheet, results[0].ChunkID)
	assert.Equal(t, plain, results[1].ChunkID)
	assert.InDelta(t, config.Default().Weights.FactsheetBoost, results[0].Score-results[1].Score, 1e-9)
}

func TestSearch_VectorFailureDegrades(t *testing.T) {
	store := newTestStore(t)
	seedChunk(t, store, "acme/payments", "src/refunds.ts", "refund webhook handler",
		types.ChunkDeclaration, []float32{1, 0, 0})

	r := New(store, &stubEmbedder{broken: true}, config.Default().Weights, zerolog.Nop())

	results, err := r.Search(context.Background(), "refund webhook", 5, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, types.SignalLexical, results[0].Signal)
}

func TestSearch_RepoFilter(t *testing.T) {
	store := newTestStore(t)
	seedChunk(t, store, "acme/payments", "src/refunds.ts", "refund webhook handler",
		types.ChunkDeclaration, []float32{1, 0, 0})
	seedChunk(t, store, "acme/identity", "src/refunds.ts", "refund webhook handler",
		types.ChunkDeclaration, []float32{1, 0, 0})

	r := New(store, &stubEmbedder{vector: []float32{1, 0, 0}}, config.Default().Weights, zerolog.Nop())

	filter := types.SomeRepos("acme/identity")
	results, err := r.Search(context.Background(), "refund webhook", 10, &filter)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, res := range results {
		assert.Equal(t, "acme/identity", res.Repo)
	}
}

func TestSearch_Validation(t *testing.T) {
	store := newTestStore(t)
	r := New(store, &stubEmbedder{vector: []float32{1}}, config.Default().Weights, zerolog.Nop())

	_, err := r.Search(context.Background(), "  ", 5, nil)
	assert.ErrorIs(t, err, types.ErrEmptyQuery)

	_, err = r.Search(context.Background(), "refund", 0, nil)
	assert.ErrorIs(t, err, types.ErrInvalidTopK)
}

func TestLexical_OnlyTextSignal(t *testing.T) {
	store := newTestStore(t)
	seedChunk(t, store, "acme/payments", "src/refunds.ts", "refund webhook handler",
		types.ChunkDeclaration, []float32{1, 0, 0})

	r := New(store, &stubEmbedder{broken: true}, config.Default().Weights, zerolog.Nop())

	results, err := r.Lexical(context.Background(), "refund webhook", 5, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, types.SignalLexical, results[0].Signal)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"post", "users"}, tokenize("POST /users"))
	assert.Equal(t, []string{"userscontroller.create"}, tokenize("UsersController.create"))
	assert.Empty(t, tokenize("  !?  "))
}
