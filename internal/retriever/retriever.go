// Package retriever implements hybrid search over the index: vector
// similarity, lexical full-text, and structured fact pins blended
// into one ranked result set.
package retriever

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/codequarry/codequarry/internal/config"
	"github.com/codequarry/codequarry/internal/embedder"
	"github.com/codequarry/codequarry/internal/storage"
	"github.com/codequarry/codequarry/pkg/types"
)

// Retriever coordinates the three retrieval signals.
type Retriever struct {
	store    storage.Store
	embedder embedder.Embedder
	weights  config.Weights
	logger   zerolog.Logger
}

// New creates a Retriever with the given score weights.
func New(store storage.Store, emb embedder.Embedder, weights config.Weights, logger zerolog.Logger) *Retriever {
	return &Retriever{
		store:    store,
		embedder: emb,
		weights:  weights,
		logger:   logger,
	}
}

// Search runs all three signals concurrently over the same candidate
// space and returns merged candidates sorted by score descending,
// truncated to max(topK, ResultFloor). A single failing signal
// degrades the result set; if both the vector and lexical signals
// fail the search fails.
func (r *Retriever) Search(ctx context.Context, query string, topK int, filter *types.RepoFilter) ([]types.Retrieved, error) {
	if strings.TrimSpace(query) == "" {
		return nil, types.ErrEmptyQuery
	}
	if topK <= 0 {
		return nil, types.ErrInvalidTopK
	}

	limit := topK
	if limit < r.weights.ResultFloor {
		limit = r.weights.ResultFloor
	}

	var (
		vectorResults []storage.VectorResult
		textResults   []storage.TextResult
		pinResults    []pinCandidate
		vectorErr     error
		textErr       error
		pinErr        error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vectorResults, vectorErr = r.vectorSignal(gctx, query, limit, filter)
		return nil
	})
	g.Go(func() error {
		textResults, textErr = r.store.SearchText(gctx, query, limit, filter)
		return nil
	})
	g.Go(func() error {
		pinResults, pinErr = r.pinSignal(gctx, query, limit, filter)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if vectorErr != nil && textErr != nil {
		return nil, fmt.Errorf("both vector and lexical signals failed: vector=%w, lexical=%v", vectorErr, textErr)
	}
	for name, err := range map[string]error{"vector": vectorErr, "lexical": textErr, "pins": pinErr} {
		if err != nil {
			r.logger.Warn().Str("signal", name).Err(err).Msg("retrieval signal failed, degrading")
		}
	}

	merged, err := r.merge(ctx, vectorResults, textResults, pinResults)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// Lexical runs only the full-text signal. Used by the answer ladder's
// last-resort pass.
func (r *Retriever) Lexical(ctx context.Context, query string, topK int, filter *types.RepoFilter) ([]types.Retrieved, error) {
	if strings.TrimSpace(query) == "" {
		return nil, types.ErrEmptyQuery
	}
	if topK <= 0 {
		return nil, types.ErrInvalidTopK
	}

	textResults, err := r.store.SearchText(ctx, query, topK, filter)
	if err != nil {
		return nil, err
	}

	merged, err := r.merge(ctx, nil, textResults, nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	return merged, nil
}

// vectorSignal embeds the query and searches by cosine similarity.
func (r *Retriever) vectorSignal(ctx context.Context, query string, limit int, filter *types.RepoFilter) ([]storage.VectorResult, error) {
	emb, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return r.store.SearchVector(ctx, emb.Vector, limit, filter)
}

// pinCandidate pairs a fact match with its signal for scoring.
type pinCandidate struct {
	pin    storage.PinResult
	signal types.Signal
}

// pinSignal matches query tokens against structured facts. The three
// pin families run sequentially; they are cheap LIKE scans.
func (r *Retriever) pinSignal(ctx context.Context, query string, limit int, filter *types.RepoFilter) ([]pinCandidate, error) {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	var out []pinCandidate

	endpoints, err := r.store.SearchEndpointPins(ctx, tokens, limit, filter)
	if err != nil {
		return nil, fmt.Errorf("endpoint pins: %w", err)
	}
	for _, p := range endpoints {
		out = append(out, pinCandidate{pin: p, signal: types.SignalEndpointPin})
	}

	symbols, err := r.store.SearchSymbolPins(ctx, tokens, limit, filter)
	if err != nil {
		return nil, fmt.Errorf("symbol pins: %w", err)
	}
	for _, p := range symbols {
		out = append(out, pinCandidate{pin: p, signal: types.SignalSymbolPin})
	}

	edges, err := r.store.SearchEdgePins(ctx, tokens, limit, filter)
	if err != nil {
		return nil, fmt.Errorf("edge pins: %w", err)
	}
	for _, p := range edges {
		out = append(out, pinCandidate{pin: p, signal: types.SignalEdgePin})
	}

	return out, nil
}

// merge scores and hydrates all candidates. Chunks reached by both
// the vector and lexical signals keep their best score.
func (r *Retriever) merge(ctx context.Context, vectors []storage.VectorResult, texts []storage.TextResult, pins []pinCandidate) ([]types.Retrieved, error) {
	type scored struct {
		score  float64
		signal types.Signal
	}
	byChunk := make(map[int64]scored)

	for _, vr := range vectors {
		score := r.weights.Vector * vr.SimilarityScore
		if vr.Kind == types.ChunkFactsheet {
			score += r.weights.FactsheetBoost
		}
		if prev, ok := byChunk[vr.ChunkID]; !ok || score > prev.score {
			byChunk[vr.ChunkID] = scored{score: score, signal: types.SignalVector}
		}
	}
	for _, tr := range texts {
		score := r.weights.LexicalBase + r.weights.Lexical*tr.BM25Score
		if prev, ok := byChunk[tr.ChunkID]; !ok || score > prev.score {
			byChunk[tr.ChunkID] = scored{score: score, signal: types.SignalLexical}
		}
	}

	docs := make(map[int64]*types.Document)
	results := make([]types.Retrieved, 0, len(byChunk)+len(pins))

	for chunkID, s := range byChunk {
		item, err := r.hydrateChunk(ctx, chunkID, docs)
		if err != nil {
			// The chunk may have been replaced mid-query; drop it.
			r.logger.Debug().Int64("chunk_id", chunkID).Err(err).Msg("dropping unhydratable candidate")
			continue
		}
		item.Score = s.score
		item.Signal = s.signal
		results = append(results, item)
	}

	for _, pc := range pins {
		var score float64
		switch pc.signal {
		case types.SignalEndpointPin:
			score = r.weights.EndpointPin
		case types.SignalSymbolPin:
			score = r.weights.SymbolPin
		default:
			score = r.weights.EdgePin
		}
		results = append(results, types.Retrieved{
			Score:      score,
			Repo:       pc.pin.Repo,
			Path:       pc.pin.Path,
			Symbol:     pc.pin.Symbol,
			StartLine:  pc.pin.StartLine,
			EndLine:    pc.pin.EndLine,
			Revision:   pc.pin.Revision,
			Preview:    pc.pin.Label,
			DocumentID: pc.pin.DocumentID,
			Signal:     pc.signal,
		})
	}

	return results, nil
}

// previewLimit caps the preview text carried on a result.
const previewLimit = 240

// hydrateChunk loads a chunk and its document, caching document
// lookups for the duration of one search.
func (r *Retriever) hydrateChunk(ctx context.Context, chunkID int64, docs map[int64]*types.Document) (types.Retrieved, error) {
	chunk, err := r.store.GetChunk(ctx, chunkID)
	if err != nil {
		return types.Retrieved{}, err
	}

	doc, ok := docs[chunk.DocumentID]
	if !ok {
		doc, err = r.store.GetDocument(ctx, chunk.DocumentID)
		if err != nil {
			return types.Retrieved{}, err
		}
		docs[chunk.DocumentID] = doc
	}

	preview := chunk.Text
	if len(preview) > previewLimit {
		preview = preview[:previewLimit]
	}

	return types.Retrieved{
		Repo:       doc.Repo,
		Path:       doc.Path,
		Symbol:     chunk.Symbol,
		StartLine:  chunk.StartLine,
		EndLine:    chunk.EndLine,
		Revision:   doc.Revision,
		Preview:    preview,
		DocumentID: doc.ID,
		ChunkID:    chunk.ID,
	}, nil
}

// tokenize splits a query into lowercase tokens for pin matching,
// keeping route-ish characters so "/users" and "POST" survive.
func tokenize(query string) []string {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		case r == '/' || r == '.' || r == '-' || r == '_' || r == ':':
			return false
		}
		return true
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToLower(strings.Trim(f, "./-_:"))
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
