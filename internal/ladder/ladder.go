// Package ladder drives multi-pass retrieval for question answering.
// Each pass relaxes the previous one; the ladder stops as soon as it
// has enough grounded sources and never calls the language model with
// an empty source set.
package ladder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/codequarry/codequarry/internal/config"
	"github.com/codequarry/codequarry/internal/storage"
	"github.com/codequarry/codequarry/pkg/types"
)

// state is one rung of the retrieval ladder. Transitions only move
// downward; done is terminal.
type state int

const (
	stateBase state = iota
	stateWidened
	stateLexicalFallback
	stateHinted
	stateDone
)

func (s state) String() string {
	switch s {
	case stateBase:
		return "base"
	case stateWidened:
		return "widened"
	case stateLexicalFallback:
		return "lexicalFallback"
	case stateHinted:
		return "hinted"
	default:
		return "done"
	}
}

// Retriever is the search dependency of the ladder.
type Retriever interface {
	Search(ctx context.Context, query string, topK int, filter *types.RepoFilter) ([]types.Retrieved, error)
	Lexical(ctx context.Context, query string, topK int, filter *types.RepoFilter) ([]types.Retrieved, error)
}

// Synthesizer turns a question and its sources into a grounded answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, question string, sources []types.Retrieved) (*types.Answer, error)
}

// Ladder coordinates the passes and hands the surviving sources to
// the synthesizer.
type Ladder struct {
	retriever   Retriever
	store       storage.Store
	synthesizer Synthesizer
	cfg         config.LadderConfig
	logger      zerolog.Logger
}

// New creates a Ladder.
func New(r Retriever, store storage.Store, syn Synthesizer, cfg config.LadderConfig, logger zerolog.Logger) *Ladder {
	return &Ladder{
		retriever:   r,
		store:       store,
		synthesizer: syn,
		cfg:         cfg,
		logger:      logger,
	}
}

// AnswerQuery runs the ladder for one question. Hints are exact
// repository paths the caller believes relevant; their chunks are
// always injected with a forced score so they survive final ranking.
// An empty final source set returns the canned no-information answer
// without a provider call.
func (l *Ladder) AnswerQuery(ctx context.Context, question string, k int, filter *types.RepoFilter, hints []string) (*types.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, types.ErrEmptyQuery
	}
	if k <= 0 {
		return nil, types.ErrInvalidTopK
	}

	var pool []types.Retrieved
	current := stateBase

	for current != stateDone {
		switch current {
		case stateBase:
			results, err := l.retriever.Search(ctx, question, k, filter)
			if err != nil {
				return nil, fmt.Errorf("base pass: %w", err)
			}
			pool = keepAbove(results, l.cfg.BaseThreshold)
			current = l.afterBase(pool)

		case stateWidened:
			widenedK := 2 * k
			if widenedK < l.cfg.WidenMinK {
				widenedK = l.cfg.WidenMinK
			}
			results, err := l.retriever.Search(ctx, question, widenedK, filter)
			if err != nil {
				return nil, fmt.Errorf("widened pass: %w", err)
			}
			pool = append(pool, keepAbove(results, l.cfg.WidenThreshold)...)
			current = l.afterWidened(pool)

		case stateLexicalFallback:
			results, err := l.retriever.Lexical(ctx, question, l.cfg.WidenMinK, filter)
			if err != nil {
				return nil, fmt.Errorf("lexical fallback: %w", err)
			}
			pool = append(pool, results...)
			current = stateHinted

		case stateHinted:
			injected, err := l.injectHints(ctx, hints, filter)
			if err != nil {
				return nil, fmt.Errorf("hint injection: %w", err)
			}
			pool = append(pool, injected...)
			current = stateDone
		}

		l.logger.Debug().
			Str("state", current.String()).
			Int("pool", len(pool)).
			Msg("ladder transition")
	}

	sources := finalize(pool, l.cfg.MaxSources)
	if len(sources) == 0 {
		return types.NoInformation(), nil
	}

	return l.synthesizer.Synthesize(ctx, question, sources)
}

// afterBase decides the transition out of the base pass.
func (l *Ladder) afterBase(pool []types.Retrieved) state {
	if len(pool) == 0 {
		return stateWidened
	}
	if l.cfg.Aggressive && len(dedupe(pool)) < 3 {
		return stateWidened
	}
	return stateHinted
}

// afterWidened decides the transition out of the widened pass.
func (l *Ladder) afterWidened(pool []types.Retrieved) state {
	if len(pool) == 0 {
		return stateLexicalFallback
	}
	return stateHinted
}

// injectHints fetches the chunks of each hinted path and forces their
// score so hints always reach final ranking.
func (l *Ladder) injectHints(ctx context.Context, hints []string, filter *types.RepoFilter) ([]types.Retrieved, error) {
	var injected []types.Retrieved

	for _, hint := range hints {
		repo, path := splitHint(hint)
		docs, err := l.hintDocuments(ctx, repo, path, filter)
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			chunks, err := l.store.ListChunksByDocument(ctx, doc.ID)
			if err != nil {
				return nil, err
			}
			for _, chunk := range chunks {
				preview := chunk.Text
				if len(preview) > 240 {
					preview = preview[:240]
				}
				injected = append(injected, types.Retrieved{
					Score:      l.cfg.HintScore,
					Repo:       doc.Repo,
					Path:       doc.Path,
					Symbol:     chunk.Symbol,
					StartLine:  chunk.StartLine,
					EndLine:    chunk.EndLine,
					Revision:   doc.Revision,
					Preview:    preview,
					DocumentID: doc.ID,
					ChunkID:    chunk.ID,
					Signal:     types.SignalHint,
				})
			}
		}
	}

	return injected, nil
}

// hintDocuments resolves a hint to documents. A repo-qualified hint
// resolves directly; a bare path is looked up in every repo the
// filter admits.
func (l *Ladder) hintDocuments(ctx context.Context, repo, path string, filter *types.RepoFilter) ([]*types.Document, error) {
	if repo != "" {
		doc, err := l.store.GetDocumentByPath(ctx, repo, path)
		if errors.Is(err, storage.ErrNotFound) {
			l.logger.Warn().Str("repo", repo).Str("path", path).Msg("hint matched no document")
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []*types.Document{doc}, nil
	}

	all, err := l.store.ListDocuments(ctx, "")
	if err != nil {
		return nil, err
	}
	var docs []*types.Document
	for _, doc := range all {
		if doc.Path != path {
			continue
		}
		if filter != nil && !filter.All && len(filter.Repos) > 0 && !filter.Matches(doc.Repo) {
			continue
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		l.logger.Warn().Str("path", path).Msg("hint matched no document")
	}
	return docs, nil
}

// splitHint parses "repo:path" or bare "path" hints.
func splitHint(hint string) (repo, path string) {
	if i := strings.Index(hint, ":"); i > 0 && strings.Count(hint[:i], "/") == 1 {
		return hint[:i], hint[i+1:]
	}
	return "", hint
}

// keepAbove filters results below a score threshold.
func keepAbove(results []types.Retrieved, threshold float64) []types.Retrieved {
	kept := make([]types.Retrieved, 0, len(results))
	for _, r := range results {
		if r.Score >= threshold {
			kept = append(kept, r)
		}
	}
	return kept
}

// dedupe keeps the best-scoring item per (repo, path).
func dedupe(pool []types.Retrieved) []types.Retrieved {
	type key struct{ repo, path string }
	best := make(map[key]types.Retrieved)
	for _, r := range pool {
		k := key{r.Repo, r.Path}
		if prev, ok := best[k]; !ok || r.Score > prev.Score {
			best[k] = r
		}
	}
	out := make([]types.Retrieved, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	return out
}

// finalize dedupes, sorts by score descending, and caps the source
// count handed to the synthesizer.
func finalize(pool []types.Retrieved, maxSources int) []types.Retrieved {
	sources := dedupe(pool)
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Score > sources[j].Score
	})
	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}
	return sources
}
