// Package answer synthesizes grounded answers from retrieved sources.
// Every claim in an answer must be attributable to a source the
// synthesizer was actually given; citations that cannot be verified
// against that set are dropped before the answer is returned.
package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/codequarry/codequarry/internal/llm"
	"github.com/codequarry/codequarry/internal/storage"
	"github.com/codequarry/codequarry/pkg/types"
)

// contextCharLimit caps each source's context block in the prompt.
const contextCharLimit = 1400

// answerSchema constrains the provider's output shape.
var answerSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"answer": {"type": "string"},
		"citations": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"link": {"type": "string"},
					"repo": {"type": "string"},
					"path": {"type": "string"},
					"start_line": {"type": "integer"},
					"end_line": {"type": "integer"}
				},
				"required": ["link"],
				"additionalProperties": false
			}
		}
	},
	"required": ["answer", "citations"],
	"additionalProperties": false
}`)

const systemPrompt = `You answer questions about source code using ONLY the numbered sources provided.
Rules:
- Every claim must come from the sources. Never invent facts, APIs, or behavior.
- Mark each claim with the inline marker [n] of the source that supports it.
- Cite only sources you actually used, by their exact permalink.
- If the sources do not contain the answer, say so.`

// markerPattern finds inline [n] citation markers.
var markerPattern = regexp.MustCompile(`\[\d+\]`)

// Synthesizer builds the grounded prompt and validates the provider's
// output against the source set.
type Synthesizer struct {
	provider llm.ChatProvider
	store    storage.Store
	host     string // permalink base, e.g. "https://github.com"
	logger   zerolog.Logger
}

// New creates a Synthesizer. host is the permalink prefix for
// citations.
func New(provider llm.ChatProvider, store storage.Store, host string, logger zerolog.Logger) *Synthesizer {
	return &Synthesizer{
		provider: provider,
		store:    store,
		host:     host,
		logger:   logger,
	}
}

// Synthesize asks the provider for a grounded answer over the given
// sources. Malformed provider output degrades to raw text with no
// citations; an answer with neither markers nor verifiable citations
// is replaced by the canned no-information response.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, sources []types.Retrieved) (*types.Answer, error) {
	if len(sources) == 0 {
		return nil, types.ErrNoSources
	}

	permalinks := make([]string, len(sources))
	for i := range sources {
		permalinks[i] = sources[i].Permalink(s.host)
	}

	user := s.buildPrompt(ctx, question, sources, permalinks)

	raw, err := s.provider.GenerateStructured(ctx, systemPrompt, user, answerSchema)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	answer := s.parseAnswer(raw)
	answer.Citations = intersectCitations(answer.Citations, sources, permalinks)

	if !markerPattern.MatchString(answer.Text) && len(answer.Citations) == 0 {
		// Nothing in the answer is traceable to a source.
		return types.NoInformation(), nil
	}

	return answer, nil
}

// buildPrompt renders the numbered source list and per-source context
// blocks.
func (s *Synthesizer) buildPrompt(ctx context.Context, question string, sources []types.Retrieved, permalinks []string) string {
	var b strings.Builder

	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\nSources:\n")
	for i, link := range permalinks {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, link)
	}

	b.WriteString("\nContext:\n")
	for i, src := range sources {
		fmt.Fprintf(&b, "--- [%d] %s %s", i+1, src.Repo, src.Path)
		if src.Symbol != "" {
			fmt.Fprintf(&b, " (%s)", src.Symbol)
		}
		if src.StartLine > 0 {
			fmt.Fprintf(&b, " lines %d-%d", src.StartLine, src.EndLine)
		}
		b.WriteString(" ---\n")
		b.WriteString(s.sourceBody(ctx, src))
		b.WriteString("\n")
	}

	return b.String()
}

// sourceBody returns the fullest available text for a source, capped
// at the context limit. Fact pins have no chunk; their preview is the
// whole story.
func (s *Synthesizer) sourceBody(ctx context.Context, src types.Retrieved) string {
	body := src.Preview
	if src.ChunkID != 0 {
		if chunk, err := s.store.GetChunk(ctx, src.ChunkID); err == nil {
			body = chunk.Text
		}
	}
	if len(body) > contextCharLimit {
		body = body[:contextCharLimit]
	}
	return body
}

// parseAnswer decodes the provider payload, degrading to raw text on
// schema violations.
func (s *Synthesizer) parseAnswer(raw json.RawMessage) *types.Answer {
	var answer types.Answer
	if err := json.Unmarshal(raw, &answer); err != nil || answer.Text == "" {
		s.logger.Warn().Err(err).Msg("provider output failed schema, degrading to raw text")
		return &types.Answer{Text: strings.TrimSpace(string(raw)), Citations: []types.Citation{}}
	}
	return &answer
}

// intersectCitations keeps only citations whose link exactly matches
// a source permalink, and rewrites their fields from the matching
// source so the citation can never disagree with the index.
func intersectCitations(claimed []types.Citation, sources []types.Retrieved, permalinks []string) []types.Citation {
	byLink := make(map[string]int, len(permalinks))
	for i, link := range permalinks {
		byLink[link] = i
	}

	verified := make([]types.Citation, 0, len(claimed))
	seen := make(map[string]bool)
	for _, c := range claimed {
		i, ok := byLink[c.Link]
		if !ok || seen[c.Link] {
			continue
		}
		seen[c.Link] = true
		src := sources[i]
		verified = append(verified, types.Citation{
			Link:      permalinks[i],
			Repo:      src.Repo,
			Path:      src.Path,
			StartLine: src.StartLine,
			EndLine:   src.EndLine,
		})
	}
	return verified
}
