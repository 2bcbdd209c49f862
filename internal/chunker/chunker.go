package chunker

import (
	"sort"
	"strings"

	"github.com/codequarry/codequarry/pkg/types"
)

// Chunker splits file content into ordered, addressable units with
// line-span metadata. Dispatch is by content category, resolved once
// per file.
type Chunker struct{}

// New creates a new Chunker instance.
func New() *Chunker {
	return &Chunker{}
}

// Chunk splits content into chunks for the given path. Ordinals are
// assigned by discovery order and are stable across re-chunking of
// unchanged content. If no structural unit is found, exactly one
// whole-file chunk is emitted.
func (c *Chunker) Chunk(content []byte, path, languageHint string) ([]types.Chunk, error) {
	if len(content) == 0 {
		return []types.Chunk{}, nil
	}

	lines := strings.Split(string(content), "\n")

	var chunks []types.Chunk
	var err error

	switch DetectCategory(path, languageHint) {
	case CategoryMarkup:
		chunks, err = chunkMarkup(content, lines)
	case CategoryController:
		chunks = chunkController(lines)
	case CategorySource:
		chunks = chunkSource(lines, DetectLanguage(path, languageHint))
	case CategoryUnknown:
		// handled by the fallback below
	}
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		chunks = []types.Chunk{wholeFileChunk(lines)}
	}

	finalize(chunks)
	return chunks, nil
}

// wholeFileChunk emits the single fallback chunk covering the file.
func wholeFileChunk(lines []string) types.Chunk {
	return types.Chunk{
		Text:      strings.Join(lines, "\n"),
		Kind:      types.ChunkFile,
		StartLine: 1,
		EndLine:   len(lines),
	}
}

// finalize orders chunks by position, assigns contiguous ordinals,
// and computes content hashes.
func finalize(chunks []types.Chunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].StartLine != chunks[j].StartLine {
			return chunks[i].StartLine < chunks[j].StartLine
		}
		return chunks[i].EndLine > chunks[j].EndLine
	})
	for i := range chunks {
		chunks[i].Ordinal = i
		chunks[i].ComputeContentHash()
	}
}

// sliceLines joins lines[start-1:end] using 1-based inclusive bounds,
// clamping to the file.
func sliceLines(lines []string, start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}

// trimBlankEdges narrows a 1-based inclusive span to exclude leading
// and trailing blank lines.
func trimBlankEdges(lines []string, start, end int) (int, int) {
	for start < end && strings.TrimSpace(lines[start-1]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return start, end
}
