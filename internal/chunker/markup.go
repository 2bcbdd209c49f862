package chunker

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/codequarry/codequarry/pkg/types"
)

// maxSectionDepth is the deepest heading level that starts a new
// section; deeper headings accumulate into the current section.
const maxSectionDepth = 3

var markdown = goldmark.New()

// headingMark locates one section boundary in the source.
type headingMark struct {
	title string
	line  int // 1-based line of the heading
}

// chunkMarkup splits markup content at heading boundaries (depth <= 3),
// accumulating paragraphs, lists, and code blocks under the most
// recent heading into one chunk per section.
func chunkMarkup(content []byte, lines []string) ([]types.Chunk, error) {
	reader := text.NewReader(content)
	doc := markdown.Parser().Parse(reader)

	marks := collectHeadings(doc, content)
	if len(marks) == 0 {
		return nil, nil
	}

	chunks := make([]types.Chunk, 0, len(marks)+1)

	// Preamble before the first heading becomes an untitled section.
	if first := marks[0].line; first > 1 {
		start, end := trimBlankEdges(lines, 1, first-1)
		if text := sliceLines(lines, start, end); strings.TrimSpace(text) != "" {
			chunks = append(chunks, types.Chunk{
				Text:      text,
				Kind:      types.ChunkSection,
				StartLine: start,
				EndLine:   end,
			})
		}
	}

	for i, mark := range marks {
		end := len(lines)
		if i+1 < len(marks) {
			end = marks[i+1].line - 1
		}
		start, end := trimBlankEdges(lines, mark.line, end)
		chunks = append(chunks, types.Chunk{
			Text:      sliceLines(lines, start, end),
			Kind:      types.ChunkSection,
			Title:     mark.title,
			StartLine: start,
			EndLine:   end,
		})
	}

	return chunks, nil
}

// collectHeadings walks the parsed document for section-starting
// headings in document order.
func collectHeadings(doc ast.Node, content []byte) []headingMark {
	var marks []headingMark

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Level > maxSectionDepth {
			return ast.WalkContinue, nil
		}
		if heading.Lines().Len() == 0 {
			return ast.WalkContinue, nil
		}
		seg := heading.Lines().At(0)
		marks = append(marks, headingMark{
			title: headingTitle(heading, content),
			line:  lineOfOffset(content, seg.Start),
		})
		return ast.WalkContinue, nil
	})

	return marks
}

// headingTitle renders the raw heading text.
func headingTitle(heading *ast.Heading, content []byte) string {
	var buf bytes.Buffer
	for i := 0; i < heading.Lines().Len(); i++ {
		seg := heading.Lines().At(i)
		buf.Write(seg.Value(content))
	}
	return strings.TrimSpace(buf.String())
}

// lineOfOffset converts a byte offset into a 1-based line number.
func lineOfOffset(content []byte, offset int) int {
	if offset > len(content) {
		offset = len(content)
	}
	return 1 + bytes.Count(content[:offset], []byte("\n"))
}
