package chunker

import (
	"regexp"
	"strings"

	"github.com/codequarry/codequarry/pkg/types"
)

// Top-level declaration shapes per language family. These are
// deliberately textual: the chunker needs names and spans, not a full
// parse.
var (
	tsFunctionPattern  = regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*(\w+)`)
	tsClassPattern     = regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+(\w+)`)
	tsInterfacePattern = regexp.MustCompile(`^(?:export\s+)?interface\s+(\w+)`)
	tsEnumPattern      = regexp.MustCompile(`^(?:export\s+)?(?:const\s+)?enum\s+(\w+)`)
	tsTypePattern      = regexp.MustCompile(`^(?:export\s+)?type\s+(\w+)`)
	tsVarPattern       = regexp.MustCompile(`^(?:export\s+)?(?:const|let|var)\s+(\w+)\s*[=:]`)
	tsMethodPattern    = regexp.MustCompile(`^\s{2,}(?:public\s+|private\s+|protected\s+|static\s+|readonly\s+)*(?:async\s+)?(\w+)\s*\([^;]*\)\s*(?::\s*[^{;]+)?{`)

	goFuncPattern = regexp.MustCompile(`^func\s+(?:\([^)]+\)\s+)?(\w+)`)
	goTypePattern = regexp.MustCompile(`^type\s+(\w+)`)
	goVarPattern  = regexp.MustCompile(`^(?:var|const)\s+(\w+)`)

	pyDefPattern   = regexp.MustCompile(`^(?:async\s+)?def\s+(\w+)`)
	pyClassPattern = regexp.MustCompile(`^class\s+(\w+)`)
)

// reserved words that look like method names to the textual scanner.
var methodKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true,
	"catch": true, "return": true, "constructor": false,
}

// chunkSource emits one chunk per top-level function, class, method,
// and variable-statement declaration. Unrecognized languages yield
// nothing, which the caller turns into the whole-file fallback.
func chunkSource(lines []string, language string) []types.Chunk {
	switch language {
	case "python":
		return chunkIndented(lines)
	default:
		return chunkBraced(lines)
	}
}

// declPattern pairs a regex with the chunk metadata it produces.
type declPattern struct {
	re     *regexp.Regexp
	braced bool // span found by brace matching; otherwise statement span
}

var bracedDecls = []declPattern{
	{tsFunctionPattern, true},
	{tsClassPattern, true},
	{tsInterfacePattern, true},
	{tsEnumPattern, true},
	{goFuncPattern, true},
	{goTypePattern, true},
	{tsTypePattern, false},
	{tsVarPattern, false},
	{goVarPattern, false},
}

// chunkBraced handles brace-delimited languages.
func chunkBraced(lines []string) []types.Chunk {
	var chunks []types.Chunk

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if line == "" || line[0] == ' ' || line[0] == '\t' {
			continue
		}

		for _, decl := range bracedDecls {
			m := decl.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := m[1]
			var end int
			if decl.braced && strings.ContainsAny(sliceLines(lines, i+1, min(i+3, len(lines))), "{") {
				end = braceSpanEnd(lines, i+1)
			} else {
				end = statementEnd(lines, i+1)
			}

			chunk := types.Chunk{
				Text:      sliceLines(lines, i+1, end),
				Kind:      types.ChunkDeclaration,
				Title:     name,
				Symbol:    name,
				StartLine: i + 1,
				EndLine:   end,
			}
			chunks = append(chunks, chunk)

			if decl.re == tsClassPattern {
				chunks = append(chunks, chunkClassMethods(lines, name, i+1, end)...)
			}

			i = end - 1
			break
		}
	}

	return chunks
}

// chunkClassMethods emits a chunk per method inside a class body span.
func chunkClassMethods(lines []string, className string, classStart, classEnd int) []types.Chunk {
	var chunks []types.Chunk
	for i := classStart; i < classEnd-1; i++ {
		m := tsMethodPattern.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		name := m[1]
		if skip, known := methodKeywords[name]; known && skip {
			continue
		}
		end := braceSpanEnd(lines, i+1)
		if end > classEnd {
			end = classEnd
		}
		chunks = append(chunks, types.Chunk{
			Text:      sliceLines(lines, i+1, end),
			Kind:      types.ChunkDeclaration,
			Title:     className + "." + name,
			Symbol:    className + "." + name,
			StartLine: i + 1,
			EndLine:   end,
		})
		i = end - 1
	}
	return chunks
}

// chunkIndented handles indentation-delimited languages: a top-level
// def/class spans until the next column-zero statement.
func chunkIndented(lines []string) []types.Chunk {
	var chunks []types.Chunk

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if line == "" || line[0] == ' ' || line[0] == '\t' {
			continue
		}

		var name string
		if m := pyDefPattern.FindStringSubmatch(line); m != nil {
			name = m[1]
		} else if m := pyClassPattern.FindStringSubmatch(line); m != nil {
			name = m[1]
		} else {
			continue
		}

		end := len(lines)
		for j := i + 1; j < len(lines); j++ {
			next := lines[j]
			if next != "" && next[0] != ' ' && next[0] != '\t' && next[0] != '#' {
				end = j
				break
			}
		}
		start, end := trimBlankEdges(lines, i+1, end)

		chunks = append(chunks, types.Chunk{
			Text:      sliceLines(lines, start, end),
			Kind:      types.ChunkDeclaration,
			Title:     name,
			Symbol:    name,
			StartLine: start,
			EndLine:   end,
		})
		i = end - 1
	}

	return chunks
}

// statementEnd finds the last line of a brace-less statement: the
// first line ending in a semicolon, or the declaration line itself.
func statementEnd(lines []string, from int) int {
	for i := from - 1; i < len(lines) && i < from+20; i++ {
		trimmed := strings.TrimRight(lines[i], " \t")
		if strings.HasSuffix(trimmed, ";") {
			return i + 1
		}
		if strings.HasSuffix(trimmed, "{") {
			return braceSpanEnd(lines, from)
		}
	}
	return from
}
