package chunker

import (
	"regexp"
	"strings"

	"github.com/codequarry/codequarry/pkg/types"
)

// Route decorator shapes, NestJS-style: @Controller('users') at class
// level, @Get(':id') at method level.
var (
	classDeclPattern      = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+(\w+)`)
	controllerDecNPattern = regexp.MustCompile(`@(?:Controller|RequestMapping)\s*\(\s*(?:['"]([^'"]*)['"])?\s*\)`)
	verbDecPattern        = regexp.MustCompile(`^\s*@(Get|Post|Put|Delete|Patch|Options|Head|All)\s*\(\s*(?:['"]([^'"]*)['"])?\s*\)`)
	methodSigPattern      = regexp.MustCompile(`^\s*(?:public\s+|private\s+|protected\s+|static\s+)*(?:async\s+)?(\w+)\s*[(<]`)
)

// chunkController emits one chunk per route-decorated method,
// concatenating the inferred base path with the per-method sub path.
func chunkController(lines []string) []types.Chunk {
	basePath := ""
	className := ""
	var chunks []types.Chunk

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if m := controllerDecNPattern.FindStringSubmatch(line); m != nil {
			basePath = m[1]
			continue
		}
		if m := classDeclPattern.FindStringSubmatch(line); m != nil {
			className = m[1]
			continue
		}

		m := verbDecPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		verb := strings.ToUpper(m[1])
		fullPath := JoinRoute(basePath, m[2])

		name, sigLine := findMethodSignature(lines, i+1)
		if name == "" {
			continue
		}
		end := braceSpanEnd(lines, sigLine)
		start, end := trimBlankEdges(lines, i+1, end)

		symbol := name
		if className != "" {
			symbol = className + "." + name
		}

		chunks = append(chunks, types.Chunk{
			Text:      sliceLines(lines, start, end),
			Kind:      types.ChunkRoute,
			Title:     verb + " " + fullPath,
			Symbol:    symbol,
			StartLine: start,
			EndLine:   end,
		})
		i = end - 1
	}

	return chunks
}

// findMethodSignature scans forward from a decorator for the decorated
// method, skipping any further decorator lines. Returns the method
// name and its 1-based signature line, or "" when none is found.
func findMethodSignature(lines []string, from int) (string, int) {
	for i := from; i < len(lines) && i < from+8; i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "@") {
			continue
		}
		if m := methodSigPattern.FindStringSubmatch(line); m != nil {
			return m[1], i + 1
		}
		return "", 0
	}
	return "", 0
}

// braceSpanEnd returns the 1-based last line of the brace-balanced
// block starting at sigLine. Falls back to the signature line when no
// opening brace is found nearby.
func braceSpanEnd(lines []string, sigLine int) int {
	depth := 0
	opened := false
	for i := sigLine - 1; i < len(lines); i++ {
		for _, r := range lines[i] {
			switch r {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
			}
		}
		if opened && depth <= 0 {
			return i + 1
		}
		if !opened && i > sigLine+3 {
			return sigLine
		}
	}
	return len(lines)
}

// JoinRoute concatenates a base route path with a per-method sub path,
// normalizing slashes. The result always has a leading slash.
func JoinRoute(base, sub string) string {
	base = strings.Trim(base, "/")
	sub = strings.Trim(sub, "/")
	switch {
	case base == "" && sub == "":
		return "/"
	case base == "":
		return "/" + sub
	case sub == "":
		return "/" + base
	default:
		return "/" + base + "/" + sub
	}
}
