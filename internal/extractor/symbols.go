package extractor

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/codequarry/codequarry/pkg/types"
)

// Declaration shapes per language family. These deliberately match
// only top-of-line declarations; nested helpers and locals are out of
// scope for the fact index.
var (
	tsFunctionDecl  = regexp.MustCompile(`^(export\s+)?(?:default\s+)?(async\s+)?function\s*\*?\s*(\w+)`)
	tsClassDecl     = regexp.MustCompile(`^(export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+(\w+)`)
	tsInterfaceDecl = regexp.MustCompile(`^(export\s+)?interface\s+(\w+)`)
	tsEnumDecl      = regexp.MustCompile(`^(export\s+)?(?:const\s+)?enum\s+(\w+)`)
	tsTypeDecl      = regexp.MustCompile(`^(export\s+)?type\s+(\w+)\s*=`)
	tsArrowDecl     = regexp.MustCompile(`^(export\s+)?(?:const|let)\s+(\w+)\s*=\s*(async\s+)?(?:\([^)]*\)|\w+)\s*(?::[^=]+)?=>`)
	tsMethodDecl    = regexp.MustCompile(`^\s+(?:(public|private|protected)\s+)?(?:static\s+)?(?:readonly\s+)?(async\s+)?(\w+)\s*\([^;]*$`)

	goFuncDecl = regexp.MustCompile(`^func\s+(?:\(\s*\w+\s+\*?(\w+)\s*\)\s+)?(\w+)\s*\(`)
	goTypeDecl = regexp.MustCompile(`^type\s+(\w+)\s+(struct|interface|\S+)`)

	pyDefDecl   = regexp.MustCompile(`^(\s*)(async\s+)?def\s+(\w+)`)
	pyClassDecl = regexp.MustCompile(`^class\s+(\w+)`)
)

// tsMethodSkip filters control-flow keywords that look like method
// signatures inside a class body.
var tsMethodSkip = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true,
	"catch": true, "return": true, "constructor": false,
}

func extractSymbols(lines []string, language string) []types.Symbol {
	switch language {
	case "typescript", "javascript":
		return tsSymbols(lines)
	case "go":
		return goSymbols(lines)
	case "python":
		return pySymbols(lines)
	default:
		return nil
	}
}

func tsSymbols(lines []string) []types.Symbol {
	var syms []types.Symbol

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if m := tsFunctionDecl.FindStringSubmatch(line); m != nil {
			end := braceSpanEnd(lines, i+1)
			syms = append(syms, types.Symbol{
				Kind: types.KindFunction, Name: m[3],
				Signature: signatureOf(line),
				Exported:  m[1] != "", Async: m[2] != "",
				StartLine: i + 1, EndLine: end,
			})
			i = end - 1
			continue
		}
		if m := tsClassDecl.FindStringSubmatch(line); m != nil {
			end := braceSpanEnd(lines, i+1)
			syms = append(syms, types.Symbol{
				Kind: types.KindClass, Name: m[2],
				Signature: signatureOf(line),
				Exported:  m[1] != "",
				StartLine: i + 1, EndLine: end,
			})
			syms = append(syms, tsMethods(lines, m[2], i+1, end)...)
			i = end - 1
			continue
		}
		if m := tsInterfaceDecl.FindStringSubmatch(line); m != nil {
			end := braceSpanEnd(lines, i+1)
			syms = append(syms, types.Symbol{
				Kind: types.KindInterface, Name: m[2],
				Signature: signatureOf(line),
				Exported:  m[1] != "",
				StartLine: i + 1, EndLine: end,
			})
			i = end - 1
			continue
		}
		if m := tsEnumDecl.FindStringSubmatch(line); m != nil {
			end := braceSpanEnd(lines, i+1)
			syms = append(syms, types.Symbol{
				Kind: types.KindEnum, Name: m[2],
				Signature: signatureOf(line),
				Exported:  m[1] != "",
				StartLine: i + 1, EndLine: end,
			})
			i = end - 1
			continue
		}
		if m := tsTypeDecl.FindStringSubmatch(line); m != nil {
			syms = append(syms, types.Symbol{
				Kind: types.KindType, Name: m[2],
				Signature: signatureOf(line),
				Exported:  m[1] != "",
				StartLine: i + 1, EndLine: i + 1,
			})
			continue
		}
		if m := tsArrowDecl.FindStringSubmatch(line); m != nil {
			end := braceSpanEnd(lines, i+1)
			syms = append(syms, types.Symbol{
				Kind: types.KindFunction, Name: m[2],
				Signature: signatureOf(line),
				Exported:  m[1] != "", Async: m[3] != "",
				StartLine: i + 1, EndLine: end,
			})
			i = end - 1
		}
	}

	return syms
}

// tsMethods scans a class body span for method declarations. Private
// and protected methods are recorded as unexported.
func tsMethods(lines []string, className string, classStart, classEnd int) []types.Symbol {
	var syms []types.Symbol
	for i := classStart; i < classEnd-1; i++ {
		line := lines[i]
		if strings.HasPrefix(strings.TrimSpace(line), "@") {
			continue
		}
		m := tsMethodDecl.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := m[3]
		if skip, known := tsMethodSkip[name]; known && skip {
			continue
		}
		end := braceSpanEnd(lines, i+1)
		if end > classEnd {
			end = classEnd
		}
		syms = append(syms, types.Symbol{
			Kind: types.KindMethod, Name: className + "." + name,
			Signature: signatureOf(line),
			Exported:  m[1] != "private" && m[1] != "protected",
			Async:     m[2] != "",
			StartLine: i + 1, EndLine: end,
		})
		i = end - 1
	}
	return syms
}

func goSymbols(lines []string) []types.Symbol {
	var syms []types.Symbol

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if m := goFuncDecl.FindStringSubmatch(line); m != nil {
			end := braceSpanEnd(lines, i+1)
			name := m[2]
			kind := types.KindFunction
			if m[1] != "" {
				kind = types.KindMethod
				name = m[1] + "." + m[2]
			}
			syms = append(syms, types.Symbol{
				Kind: kind, Name: name,
				Signature: signatureOf(line),
				Exported:  upperInitial(m[2]),
				StartLine: i + 1, EndLine: end,
			})
			i = end - 1
			continue
		}
		if m := goTypeDecl.FindStringSubmatch(line); m != nil {
			end := braceSpanEnd(lines, i+1)
			kind := types.KindType
			if m[2] == "interface" {
				kind = types.KindInterface
			}
			syms = append(syms, types.Symbol{
				Kind: kind, Name: m[1],
				Signature: signatureOf(line),
				Exported:  upperInitial(m[1]),
				StartLine: i + 1, EndLine: end,
			})
			i = end - 1
		}
	}

	return syms
}

func pySymbols(lines []string) []types.Symbol {
	var syms []types.Symbol
	currentClass := ""
	classEnd := 0

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if m := pyClassDecl.FindStringSubmatch(line); m != nil {
			currentClass = m[1]
			classEnd = indentSpanEnd(lines, i+1)
			syms = append(syms, types.Symbol{
				Kind: types.KindClass, Name: m[1],
				Signature: signatureOf(line),
				Exported:  !strings.HasPrefix(m[1], "_"),
				StartLine: i + 1, EndLine: classEnd,
			})
			continue
		}

		m := pyDefDecl.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		indented := m[1] != ""
		name := m[3]
		kind := types.KindFunction
		if indented && currentClass != "" && i+1 <= classEnd {
			kind = types.KindMethod
			name = currentClass + "." + name
		} else if indented {
			// Nested function, not a fact.
			continue
		}
		end := indentSpanEnd(lines, i+1)
		if kind == types.KindMethod {
			end = methodIndentEnd(lines, i+1, len(m[1]))
			if end > classEnd {
				end = classEnd
			}
		}
		syms = append(syms, types.Symbol{
			Kind: kind, Name: name,
			Signature: signatureOf(line),
			Exported:  !strings.HasPrefix(m[3], "_"),
			Async:     m[2] != "",
			StartLine: i + 1, EndLine: end,
		})
	}

	return syms
}

// methodIndentEnd finds the last line of an indented def: the line
// before the next non-blank line indented at or below the def itself.
func methodIndentEnd(lines []string, declLine, declIndent int) int {
	end := declLine
	for i := declLine; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		if indentWidth(line) <= declIndent {
			break
		}
		end = i + 1
	}
	return end
}

func indentWidth(line string) int {
	n := 0
	for _, r := range line {
		if r != ' ' && r != '\t' {
			break
		}
		n++
	}
	return n
}

func upperInitial(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}
