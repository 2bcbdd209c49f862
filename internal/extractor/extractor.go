// Package extractor derives structured facts from source text:
// declared symbols, controller endpoints, and cross-component edges.
// Extraction is textual and best-effort. It runs in full on every
// re-index of a document; there is no incremental mode.
package extractor

import (
	"strings"

	"github.com/codequarry/codequarry/internal/chunker"
	"github.com/codequarry/codequarry/pkg/types"
)

// maxSignatureLen caps stored signature strings.
const maxSignatureLen = 160

// Extractor scans file content for symbols, endpoints, and edges.
type Extractor struct{}

// New creates an extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract derives all facts from one document. Endpoints are only
// produced for files matching the controller naming convention; edges
// and symbols are attempted for every source file. Empty content
// yields empty facts.
func (e *Extractor) Extract(content []byte, path, language string) (types.Facts, error) {
	var facts types.Facts
	if len(content) == 0 {
		return facts, nil
	}

	lines := strings.Split(string(content), "\n")
	lang := chunker.DetectLanguage(path, language)

	facts.Symbols = extractSymbols(lines, lang)
	if chunker.DetectCategory(path, language) == chunker.CategoryController {
		facts.Endpoints = extractEndpoints(lines)
	}
	facts.Edges = extractEdges(lines)

	return facts, nil
}

// signatureOf trims and truncates a declaration line for storage.
func signatureOf(line string) string {
	sig := strings.TrimSpace(line)
	if len(sig) > maxSignatureLen {
		sig = sig[:maxSignatureLen]
	}
	return sig
}

// braceSpanEnd returns the 1-based last line of the brace-balanced
// block starting at declLine, or declLine itself when no block opens
// within a few lines.
func braceSpanEnd(lines []string, declLine int) int {
	depth := 0
	opened := false
	for i := declLine - 1; i < len(lines); i++ {
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
		if !opened && i > declLine+3 {
			return declLine
		}
	}
	return len(lines)
}

// indentSpanEnd returns the last line of an indentation-delimited
// block: the line before the next non-blank line at column zero.
func indentSpanEnd(lines []string, declLine int) int {
	end := declLine
	for i := declLine; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			break
		}
		end = i + 1
	}
	return end
}
