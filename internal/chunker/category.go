package chunker

import (
	"path/filepath"
	"strings"
)

// ContentCategory routes a file to exactly one chunking strategy.
// The category is resolved once per file so dispatch is exhaustive
// rather than scattered string comparisons.
type ContentCategory int

const (
	// CategoryMarkup covers prose formats split at heading boundaries.
	CategoryMarkup ContentCategory = iota
	// CategoryController covers files matching the route-handler
	// naming convention, chunked per decorated method.
	CategoryController
	// CategorySource covers general source code, chunked per
	// top-level declaration.
	CategorySource
	// CategoryUnknown falls through to the whole-file chunk.
	CategoryUnknown
)

// String returns a human-readable category name.
func (c ContentCategory) String() string {
	switch c {
	case CategoryMarkup:
		return "markup"
	case CategoryController:
		return "controller"
	case CategorySource:
		return "source"
	default:
		return "unknown"
	}
}

var sourceExtensions = map[string]string{
	".ts":    "typescript",
	".tsx":   "typescript",
	".js":    "javascript",
	".jsx":   "javascript",
	".mjs":   "javascript",
	".go":    "go",
	".py":    "python",
	".java":  "java",
	".kt":    "kotlin",
	".rb":    "ruby",
	".rs":    "rust",
	".cs":    "csharp",
	".php":   "php",
	".scala": "scala",
}

// DetectCategory resolves the content category for a file path. The
// controller convention takes precedence over the generic source path
// so route handlers always get per-route chunks.
func DetectCategory(path, languageHint string) ContentCategory {
	base := strings.ToLower(filepath.Base(path))
	ext := filepath.Ext(base)

	switch ext {
	case ".md", ".markdown", ".mdx":
		return CategoryMarkup
	}

	if _, ok := sourceExtensions[ext]; !ok && languageHint == "" {
		return CategoryUnknown
	}

	if isControllerFile(base) {
		return CategoryController
	}
	return CategorySource
}

// DetectLanguage returns a best-effort language tag for a path,
// preferring the caller's hint.
func DetectLanguage(path, languageHint string) string {
	if languageHint != "" {
		return languageHint
	}
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := sourceExtensions[ext]; ok {
		return lang
	}
	switch ext {
	case ".md", ".markdown", ".mdx":
		return "markdown"
	}
	return ""
}

// isControllerFile matches the route-handler naming convention:
// users.controller.ts, OrdersController.java, payments_controller.rb.
func isControllerFile(base string) bool {
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.HasSuffix(name, ".controller") ||
		strings.HasSuffix(name, "controller") && len(name) > len("controller")
}
