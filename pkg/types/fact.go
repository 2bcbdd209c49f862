package types

import "errors"

// SymbolKind classifies an extracted symbol.
type SymbolKind string

const (
	KindFunction  SymbolKind = "function"
	KindMethod    SymbolKind = "method"
	KindClass     SymbolKind = "class"
	KindInterface SymbolKind = "interface"
	KindType      SymbolKind = "type"
	KindEnum      SymbolKind = "enum"
)

// Symbol is a structurally extracted declaration from a document.
// Symbols are cleared and regenerated whenever the owning document is
// re-indexed.
type Symbol struct {
	ID         int64
	DocumentID int64
	Kind       SymbolKind
	Name       string
	Signature  string // best-effort, truncated
	Exported   bool
	Async      bool
	StartLine  int
	EndLine    int
}

// ValidateKind checks the symbol kind against the known set.
func (s *Symbol) ValidateKind() error {
	switch s.Kind {
	case KindFunction, KindMethod, KindClass, KindInterface, KindType, KindEnum:
		return nil
	default:
		return errors.New("invalid symbol kind")
	}
}

// Validate performs comprehensive validation of the symbol.
func (s *Symbol) Validate() error {
	if s.Name == "" {
		return errors.New("symbol name is required")
	}
	if err := s.ValidateKind(); err != nil {
		return err
	}
	if s.StartLine <= 0 || s.EndLine < s.StartLine {
		return errors.New("invalid symbol line span")
	}
	return nil
}

// Endpoint is an API route derived from a controller file by combining
// the class-level base path with a per-method sub path.
type Endpoint struct {
	ID         int64
	DocumentID int64
	Protocol   string // "http"
	Method     string // upper-case HTTP verb
	Path       string // normalized full route path
	Handler    string // Controller.method form
	Request    string // best-effort request type label
	Response   string // best-effort response type label
	StartLine  int
	EndLine    int
}

// EdgeType classifies a cross-component relationship.
type EdgeType string

const (
	EdgePublish EdgeType = "publish"
	EdgeConsume EdgeType = "consume"
	EdgeCall    EdgeType = "call"
)

// ExtractionHeuristic marks facts found by textual pattern matching
// rather than semantic analysis.
const ExtractionHeuristic = "heuristic"

// Edge records a cross-component relationship discovered by static
// pattern matching. Method is always "heuristic" for edges produced by
// the extractor; confidence reflects how specific the matched pattern
// was.
type Edge struct {
	ID          int64
	DocumentID  int64
	Type        EdgeType
	TargetKind  string // "topic", "queue", or "url"
	TargetValue string
	Line        int
	Method      string
	Confidence  float64
}

// Validate checks the edge fields.
func (e *Edge) Validate() error {
	switch e.Type {
	case EdgePublish, EdgeConsume, EdgeCall:
	default:
		return errors.New("invalid edge type")
	}
	if e.TargetValue == "" {
		return errors.New("edge target value is required")
	}
	if e.Line <= 0 {
		return errors.New("edge line must be positive")
	}
	return nil
}

// Finding is an ingested external static-analysis result, linked to a
// document by best-effort path match.
type Finding struct {
	ID         int64
	DocumentID int64
	Tool       string
	RuleID     string
	Severity   string
	Message    string
	StartLine  int
	EndLine    int
}

// Facts bundles everything the extractor derives from one document.
type Facts struct {
	Symbols   []Symbol
	Endpoints []Endpoint
	Edges     []Edge
}

// Empty reports whether extraction produced nothing.
func (f *Facts) Empty() bool {
	return len(f.Symbols) == 0 && len(f.Endpoints) == 0 && len(f.Edges) == 0
}
