package extractor

import (
	"regexp"
	"strings"

	"github.com/codequarry/codequarry/pkg/types"
)

// Call shapes recognized as cross-component edges. Matching is purely
// textual; every edge carries Method "heuristic" and a confidence
// reflecting how specific its pattern is.
var (
	publishPattern   = regexp.MustCompile(`\.\s*(?:publish|emit|produce)\s*\(\s*['"]([\w.\-/:]+)['"]`)
	queueSendPattern = regexp.MustCompile(`\.\s*sendToQueue\s*\(\s*['"]([\w.\-/:]+)['"]`)
	consumePattern   = regexp.MustCompile(`\.\s*(?:subscribe|consume)\s*\(\s*['"]([\w.\-/:]+)['"]`)
	consumeDecorator = regexp.MustCompile(`@(?:EventPattern|MessagePattern|SqsMessageHandler|RabbitSubscribe)\s*\(\s*['"]([\w.\-/:]+)['"]`)

	verbCallPattern  = regexp.MustCompile(`(?:axios|got|requests|http|client)\s*\.\s*(get|post|put|delete|patch|head)\s*\(\s*['"](https?://[^'"]+)['"]`)
	fetchCallPattern = regexp.MustCompile(`\bfetch\s*\(\s*['"](https?://[^'"]+)['"]`)
	goHTTPPattern    = regexp.MustCompile(`http\.(Get|Post|Head|PostForm)\s*\(\s*"(https?://[^"]+)"`)
)

func extractEdges(lines []string) []types.Edge {
	var edges []types.Edge

	add := func(t types.EdgeType, kind, value string, line int, confidence float64) {
		edges = append(edges, types.Edge{
			Type:        t,
			TargetKind:  kind,
			TargetValue: value,
			Line:        line,
			Method:      types.ExtractionHeuristic,
			Confidence:  confidence,
		})
	}

	for i, line := range lines {
		n := i + 1

		if m := queueSendPattern.FindStringSubmatch(line); m != nil {
			add(types.EdgePublish, "queue", m[1], n, 0.8)
		} else if m := publishPattern.FindStringSubmatch(line); m != nil {
			add(types.EdgePublish, "topic", m[1], n, 0.7)
		}

		if m := consumeDecorator.FindStringSubmatch(line); m != nil {
			add(types.EdgeConsume, "topic", m[1], n, 0.8)
		} else if m := consumePattern.FindStringSubmatch(line); m != nil {
			add(types.EdgeConsume, "topic", m[1], n, 0.7)
		}

		if m := verbCallPattern.FindStringSubmatch(line); m != nil {
			add(types.EdgeCall, "url", strings.ToUpper(m[1])+" "+m[2], n, 0.8)
		} else if m := goHTTPPattern.FindStringSubmatch(line); m != nil {
			verb := strings.ToUpper(strings.TrimSuffix(m[1], "Form"))
			add(types.EdgeCall, "url", verb+" "+m[2], n, 0.8)
		} else if m := fetchCallPattern.FindStringSubmatch(line); m != nil {
			add(types.EdgeCall, "url", m[1], n, 0.6)
		}
	}

	return edges
}
