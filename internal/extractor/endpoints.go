package extractor

import (
	"regexp"
	"strings"

	"github.com/codequarry/codequarry/internal/chunker"
	"github.com/codequarry/codequarry/pkg/types"
)

// Controller decorator shapes, mirroring the chunker's route
// detection so endpoints and route chunks agree on paths.
var (
	epControllerDec = regexp.MustCompile(`@(?:Controller|RequestMapping)\s*\(\s*(?:['"]([^'"]*)['"])?\s*\)`)
	epVerbDec       = regexp.MustCompile(`^\s*@(Get|Post|Put|Delete|Patch|Options|Head|All)\s*\(\s*(?:['"]([^'"]*)['"])?\s*\)`)
	epClassDecl     = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+(\w+)`)
	epMethodSig     = regexp.MustCompile(`^\s*(?:public\s+|private\s+|protected\s+|static\s+)*(?:async\s+)?(\w+)\s*[(<]`)

	bodyParamPattern  = regexp.MustCompile(`@Body\s*\(\s*[^)]*\)\s*\w+\s*:\s*([\w.]+)`)
	returnTypePattern = regexp.MustCompile(`\)\s*:\s*(?:Promise\s*<\s*)?([\w.\[\]]+)`)
)

// extractEndpoints walks a controller file and produces one endpoint
// per verb-decorated method, combining the class-level base path with
// the method-level sub path. Request and response labels are read from
// the body parameter type and the declared return type when present.
func extractEndpoints(lines []string) []types.Endpoint {
	basePath := ""
	className := ""
	var endpoints []types.Endpoint

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if m := epControllerDec.FindStringSubmatch(line); m != nil {
			basePath = m[1]
			continue
		}
		if m := epClassDecl.FindStringSubmatch(line); m != nil {
			className = m[1]
			continue
		}

		m := epVerbDec.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		name, sigLine := routeMethodSignature(lines, i+1)
		if name == "" {
			continue
		}
		end := braceSpanEnd(lines, sigLine)

		handler := name
		if className != "" {
			handler = className + "." + name
		}

		signature := collectSignature(lines, sigLine, end)
		ep := types.Endpoint{
			Protocol:  "http",
			Method:    strings.ToUpper(m[1]),
			Path:      chunker.JoinRoute(basePath, m[2]),
			Handler:   handler,
			StartLine: i + 1,
			EndLine:   end,
		}
		if bm := bodyParamPattern.FindStringSubmatch(signature); bm != nil {
			ep.Request = bm[1]
		}
		if rm := returnTypePattern.FindStringSubmatch(signature); rm != nil {
			ep.Response = rm[1]
		}

		endpoints = append(endpoints, ep)
		i = end - 1
	}

	return endpoints
}

// routeMethodSignature scans past any remaining decorators for the
// decorated method name and its 1-based signature line.
func routeMethodSignature(lines []string, from int) (string, int) {
	for i := from; i < len(lines) && i < from+8; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "@") {
			continue
		}
		if m := epMethodSig.FindStringSubmatch(lines[i]); m != nil {
			return m[1], i + 1
		}
		return "", 0
	}
	return "", 0
}

// collectSignature joins the signature lines of a method up to its
// opening brace so multi-line parameter lists can be inspected.
func collectSignature(lines []string, sigLine, end int) string {
	last := sigLine
	for i := sigLine - 1; i < end && i < len(lines); i++ {
		last = i + 1
		if strings.Contains(lines[i], "{") {
			break
		}
	}
	joined := strings.Join(lines[sigLine-1:last], " ")
	if len(joined) > 2*maxSignatureLen {
		joined = joined[:2*maxSignatureLen]
	}
	return joined
}
