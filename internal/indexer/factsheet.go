package indexer

import (
	"fmt"
	"strings"

	"github.com/codequarry/codequarry/pkg/types"
)

// buildFactsheets produces one short natural-language summary chunk
// per extracted endpoint and exported symbol. Factsheets are embedded
// like any other chunk and receive a relevance boost at query time,
// so a question phrased in prose can land on a route or declaration
// even when the code itself shares no vocabulary with it.
func buildFactsheets(path string, facts types.Facts, nextOrdinal int) []types.Chunk {
	var sheets []types.Chunk

	for _, ep := range facts.Endpoints {
		var b strings.Builder
		fmt.Fprintf(&b, "HTTP endpoint %s %s", ep.Method, ep.Path)
		if ep.Handler != "" {
			fmt.Fprintf(&b, " handled by %s", ep.Handler)
		}
		fmt.Fprintf(&b, " in %s.", path)
		if ep.Request != "" {
			fmt.Fprintf(&b, " Accepts %s.", ep.Request)
		}
		if ep.Response != "" {
			fmt.Fprintf(&b, " Returns %s.", ep.Response)
		}

		sheets = append(sheets, types.Chunk{
			Ordinal:   nextOrdinal,
			Text:      b.String(),
			Kind:      types.ChunkFactsheet,
			Title:     ep.Method + " " + ep.Path,
			Symbol:    ep.Handler,
			StartLine: ep.StartLine,
			EndLine:   ep.EndLine,
		})
		nextOrdinal++
	}

	for _, sym := range facts.Symbols {
		if !sym.Exported {
			continue
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Exported %s %s in %s.", sym.Kind, sym.Name, path)
		if sym.Signature != "" {
			fmt.Fprintf(&b, " Signature: %s", sym.Signature)
		}

		sheets = append(sheets, types.Chunk{
			Ordinal:   nextOrdinal,
			Text:      b.String(),
			Kind:      types.ChunkFactsheet,
			Title:     sym.Name,
			Symbol:    sym.Name,
			StartLine: sym.StartLine,
			EndLine:   sym.EndLine,
		})
		nextOrdinal++
	}

	for i := range sheets {
		sheets[i].ComputeContentHash()
	}
	return sheets
}
