package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/codequarry/codequarry/internal/storage"
	"github.com/codequarry/codequarry/pkg/types"
)

// findingsReport is the external static-analysis report format.
type findingsReport struct {
	Tool     string `json:"tool"`
	Findings []struct {
		Path      string `json:"path"`
		RuleID    string `json:"rule_id"`
		Severity  string `json:"severity"`
		Message   string `json:"message"`
		StartLine int    `json:"start_line"`
		EndLine   int    `json:"end_line"`
	} `json:"findings"`
}

// IngestFindings parses an external analysis report and attaches its
// findings to indexed documents of the given repo, matching by exact
// path first and path suffix second. Findings for paths with no
// matching document are dropped with a warning. Returns the number of
// findings attached.
func (idx *Indexer) IngestFindings(ctx context.Context, repo string, report []byte) (int, error) {
	var parsed findingsReport
	if err := json.Unmarshal(report, &parsed); err != nil {
		return 0, fmt.Errorf("parse findings report: %w", err)
	}
	if parsed.Tool == "" {
		return 0, fmt.Errorf("findings report missing tool name")
	}

	byDocument := make(map[int64][]types.Finding)
	attached := 0

	for _, f := range parsed.Findings {
		doc, err := idx.matchDocument(ctx, repo, f.Path)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				idx.logger.Warn().
					Str("repo", repo).
					Str("path", f.Path).
					Msg("finding path matched no document, dropping")
				continue
			}
			return attached, err
		}

		byDocument[doc.ID] = append(byDocument[doc.ID], types.Finding{
			DocumentID: doc.ID,
			Tool:       parsed.Tool,
			RuleID:     f.RuleID,
			Severity:   f.Severity,
			Message:    f.Message,
			StartLine:  f.StartLine,
			EndLine:    f.EndLine,
		})
		attached++
	}

	for docID, findings := range byDocument {
		if err := idx.store.InsertFindings(ctx, docID, findings); err != nil {
			return attached, fmt.Errorf("insert findings: %w", err)
		}
	}

	return attached, nil
}

// matchDocument resolves a report path to an indexed document. Exact
// match wins; otherwise the longest indexed path sharing a suffix
// with the report path is taken, which tolerates reports rooted at a
// different directory level than the index.
func (idx *Indexer) matchDocument(ctx context.Context, repo, path string) (*types.Document, error) {
	doc, err := idx.store.GetDocumentByPath(ctx, repo, path)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	docs, err := idx.store.ListDocuments(ctx, repo)
	if err != nil {
		return nil, err
	}

	var best *types.Document
	for _, candidate := range docs {
		if strings.HasSuffix(path, "/"+candidate.Path) || strings.HasSuffix(candidate.Path, "/"+path) {
			if best == nil || len(candidate.Path) > len(best.Path) {
				best = candidate
			}
		}
	}
	if best == nil {
		return nil, storage.ErrNotFound
	}
	return best, nil
}
