package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/codequarry/codequarry/pkg/types"
)

// Pin searches match query tokens against structured facts by
// case-insensitive substring. They return document-joined rows so the
// retriever can cite a fact without a second lookup.

// searchEndpointPins matches tokens against route paths, HTTP methods,
// and handler names.
func searchEndpointPins(ctx context.Context, db *sql.DB, tokens []string, limit int, filter *types.RepoFilter) ([]PinResult, error) {
	conditions, args := likeConditions(tokens,
		"lower(e.path)", "lower(e.method)", "lower(e.handler)")
	if conditions == "" {
		return []PinResult{}, nil
	}

	query := `
		SELECT d.id, d.repo, d.path, d.revision,
		       e.method || ' ' || e.path, e.handler, e.start_line, e.end_line
		FROM endpoints e
		INNER JOIN documents d ON e.document_id = d.id
		WHERE (` + conditions + `)`
	query, args = applyRepoFilter(query, args, filter)
	query += " LIMIT ?"
	args = append(args, limit)

	return collectPins(ctx, db, query, args)
}

// searchSymbolPins matches tokens against declared symbol names.
func searchSymbolPins(ctx context.Context, db *sql.DB, tokens []string, limit int, filter *types.RepoFilter) ([]PinResult, error) {
	conditions, args := likeConditions(tokens, "lower(s.name)")
	if conditions == "" {
		return []PinResult{}, nil
	}

	query := `
		SELECT d.id, d.repo, d.path, d.revision,
		       s.name, s.name, s.start_line, s.end_line
		FROM symbols s
		INNER JOIN documents d ON s.document_id = d.id
		WHERE (` + conditions + `)`
	query, args = applyRepoFilter(query, args, filter)
	query += " LIMIT ?"
	args = append(args, limit)

	return collectPins(ctx, db, query, args)
}

// searchEdgePins matches tokens against edge target values (topics,
// queues, URLs).
func searchEdgePins(ctx context.Context, db *sql.DB, tokens []string, limit int, filter *types.RepoFilter) ([]PinResult, error) {
	conditions, args := likeConditions(tokens, "lower(g.target_value)")
	if conditions == "" {
		return []PinResult{}, nil
	}

	query := `
		SELECT d.id, d.repo, d.path, d.revision,
		       g.target_value, '', g.line, g.line
		FROM edges g
		INNER JOIN documents d ON g.document_id = d.id
		WHERE (` + conditions + `)`
	query, args = applyRepoFilter(query, args, filter)
	query += " LIMIT ?"
	args = append(args, limit)

	return collectPins(ctx, db, query, args)
}

// likeConditions builds an OR of substring matches: every token is
// tried against every column. Tokens shorter than 3 characters are
// skipped to keep pins from firing on articles and glue words.
func likeConditions(tokens []string, columns ...string) (string, []interface{}) {
	var conds []string
	var args []interface{}
	for _, token := range tokens {
		token = strings.ToLower(strings.TrimSpace(token))
		if len(token) < 3 {
			continue
		}
		for _, col := range columns {
			conds = append(conds, col+" LIKE ?")
			args = append(args, "%"+escapeLike(token)+"%")
		}
	}
	return strings.Join(conds, " OR "), args
}

// escapeLike escapes LIKE wildcards in a token
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func collectPins(ctx context.Context, db *sql.DB, query string, args []interface{}) ([]PinResult, error) {
	// LIKE escapes use backslash
	query = strings.Replace(query, "LIKE ?", "LIKE ? ESCAPE '\\'", -1)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute pin search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]PinResult, 0)
	for rows.Next() {
		var pin PinResult
		if err := rows.Scan(
			&pin.DocumentID, &pin.Repo, &pin.Path, &pin.Revision,
			&pin.Label, &pin.Symbol, &pin.StartLine, &pin.EndLine,
		); err != nil {
			return nil, err
		}
		results = append(results, pin)
	}
	return results, rows.Err()
}
