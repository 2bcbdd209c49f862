package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codequarry/codequarry/internal/indexer"
	"github.com/codequarry/codequarry/internal/sourcehost"
	"github.com/codequarry/codequarry/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams     = -32602 // Invalid method parameters
	ErrorCodeInternalError     = -32603 // Internal JSON-RPC error
	ErrorCodeSyncInProgress    = -32001 // Another sync is already running
	ErrorCodeInvalidRepo       = -32002 // Repository identifier is malformed or unreachable
	ErrorCodeEmptyQuery        = -32003 // Query parameter is empty
	ErrorCodeAnswerUnavailable = -32004 // No LLM provider configured
)

// handleIndexRepository handles the index_repository tool invocation
func (s *Server) handleIndexRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	repo, ok := args["repo"].(string)
	if !ok || repo == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "repo parameter is required", map[string]interface{}{
			"param":  "repo",
			"reason": "missing or empty",
		})
	}

	revision := getStringDefault(args, "revision", "")
	localPath := getStringDefault(args, "path", "")
	if localPath != "" {
		if err := validateLocalPath(localPath); err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
				"param":  "path",
				"reason": err.Error(),
			})
		}
	}

	// One sync at a time across all hosts. The indexer carries its
	// own lock too, but a fresh indexer is built per request so the
	// guard has to live here.
	if !s.syncing.TryAcquire() {
		return nil, newMCPError(ErrorCodeSyncInProgress, "a sync is already in progress", nil)
	}
	defer s.syncing.Release()

	host, err := s.hostFor(ctx, localPath)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidRepo, "source host unavailable", map[string]interface{}{
			"error": err.Error(),
		})
	}

	idx := indexer.New(s.store, s.embedder, host, s.logger)
	stats, err := idx.SyncRepository(ctx, repo, revision, nil)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "sync failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed":        true,
		"repo":           repo,
		"sync_id":        stats.SyncID,
		"files_indexed":  stats.FilesIndexed,
		"files_skipped":  stats.FilesSkipped,
		"files_failed":   stats.FilesFailed,
		"files_removed":  stats.FilesRemoved,
		"chunks_created": stats.ChunksCreated,
		"duration_ms":    stats.Duration.Milliseconds(),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchCode handles the search_code tool invocation
func (s *Server) handleSearchCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	topK := getIntDefault(args, "top_k", 10)
	if topK < 1 || topK > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "top_k must be between 1 and 100", map[string]interface{}{
			"param": "top_k",
			"value": topK,
		})
	}

	filter := repoFilter(getStringSlice(args, "repos"))

	results, err := s.retriever.Search(ctx, query, topK, &filter)
	if err != nil {
		if errors.Is(err, types.ErrEmptyQuery) {
			return nil, newMCPError(ErrorCodeEmptyQuery, "query cannot be empty", nil)
		}
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	items := make([]map[string]interface{}, 0, len(results))
	for i := range results {
		r := &results[i]
		item := map[string]interface{}{
			"score":     r.Score,
			"repo":      r.Repo,
			"path":      r.Path,
			"signal":    string(r.Signal),
			"preview":   r.Preview,
			"permalink": r.Permalink(s.permalinkHost()),
		}
		if r.Symbol != "" {
			item["symbol"] = r.Symbol
		}
		if r.StartLine > 0 {
			item["start_line"] = r.StartLine
			item["end_line"] = r.EndLine
		}
		items = append(items, item)
	}

	response := map[string]interface{}{
		"query":   query,
		"count":   len(items),
		"results": items,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleAskQuestion handles the ask_question tool invocation
func (s *Server) handleAskQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.ladder == nil {
		return nil, newMCPError(ErrorCodeAnswerUnavailable, "answering is disabled: no LLM API key configured", nil)
	}

	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	question, ok := args["question"].(string)
	if !ok || question == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "question parameter is required and cannot be empty", map[string]interface{}{
			"param":  "question",
			"reason": "missing or empty",
		})
	}

	topK := getIntDefault(args, "top_k", 10)
	if topK < 1 || topK > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "top_k must be between 1 and 100", map[string]interface{}{
			"param": "top_k",
			"value": topK,
		})
	}

	filter := repoFilter(getStringSlice(args, "repos"))
	hints := getStringSlice(args, "hints")

	ans, err := s.ladder.AnswerQuery(ctx, question, topK, &filter, hints)
	if err != nil {
		if errors.Is(err, types.ErrEmptyQuery) {
			return nil, newMCPError(ErrorCodeEmptyQuery, "question cannot be empty", nil)
		}
		return nil, newMCPError(ErrorCodeInternalError, "answering failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	citations := make([]map[string]interface{}, 0, len(ans.Citations))
	for _, c := range ans.Citations {
		citation := map[string]interface{}{
			"link": c.Link,
			"repo": c.Repo,
			"path": c.Path,
		}
		if c.StartLine > 0 {
			citation["start_line"] = c.StartLine
			citation["end_line"] = c.EndLine
		}
		citations = append(citations, citation)
	}

	response := map[string]interface{}{
		"answer":    ans.Text,
		"grounded":  ans.Grounded(),
		"citations": citations,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.store.GetStatus(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"statistics": map[string]interface{}{
			"documents_count":  status.DocumentsCount,
			"chunks_count":     status.ChunksCount,
			"embeddings_count": status.EmbeddingsCount,
			"symbols_count":    status.SymbolsCount,
			"endpoints_count":  status.EndpointsCount,
			"edges_count":      status.EdgesCount,
			"findings_count":   status.FindingsCount,
			"index_size_mb":    fmt.Sprintf("%.2f", status.IndexSizeMB),
		},
		"health": map[string]interface{}{
			"database_accessible":  status.Health.DatabaseAccessible,
			"embeddings_available": status.Health.EmbeddingsAvailable,
			"fts_indexes_built":    status.Health.FTSIndexesBuilt,
		},
		"embedding": map[string]interface{}{
			"provider":  s.embedder.Provider(),
			"model":     s.embedder.Model(),
			"dimension": s.embedder.Dimension(),
		},
		"answering_enabled": s.ladder != nil,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// permalinkHost is the base URL used when rendering citation links.
func (s *Server) permalinkHost() string {
	return sourcehost.GitHubBaseURL
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validateLocalPath checks that a local indexing path is usable.
func validateLocalPath(path string) error {
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}
	return nil
}

// repoFilter builds the retrieval filter from a repos argument.
// An empty list means search everything.
func repoFilter(repos []string) types.RepoFilter {
	if len(repos) == 0 {
		return types.AllRepos()
	}
	return types.SomeRepos(repos...)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string array parameter, tolerating the
// []interface{} shape JSON decoding produces.
func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validation helpers

var (
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
)
