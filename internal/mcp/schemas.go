package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// indexRepositoryTool returns the tool definition for index_repository
func indexRepositoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_repository",
		Description: "Index a source repository to make it searchable and citable",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"repo": map[string]interface{}{
					"type":        "string",
					"description": "Repository in owner/name form (e.g. 'acme/payments')",
				},
				"revision": map[string]interface{}{
					"type":        "string",
					"description": "Branch, tag, or commit SHA to index (default: the repository's default branch)",
				},
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute local directory to index instead of fetching from GitHub",
				},
			},
			Required: []string{"repo"},
		},
	}
}

// searchCodeTool returns the tool definition for search_code
func searchCodeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_code",
		Description: "Search indexed repositories with natural language or keyword queries",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (natural language, symbol names, or routes like 'POST /users')",
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"repos": map[string]interface{}{
					"type":        "array",
					"description": "Restrict the search to these repositories (owner/name). Empty means all indexed repositories",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"query"},
		},
	}
}

// askQuestionTool returns the tool definition for ask_question
func askQuestionTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ask_question",
		Description: "Answer a question about indexed repositories with citations into the source",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The question to answer",
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Retrieval breadth for the first pass (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"repos": map[string]interface{}{
					"type":        "array",
					"description": "Restrict retrieval to these repositories (owner/name)",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"hints": map[string]interface{}{
					"type":        "array",
					"description": "File paths known to be relevant, as 'path' or 'owner/name:path'. Their content is always included",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"question"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query index statistics and health",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
