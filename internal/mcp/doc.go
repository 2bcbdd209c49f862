// Package mcp implements the Model Context Protocol (MCP) server for CodeQuarry.
//
// The server exposes four tools to AI coding assistants:
//   - index_repository: Index a repository (GitHub or a local directory)
//   - search_code: Hybrid search over everything indexed
//   - ask_question: Answer a question with verified citations
//   - get_status: Index statistics and health
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport. The server
// reads requests from stdin and writes responses to stdout, so all
// logging goes to stderr.
//
// # Tool: index_repository
//
//	Request:
//	{
//	  "name": "index_repository",
//	  "arguments": {
//	    "repo": "acme/payments",
//	    "revision": "main"
//	  }
//	}
//
//	Response:
//	{
//	  "indexed": true,
//	  "repo": "acme/payments",
//	  "files_indexed": 214,
//	  "files_skipped": 31,
//	  "chunks_created": 1887,
//	  "duration_ms": 41250
//	}
//
// Pass "path" with an absolute local directory to index from disk
// instead of the GitHub API.
//
// # Tool: search_code
//
//	Request:
//	{
//	  "name": "search_code",
//	  "arguments": {
//	    "query": "where are refunds created",
//	    "top_k": 10,
//	    "repos": ["acme/payments"]
//	  }
//	}
//
// Each result carries a score, the contributing signal (vector,
// lexical, or a fact pin), a preview, and a permalink into the
// indexed revision.
//
// # Tool: ask_question
//
//	Request:
//	{
//	  "name": "ask_question",
//	  "arguments": {
//	    "question": "How does the refund flow validate amounts?",
//	    "hints": ["acme/payments:src/refunds/refunds.service.ts"]
//	  }
//	}
//
// The response contains the synthesized answer plus citations whose
// links are guaranteed to point at sources that were actually
// retrieved. When retrieval finds nothing usable, the answer text is
// a fixed no-information sentence and "grounded" is false.
//
// # Error Handling
//
// Errors are standard JSON-RPC error responses:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (storage, provider, network)
//   - -32001: A sync is already in progress
//   - -32002: Repository identifier invalid or host unreachable
//   - -32003: Empty query or question
//   - -32004: ask_question called without an LLM API key configured
package mcp
