package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codequarry/codequarry/internal/config"
	"github.com/codequarry/codequarry/internal/ladder"
	"github.com/codequarry/codequarry/pkg/types"
)

const controllerFixture = `import { Controller, Get, Post, Body, Param } from '@nestjs/common';

@Controller('refunds')
export class RefundsController {
  constructor(private readonly refundsService: RefundsService) {}

  @Get(':id')
  findOne(@Param('id') id: string): Promise<Refund> {
    return this.refundsService.findOne(id);
  }

  @Post()
  create(@Body() dto: CreateRefundDto): Promise<Refund> {
    return this.refundsService.create(dto);
  }
}
`

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "index.db")
	cfg.Embedding.Provider = "local"

	srv, err := NewServer(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.store.Close() })

	return srv
}

// fixtureRoot writes a local tree holding one repository at
// acme/payments so the repo argument resolves inside the root.
func fixtureRoot(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	full := filepath.Join(root, "acme", "payments", "src", "refunds.controller.ts")
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(controllerFixture), 0o644))
	return root
}

func callRequest(args map[string]interface{}) mcpgo.CallToolRequest {
	req := mcpgo.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcpgo.CallToolResult) string {
	t.Helper()

	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcpgo.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func indexFixture(t *testing.T, srv *Server) {
	t.Helper()

	res, err := srv.handleIndexRepository(context.Background(), callRequest(map[string]interface{}{
		"repo": "acme/payments",
		"path": fixtureRoot(t),
	}))
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	require.Equal(t, true, out["indexed"])
	require.Equal(t, float64(1), out["files_indexed"])
}

func TestHandleIndexRepository_Local(t *testing.T) {
	srv := newTestServer(t)
	indexFixture(t, srv)

	res, err := srv.handleGetStatus(context.Background(), callRequest(nil))
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))

	stats := out["statistics"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["documents_count"])
	assert.Positive(t, stats["chunks_count"])
	assert.Equal(t, stats["chunks_count"], stats["embeddings_count"])

	health := out["health"].(map[string]interface{})
	assert.Equal(t, true, health["database_accessible"])
	assert.Equal(t, true, health["embeddings_available"])

	assert.Equal(t, false, out["answering_enabled"])
}

func TestHandleIndexRepository_RequiresRepo(t *testing.T) {
	srv := newTestServer(t)

	_, err := srv.handleIndexRepository(context.Background(), callRequest(map[string]interface{}{}))
	requireMCPCode(t, err, ErrorCodeInvalidParams)
}

func TestHandleIndexRepository_RejectsRelativePath(t *testing.T) {
	srv := newTestServer(t)

	_, err := srv.handleIndexRepository(context.Background(), callRequest(map[string]interface{}{
		"repo": "acme/payments",
		"path": "relative/dir",
	}))
	requireMCPCode(t, err, ErrorCodeInvalidParams)
}

func TestHandleIndexRepository_RejectsConcurrentSync(t *testing.T) {
	srv := newTestServer(t)

	require.True(t, srv.syncing.TryAcquire())
	defer srv.syncing.Release()

	_, err := srv.handleIndexRepository(context.Background(), callRequest(map[string]interface{}{
		"repo": "acme/payments",
		"path": fixtureRoot(t),
	}))
	requireMCPCode(t, err, ErrorCodeSyncInProgress)
}

func TestHandleSearchCode_ReturnsResults(t *testing.T) {
	srv := newTestServer(t)
	indexFixture(t, srv)

	res, err := srv.handleSearchCode(context.Background(), callRequest(map[string]interface{}{
		"query": "RefundsController create refund",
		"top_k": float64(5),
	}))
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	require.Positive(t, out["count"])

	results := out["results"].([]interface{})
	first := results[0].(map[string]interface{})
	assert.Equal(t, "acme/payments", first["repo"])
	assert.Equal(t, "src/refunds.controller.ts", first["path"])
	assert.Contains(t, first["permalink"], "https://github.com/acme/payments/blob/")
	assert.NotEmpty(t, first["signal"])
}

func TestHandleSearchCode_RepoFilterExcludes(t *testing.T) {
	srv := newTestServer(t)
	indexFixture(t, srv)

	res, err := srv.handleSearchCode(context.Background(), callRequest(map[string]interface{}{
		"query": "refunds",
		"repos": []interface{}{"acme/other"},
	}))
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, float64(0), out["count"])
}

func TestHandleSearchCode_Validation(t *testing.T) {
	srv := newTestServer(t)

	_, err := srv.handleSearchCode(context.Background(), callRequest(map[string]interface{}{}))
	requireMCPCode(t, err, ErrorCodeEmptyQuery)

	_, err = srv.handleSearchCode(context.Background(), callRequest(map[string]interface{}{
		"query": "refunds",
		"top_k": float64(500),
	}))
	requireMCPCode(t, err, ErrorCodeInvalidParams)
}

func TestHandleAskQuestion_DisabledWithoutProvider(t *testing.T) {
	srv := newTestServer(t)

	_, err := srv.handleAskQuestion(context.Background(), callRequest(map[string]interface{}{
		"question": "how do refunds work?",
	}))
	requireMCPCode(t, err, ErrorCodeAnswerUnavailable)
}

type canned struct {
	answer *types.Answer
}

func (c *canned) Synthesize(ctx context.Context, question string, sources []types.Retrieved) (*types.Answer, error) {
	return c.answer, nil
}

func TestHandleAskQuestion_ReturnsAnswer(t *testing.T) {
	srv := newTestServer(t)
	indexFixture(t, srv)

	syn := &canned{answer: &types.Answer{
		Text: "Refunds are created by RefundsController.create [1].",
		Citations: []types.Citation{{
			Link:      "https://github.com/acme/payments/blob/local/src/refunds.controller.ts#L12-L15",
			Repo:      "acme/payments",
			Path:      "src/refunds.controller.ts",
			StartLine: 12,
			EndLine:   15,
		}},
	}}
	srv.ladder = ladder.New(srv.retriever, srv.store, syn, srv.cfg.Ladder, zerolog.Nop())

	res, err := srv.handleAskQuestion(context.Background(), callRequest(map[string]interface{}{
		"question": "where are refunds created?",
	}))
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Contains(t, out["answer"], "RefundsController.create")
	assert.Equal(t, true, out["grounded"])

	citations := out["citations"].([]interface{})
	require.Len(t, citations, 1)
	first := citations[0].(map[string]interface{})
	assert.Equal(t, "src/refunds.controller.ts", first["path"])
	assert.Equal(t, float64(12), first["start_line"])
}

func TestHandleAskQuestion_Validation(t *testing.T) {
	srv := newTestServer(t)
	srv.ladder = ladder.New(srv.retriever, srv.store, &canned{answer: types.NoInformation()}, srv.cfg.Ladder, zerolog.Nop())

	_, err := srv.handleAskQuestion(context.Background(), callRequest(map[string]interface{}{}))
	requireMCPCode(t, err, ErrorCodeEmptyQuery)

	_, err = srv.handleAskQuestion(context.Background(), callRequest(map[string]interface{}{
		"question": "refunds",
		"top_k":    float64(0),
	}))
	requireMCPCode(t, err, ErrorCodeInvalidParams)
}

func TestGetStringSlice(t *testing.T) {
	args := map[string]interface{}{
		"repos": []interface{}{"acme/payments", "", 7, "acme/ledger"},
	}
	assert.Equal(t, []string{"acme/payments", "acme/ledger"}, getStringSlice(args, "repos"))
	assert.Nil(t, getStringSlice(args, "missing"))
}

func requireMCPCode(t *testing.T, err error, code int) {
	t.Helper()

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, code, mcpErr.Code)
}
