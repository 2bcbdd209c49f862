package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/codequarry/codequarry/internal/answer"
	"github.com/codequarry/codequarry/internal/config"
	"github.com/codequarry/codequarry/internal/embedder"
	"github.com/codequarry/codequarry/internal/indexer"
	"github.com/codequarry/codequarry/internal/ladder"
	"github.com/codequarry/codequarry/internal/llm"
	"github.com/codequarry/codequarry/internal/retriever"
	"github.com/codequarry/codequarry/internal/sourcehost"
	"github.com/codequarry/codequarry/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "codequarry"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies.
// The host used for indexing is chosen per call (GitHub by default,
// a local directory when the request carries a path), so the server
// holds the shared pieces and a single sync lock instead of one
// pre-built indexer.
type Server struct {
	mcp       *server.MCPServer
	cfg       *config.Config
	store     storage.Store
	embedder  embedder.Embedder
	retriever *retriever.Retriever
	ladder    *ladder.Ladder
	logger    zerolog.Logger
	syncing   indexer.SyncLock
}

// NewServer wires the full pipeline from configuration. Answering is
// optional: without an LLM API key the ask_question tool reports that
// it is unavailable while indexing and search keep working.
func NewServer(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	dbPath, err := expandPath(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initialize storage: %w", err)
	}

	emb, err := embedder.New(embedder.Config{
		Provider:  cfg.Embedding.Provider,
		APIKey:    cfg.Embedding.APIKey,
		BaseURL:   cfg.Embedding.BaseURL,
		Model:     cfg.Embedding.Model,
		CacheSize: cfg.Embedding.CacheSize,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("initialize embedder: %w", err)
	}

	ret := retriever.New(store, emb, cfg.Weights, logger)

	s := &Server{
		cfg:       cfg,
		store:     store,
		embedder:  emb,
		retriever: ret,
		logger:    logger,
	}

	if cfg.LLM.APIKey != "" {
		provider, err := llm.NewOpenAIProvider(llm.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		})
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("initialize llm provider: %w", err)
		}
		syn := answer.New(provider, store, sourcehost.GitHubBaseURL, logger)
		s.ladder = ladder.New(ret, store, syn, cfg.Ladder, logger)
	} else {
		logger.Warn().Msg("no LLM API key configured, ask_question disabled")
	}

	s.mcp = server.NewMCPServer(ServerName, ServerVersion)
	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(indexRepositoryTool(), s.handleIndexRepository)
	s.mcp.AddTool(searchCodeTool(), s.handleSearchCode)
	s.mcp.AddTool(askQuestionTool(), s.handleAskQuestion)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}

// hostFor picks the source host for one indexing request.
func (s *Server) hostFor(ctx context.Context, localPath string) (sourcehost.Host, error) {
	if localPath != "" {
		return sourcehost.NewLocalHost(localPath)
	}
	return sourcehost.NewGitHubHost(ctx, s.cfg.GitHub.Token), nil
}

// expandPath resolves a leading ~/ against the user home directory.
func expandPath(path string) (string, error) {
	if len(path) < 2 || path[:2] != "~/" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[2:]), nil
}
