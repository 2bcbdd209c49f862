package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/codequarry/codequarry/internal/answer"
	"github.com/codequarry/codequarry/internal/config"
	"github.com/codequarry/codequarry/internal/embedder"
	"github.com/codequarry/codequarry/internal/indexer"
	"github.com/codequarry/codequarry/internal/ladder"
	"github.com/codequarry/codequarry/internal/llm"
	"github.com/codequarry/codequarry/internal/mcp"
	"github.com/codequarry/codequarry/internal/retriever"
	"github.com/codequarry/codequarry/internal/sourcehost"
	"github.com/codequarry/codequarry/internal/storage"
	"github.com/codequarry/codequarry/pkg/types"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

const usage = `codequarry - index repositories, search them, answer questions with citations

Usage:
  codequarry serve    [-config file]                      run the MCP server on stdio
  codequarry index    [-config file] -repo owner/name [-revision ref] [-path dir] [-base ref]
  codequarry findings [-config file] -repo owner/name -file report.json
  codequarry search   [-config file] [-k n] [-repos a,b] query...
  codequarry ask      [-config file] [-k n] [-repos a,b] [-hints p1,p2] question...
  codequarry status   [-config file]
  codequarry version
`

func main() {
	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd = args[0]
		args = args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe(args)
	case "index":
		err = runIndex(args)
	case "findings":
		err = runFindings(args)
	case "search":
		err = runSearch(args)
	case "ask":
		err = runAsk(args)
	case "status":
		err = runStatus(args)
	case "version", "--version":
		fmt.Printf("codequarry %s (built %s)\n", version, buildTime)
		fmt.Printf("sqlite driver: %s, vector extension: %v\n", storage.DriverName, storage.VectorExtensionAvailable)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "codequarry %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

// loadConfig parses shared flags, loads configuration, and builds the
// logger. Stdout stays reserved for command output (and the MCP
// protocol), so all logging goes to stderr.
func loadConfig(fs *flag.FlagSet, args []string) (*config.Config, zerolog.Logger, error) {
	configPath := fs.String("config", "", "path to YAML config file")
	if err := fs.Parse(args); err != nil {
		return nil, zerolog.Nop(), err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("parse log level: %w", err)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	return cfg, logger, nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg, logger, err := loadConfig(fs, args)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Info().Str("version", version).Msg("MCP server ready, listening on stdio")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
		return nil
	case err := <-errChan:
		return err
	}
}

// app bundles the pieces the one-shot commands share.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	store     storage.Store
	embedder  embedder.Embedder
	retriever *retriever.Retriever
}

func newApp(cfg *config.Config, logger zerolog.Logger) (*app, error) {
	store, err := storage.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
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

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		embedder:  emb,
		retriever: retriever.New(store, emb, cfg.Weights, logger),
	}, nil
}

func (a *app) Close() {
	_ = a.store.Close()
}

func (a *app) host(ctx context.Context, localPath string) (sourcehost.Host, error) {
	if localPath != "" {
		return sourcehost.NewLocalHost(localPath)
	}
	return sourcehost.NewGitHubHost(ctx, a.cfg.GitHub.Token), nil
}

func runIndex(args []string) error {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	repo := fs.String("repo", "", "repository in owner/name form")
	revision := fs.String("revision", "", "branch, tag, or commit to index")
	localPath := fs.String("path", "", "index a local directory instead of GitHub")
	base := fs.String("base", "", "only sync files changed since this revision")

	cfg, logger, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	if *repo == "" {
		return fmt.Errorf("-repo is required")
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	host, err := a.host(ctx, *localPath)
	if err != nil {
		return err
	}

	idx := indexer.New(a.store, a.embedder, host, logger)

	var stats *indexer.Statistics
	if *base != "" {
		stats, err = idx.SyncDiff(ctx, *repo, *base, *revision)
	} else {
		stats, err = idx.SyncRepository(ctx, *repo, *revision, nil)
	}
	if err != nil {
		return err
	}

	return printJSON(map[string]interface{}{
		"sync_id":        stats.SyncID,
		"files_indexed":  stats.FilesIndexed,
		"files_skipped":  stats.FilesSkipped,
		"files_failed":   stats.FilesFailed,
		"files_removed":  stats.FilesRemoved,
		"chunks_created": stats.ChunksCreated,
		"duration_ms":    stats.Duration.Milliseconds(),
	})
}

func runFindings(args []string) error {
	fs := flag.NewFlagSet("findings", flag.ExitOnError)
	repo := fs.String("repo", "", "repository in owner/name form")
	file := fs.String("file", "", "path to a findings report (JSON)")

	cfg, logger, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	if *repo == "" || *file == "" {
		return fmt.Errorf("-repo and -file are required")
	}

	report, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	// Findings ingestion touches only the store; the host is never
	// called, so the local no-op rooted at the working directory is
	// enough to satisfy the indexer's wiring.
	host, err := sourcehost.NewLocalHost(".")
	if err != nil {
		return err
	}

	idx := indexer.New(a.store, a.embedder, host, logger)
	attached, err := idx.IngestFindings(context.Background(), *repo, report)
	if err != nil {
		return err
	}

	return printJSON(map[string]interface{}{
		"repo":              *repo,
		"findings_attached": attached,
	})
}

func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	topK := fs.Int("k", 10, "maximum results")
	repos := fs.String("repos", "", "comma-separated repository filter")

	cfg, logger, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	query := strings.Join(fs.Args(), " ")
	if query == "" {
		return fmt.Errorf("query is required")
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	filter := repoFilter(*repos)
	results, err := a.retriever.Search(context.Background(), query, *topK, &filter)
	if err != nil {
		return err
	}

	for i := range results {
		r := &results[i]
		fmt.Printf("%2d. [%.3f %s] %s\n", i+1, r.Score, r.Signal, r.Permalink(sourcehost.GitHubBaseURL))
		if r.Preview != "" {
			fmt.Printf("    %s\n", firstLine(r.Preview))
		}
	}
	if len(results) == 0 {
		fmt.Println("no results")
	}
	return nil
}

func runAsk(args []string) error {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	topK := fs.Int("k", 10, "retrieval breadth")
	repos := fs.String("repos", "", "comma-separated repository filter")
	hintList := fs.String("hints", "", "comma-separated path hints (path or owner/name:path)")

	cfg, logger, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	question := strings.Join(fs.Args(), " ")
	if question == "" {
		return fmt.Errorf("question is required")
	}
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("an LLM API key is required for ask (set %s or llm.api_key)", config.EnvOpenAIAPIKey)
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	provider, err := llm.NewOpenAIProvider(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
	})
	if err != nil {
		return err
	}
	defer func() { _ = provider.Close() }()

	syn := answer.New(provider, a.store, sourcehost.GitHubBaseURL, logger)
	lad := ladder.New(a.retriever, a.store, syn, cfg.Ladder, logger)

	filter := repoFilter(*repos)
	ans, err := lad.AnswerQuery(context.Background(), question, *topK, &filter, splitList(*hintList))
	if err != nil {
		return err
	}

	fmt.Println(ans.Text)
	if len(ans.Citations) > 0 {
		fmt.Println("\nSources:")
		for i, c := range ans.Citations {
			fmt.Printf("  [%d] %s\n", i+1, c.Link)
		}
	}
	return nil
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	cfg, logger, err := loadConfig(fs, args)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	status, err := a.store.GetStatus(context.Background())
	if err != nil {
		return err
	}

	return printJSON(map[string]interface{}{
		"documents":     status.DocumentsCount,
		"chunks":        status.ChunksCount,
		"embeddings":    status.EmbeddingsCount,
		"symbols":       status.SymbolsCount,
		"endpoints":     status.EndpointsCount,
		"edges":         status.EdgesCount,
		"findings":      status.FindingsCount,
		"index_size_mb": fmt.Sprintf("%.2f", status.IndexSizeMB),
		"embedding": map[string]interface{}{
			"provider":  a.embedder.Provider(),
			"model":     a.embedder.Model(),
			"dimension": a.embedder.Dimension(),
		},
	})
}

func repoFilter(list string) types.RepoFilter {
	repos := splitList(list)
	if len(repos) == 0 {
		return types.AllRepos()
	}
	return types.SomeRepos(repos...)
}

func splitList(list string) []string {
	if list == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func printJSON(data map[string]interface{}) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
