// Package config loads runtime configuration from a YAML file with
// environment-variable overrides for secrets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvGitHubToken  = "GITHUB_TOKEN"
	EnvDatabasePath = "CODEQUARRY_DB_PATH"
	EnvLogLevel     = "CODEQUARRY_LOG_LEVEL"
)

// Config is the root configuration document.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	GitHub    GitHubConfig    `yaml:"github"`
	Logging   LoggingConfig   `yaml:"logging"`
	Weights   Weights         `yaml:"weights"`
	Ladder    LadderConfig    `yaml:"ladder"`
}

// DatabaseConfig locates the SQLite index.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // openai, ollama, local
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	CacheSize int    `yaml:"cache_size"`
}

// LLMConfig configures the chat provider used for answer synthesis.
type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// GitHubConfig holds source host credentials.
type GitHubConfig struct {
	Token string `yaml:"token"`
}

// LoggingConfig controls zerolog output.
type LoggingConfig struct {
	Level string `yaml:"level"` // trace, debug, info, warn, error
}

// Weights blends the three retrieval signals into one score. All
// values live here rather than as inline literals so deployments can
// retune the blend without a rebuild.
type Weights struct {
	// Vector scales cosine similarity of the embedding signal.
	Vector float64 `yaml:"vector"`
	// Lexical scales normalized bm25 of the full-text signal.
	Lexical float64 `yaml:"lexical"`
	// LexicalBase is added to every lexical hit so a strong text
	// match is never drowned out entirely.
	LexicalBase float64 `yaml:"lexical_base"`
	// FactsheetBoost is added to vector hits on factsheet chunks.
	FactsheetBoost float64 `yaml:"factsheet_boost"`
	// Pin base scores. Each must stay below the best achievable
	// natural score (Vector + FactsheetBoost) so semantic evidence
	// outranks a bare substring match.
	EndpointPin float64 `yaml:"endpoint_pin"`
	SymbolPin   float64 `yaml:"symbol_pin"`
	EdgePin     float64 `yaml:"edge_pin"`
	// ResultFloor is the minimum merged candidate count kept before
	// final ranking, regardless of topK.
	ResultFloor int `yaml:"result_floor"`
}

// LadderConfig tunes the multi-pass answer retrieval.
type LadderConfig struct {
	// BaseThreshold filters the first pass.
	BaseThreshold float64 `yaml:"base_threshold"`
	// WidenThreshold filters the widened pass.
	WidenThreshold float64 `yaml:"widen_threshold"`
	// WidenMinK floors the widened pass's fetch size.
	WidenMinK int `yaml:"widen_min_k"`
	// Aggressive widens even when the base pass produced a few
	// results, trading latency for recall.
	Aggressive bool `yaml:"aggressive"`
	// MaxSources caps the sources handed to the synthesizer.
	MaxSources int `yaml:"max_sources"`
	// HintScore is the forced score for operator-supplied path hints.
	HintScore float64 `yaml:"hint_score"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "codequarry.db",
		},
		Embedding: EmbeddingConfig{
			Provider:  "local",
			CacheSize: 10000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Weights: Weights{
			Vector:         0.65,
			Lexical:        0.35,
			LexicalBase:    0.05,
			FactsheetBoost: 0.05,
			EndpointPin:    0.62,
			SymbolPin:      0.58,
			EdgePin:        0.54,
			ResultFloor:    24,
		},
		Ladder: LadderConfig{
			BaseThreshold:  0.25,
			WidenThreshold: 0.15,
			WidenMinK:      48,
			MaxSources:     8,
			HintScore:      0.99,
		},
	}
}

// Load reads a YAML config file, fills unset fields from defaults,
// and applies environment overrides. An empty path yields defaults
// plus environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		applyDefaults(cfg)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults restores zero-valued tuning fields after YAML decode
// so a partial file does not zero out the score blend.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Database.Path == "" {
		cfg.Database.Path = def.Database.Path
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = def.Embedding.Provider
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = def.Embedding.CacheSize
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = def.Weights
	}
	if cfg.Weights.ResultFloor == 0 {
		cfg.Weights.ResultFloor = def.Weights.ResultFloor
	}
	if cfg.Ladder == (LadderConfig{}) {
		cfg.Ladder = def.Ladder
	}
	if cfg.Ladder.MaxSources == 0 {
		cfg.Ladder.MaxSources = def.Ladder.MaxSources
	}
	if cfg.Ladder.WidenMinK == 0 {
		cfg.Ladder.WidenMinK = def.Ladder.WidenMinK
	}
	if cfg.Ladder.HintScore == 0 {
		cfg.Ladder.HintScore = def.Ladder.HintScore
	}
}

// applyEnv lets environment variables override file values, keeping
// secrets out of checked-in config.
func applyEnv(cfg *Config) {
	if key := os.Getenv(EnvOpenAIAPIKey); key != "" {
		if cfg.Embedding.APIKey == "" {
			cfg.Embedding.APIKey = key
		}
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = key
		}
	}
	if token := os.Getenv(EnvGitHubToken); token != "" {
		cfg.GitHub.Token = token
	}
	if path := os.Getenv(EnvDatabasePath); path != "" {
		cfg.Database.Path = path
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Logging.Level = level
	}
}

// Validate rejects configurations that would silently misbehave.
func (c *Config) Validate() error {
	if c.Weights.Vector <= 0 || c.Weights.Lexical <= 0 {
		return fmt.Errorf("config: signal weights must be positive")
	}
	bestNatural := c.Weights.Vector + c.Weights.FactsheetBoost
	for name, pin := range map[string]float64{
		"endpoint_pin": c.Weights.EndpointPin,
		"symbol_pin":   c.Weights.SymbolPin,
		"edge_pin":     c.Weights.EdgePin,
	} {
		if pin >= bestNatural {
			return fmt.Errorf("config: %s (%.2f) must stay below the best natural score (%.2f)", name, pin, bestNatural)
		}
	}
	if c.Ladder.BaseThreshold < c.Ladder.WidenThreshold {
		return fmt.Errorf("config: base_threshold must not be below widen_threshold")
	}
	if c.Ladder.MaxSources <= 0 {
		return fmt.Errorf("config: max_sources must be positive")
	}
	return nil
}
