package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.65, cfg.Weights.Vector)
	assert.Equal(t, 0.35, cfg.Weights.Lexical)
	assert.Equal(t, 24, cfg.Weights.ResultFloor)
	assert.Equal(t, 0.25, cfg.Ladder.BaseThreshold)
	assert.Equal(t, 8, cfg.Ladder.MaxSources)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Setenv(EnvOpenAIAPIKey, "")
	t.Setenv(EnvGitHubToken, "")
	t.Setenv(EnvDatabasePath, "")
	t.Setenv(EnvLogLevel, "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
database:
  path: /tmp/index.db
embedding:
  provider: ollama
  model: nomic-embed-text
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/index.db", cfg.Database.Path)
	assert.Equal(t, "ollama", cfg.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", cfg.Embedding.Model)

	// Unset sections fall back to defaults
	assert.Equal(t, 0.65, cfg.Weights.Vector)
	assert.Equal(t, 0.99, cfg.Ladder.HintScore)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvOpenAIAPIKey, "sk-env")
	t.Setenv(EnvGitHubToken, "ghp-env")
	t.Setenv(EnvDatabasePath, "/tmp/env.db")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.Embedding.APIKey)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
	assert.Equal(t, "ghp-env", cfg.GitHub.Token)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestValidate_PinAboveNaturalScore(t *testing.T) {
	cfg := Default()
	cfg.Weights.EndpointPin = 0.9

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint_pin")
}

func TestValidate_ThresholdOrder(t *testing.T) {
	cfg := Default()
	cfg.Ladder.BaseThreshold = 0.1
	cfg.Ladder.WidenThreshold = 0.2

	assert.Error(t, cfg.Validate())
}
