// Package llm provides chat completion providers for answer synthesis.
//
// Providers return raw JSON constrained by a caller-supplied schema;
// validation of the payload happens downstream where the schema's
// semantics are known.
package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Common errors returned by chat providers.
var (
	ErrNoAPIKey       = errors.New("llm: API key is required")
	ErrEmptyPrompt    = errors.New("llm: empty prompt")
	ErrProviderFailed = errors.New("llm: provider request failed")
	ErrNoChoices      = errors.New("llm: no response choices returned")
)

// ChatProvider generates structured completions. GenerateStructured
// sends a system and user message and asks the provider to emit JSON
// conforming to schema. The returned bytes are the model's raw output;
// callers must validate before trusting it.
type ChatProvider interface {
	GenerateStructured(ctx context.Context, system, user string, schema json.RawMessage) (json.RawMessage, error)
	ModelName() string
	Close() error
}
