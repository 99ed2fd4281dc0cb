// Package llm provides the language-model completion capability consumed
// by the research agent.
package llm

import (
	"context"
	"errors"
)

// ErrGeneration reports a completion failure. It is surfaced to the
// caller; the core never retries beyond rate-limit backoff.
var ErrGeneration = errors.New("completion generation failed")

// Options controls a single completion request.
type Options struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	JSONResponse bool // ask the model for a single JSON object
}

// Completion generates text for a prompt.
type Completion interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}
