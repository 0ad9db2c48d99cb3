// Package llm wraps the generative-model providers and the prompt/answer
// plumbing around them.
package llm

import "context"

// Generator is the single capability the pipeline needs from a generative
// model. Adding a provider means adding an implementation, not branching.
type Generator interface {
	// Generate sends a fully assembled prompt and returns the raw model text.
	Generate(ctx context.Context, prompt string) (string, error)
	// Name identifies the backend in logs.
	Name() string
}
