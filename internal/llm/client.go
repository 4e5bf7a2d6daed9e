// Package llm wraps the remote completion collaborator behind a small
// interface so services can be tested against a mock.
package llm

import "context"

// Client abstracts the LLM collaborator. The completion itself is opaque;
// callers own prompt construction and output parsing.
type Client interface {
	// Complete sends a single-turn prompt and returns the raw completion
	// text. When jsonMode is set the provider is asked for a JSON object
	// response, but callers must still treat the output as untrusted.
	Complete(ctx context.Context, prompt string, jsonMode bool) (string, error)

	// ModelName identifies the configured model, for logging and health.
	ModelName() string
}
