// Package llm provides OpenAI-compatible LLM client functionality.
package llm

import (
	"context"
)

// CompletionClient defines the interface for chat-completion calls.
// Use this interface for dependency injection to enable mocking in tests.
type CompletionClient interface {
	// Complete sends one system+user message pair and returns the
	// generated text.
	Complete(ctx context.Context, prompt string, systemMessage string) (string, error)

	// GetModel returns the configured model name.
	GetModel() string

	// GetEndpoint returns the configured endpoint.
	GetEndpoint() string
}

// Ensure Client implements CompletionClient at compile time.
var _ CompletionClient = (*Client)(nil)
