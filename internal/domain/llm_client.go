package domain

import "context"

// CompletionClient sends a single system/user prompt pair to a language model
// and returns the textual answer.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*LLMResponse, error)
	Version() string
}

// CompletionRequest describes one completion call.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	// MaxTokens caps the answer length. Zero leaves the model default.
	MaxTokens int
}

// LLMResponse carries the LLM output and whether the generation finished.
type LLMResponse struct {
	Text string
	Done bool
}
