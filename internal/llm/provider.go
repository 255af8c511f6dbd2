package llm

import (
	"context"
)

// LLMProvider defines the interface for LLM implementations
type LLMProvider interface {
	// Generate sends the history plus the new prompt and returns the full answer.
	// Implementations do not retry.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}
