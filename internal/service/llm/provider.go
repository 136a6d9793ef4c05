// Package llm resolves logical model keys to concrete providers and
// performs model calls with a stable streaming contract: callers receive
// delta callbacks and a final text regardless of whether the provider
// streamed or fell back to a single blocking call.
package llm

import (
	"context"

	"draftpad-backend/internal/domain"
)

// Prompt is a system/user prompt pair plus conversation history.
type Prompt struct {
	System  string
	User    string
	History []domain.ChatTurn
}

// CompletionOptions configures a completion request.
type CompletionOptions struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// DeltaFunc receives one increment of streamed output.
type DeltaFunc func(text string)

// Provider defines the interface for model backends.
type Provider interface {
	// Complete performs a single blocking completion.
	Complete(ctx context.Context, prompt Prompt, options CompletionOptions) (string, error)

	// CompleteStream streams increments through onDelta and returns the
	// accumulated full text.
	CompleteStream(ctx context.Context, prompt Prompt, options CompletionOptions, onDelta DeltaFunc) (string, error)

	// SupportsStreaming reports whether CompleteStream can deliver
	// incremental output.
	SupportsStreaming() bool
}
