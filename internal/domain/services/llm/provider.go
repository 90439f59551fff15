package llm

import (
	"context"
)

// Provider is the interface every LLM backend implements. The
// abstraction keeps the extraction pipeline and the chat service
// independent of which vendor actually answers.
type Provider interface {
	// GenerateResponse produces a completion for the conversation.
	GenerateResponse(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// Name returns the provider name (e.g., "anthropic", "lorem").
	Name() string

	// SupportsModel reports whether the provider serves the model.
	SupportsModel(model string) bool
}

// GenerateRequest contains the parameters for a generation request.
type GenerateRequest struct {
	// Messages is the conversation history, oldest first.
	Messages []Message

	// Model is the model identifier (e.g., "claude-3-5-sonnet-20241022").
	Model string

	// System is the optional system prompt.
	System string

	// MaxTokens caps the completion length; providers substitute their
	// own default when zero.
	MaxTokens int

	// Temperature overrides the sampling temperature when non-nil.
	Temperature *float64
}

// Message is a single conversation turn.
type Message struct {
	// Role is either "user" or "assistant".
	Role string

	// Content is the plain-text body of the turn.
	Content string
}

// GenerateResponse is a provider's completion.
type GenerateResponse struct {
	// Text is the completion body.
	Text string

	// Model is the model that actually served the request.
	Model string

	// InputTokens and OutputTokens are the provider's usage counts,
	// zero when the provider does not report them.
	InputTokens  int
	OutputTokens int

	// StopReason is why generation stopped (e.g., "end_turn",
	// "max_tokens").
	StopReason string
}
