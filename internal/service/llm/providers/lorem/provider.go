package lorem

import (
	"context"
	"fmt"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	domainllm "codescrybe/internal/domain/services/llm"
)

// Provider is a mock LLM provider that generates lorem ipsum text.
// Used for development and tests without a real API key: the server
// still answers chats and the pipeline still runs end to end, the
// prose is just nonsense.
type Provider struct {
	generator *loremgen.Lorem
	delay     time.Duration
}

// NewProvider creates a new lorem ipsum provider.
func NewProvider() *Provider {
	return &Provider{
		generator: loremgen.New(),
		delay:     200 * time.Millisecond,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "lorem"
}

// SupportsModel returns true if the model name starts with "lorem-".
// Example models: "lorem-fast", "lorem-test".
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

// GenerateResponse produces lorem ipsum after a short delay that
// stands in for a real API round trip.
func (p *Provider) GenerateResponse(ctx context.Context, req *domainllm.GenerateRequest) (*domainllm.GenerateResponse, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model '%s' is not supported by lorem provider", req.Model)
	}

	select {
	case <-time.After(p.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 256
	}
	// Rough approximation: one token is about four characters.
	text := p.generateText(maxTokens * 4)

	inputTokens := 0
	for _, msg := range req.Messages {
		inputTokens += len(strings.Fields(msg.Content))
	}

	return &domainllm.GenerateResponse{
		Text:         text,
		Model:        req.Model,
		InputTokens:  inputTokens,
		OutputTokens: len(strings.Fields(text)),
		StopReason:   "end_turn",
	}, nil
}

// generateText builds paragraphs until the target length is reached.
func (p *Provider) generateText(targetChars int) string {
	var b strings.Builder
	for b.Len() < targetChars {
		b.WriteString(p.generator.Paragraph(2, 4))
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String()[:min(b.Len(), targetChars)])
}
