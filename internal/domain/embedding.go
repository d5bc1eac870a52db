package domain

import "context"

// EmbeddingResult holds the vector and token usage of one embedding call.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder vectorizes text.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker is optionally implemented by embedders that can probe
// provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// InstructionEmbedder prefixes every text with a fixed instruction before
// delegating. Wrap it outermost so any cache key includes the instruction.
type InstructionEmbedder struct {
	inner       Embedder
	instruction string
}

// NewInstructionEmbedder wraps an embedder with an instruction prefix.
func NewInstructionEmbedder(inner Embedder, instruction string) *InstructionEmbedder {
	return &InstructionEmbedder{inner: inner, instruction: instruction}
}

// Embed implements Embedder.
func (e *InstructionEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return e.inner.Embed(ctx, e.instruction+text) //nolint:wrapcheck // thin decorator
}
