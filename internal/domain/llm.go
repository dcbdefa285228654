package domain

import "context"

// Completer is the shared LLM text completion contract between layers.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float32) (string, error)
}

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Moderator checks content against an external moderation service.
type Moderator interface {
	Moderate(ctx context.Context, text string) (ModerationResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the
// decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// ModerationResult is the verdict of the moderation service.
type ModerationResult struct {
	Flagged    bool
	Categories []string
}
