package embcache

import (
	"context"

	"github.com/lumenlearn/lumen/internal/domain"
)

// RetryOnceEmbedder retries a failed embedding call exactly once.
// Embeddings are never silently retried beyond that; the failure
// propagates as ErrRetrievalUnavailable to the caller.
type RetryOnceEmbedder struct {
	inner domain.Embedder
}

// NewRetryOnce wraps an embedder with a single-retry policy.
func NewRetryOnce(inner domain.Embedder) *RetryOnceEmbedder {
	return &RetryOnceEmbedder{inner: inner}
}

// Embed delegates to the inner embedder, retrying once on failure unless
// the context is already done.
func (r *RetryOnceEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := r.inner.Embed(ctx, text)
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return domain.EmbeddingResult{}, err
	}
	return r.inner.Embed(ctx, text)
}
