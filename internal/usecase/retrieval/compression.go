package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lumenlearn/lumen/internal/domain"
)

const (
	compressionTemperature float32 = 0.0

	// Sentinel the extractor returns when nothing in a chunk is relevant.
	noRelevantContent = "NO_RELEVANT_CONTENT"
)

// Compression retrieves chunks and asks the LLM to strip each one down
// to the sentences relevant to the query. Chunk order is preserved;
// chunks with no relevant content are dropped. An extraction failure
// for a single chunk keeps the chunk uncompressed.
type Compression struct {
	inner     Strategy
	completer domain.Completer
	logger    *zap.Logger
}

func NewCompression(inner Strategy, completer domain.Completer, logger *zap.Logger) *Compression {
	return &Compression{inner: inner, completer: completer, logger: logger}
}

func (c *Compression) Retrieve(
	ctx context.Context, query string, k int, filter domain.MetadataFilter,
) ([]domain.ScoredChunk, error) {
	chunks, err := c.inner.Retrieve(ctx, query, k, filter)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ScoredChunk, 0, len(chunks))
	for _, sc := range chunks {
		extracted, err := c.extract(ctx, query, sc.Chunk.Text)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			c.logger.Warn("Chunk compression failed, keeping full chunk",
				zap.String("chunk_id", sc.Chunk.ID), zap.Error(err))
			out = append(out, sc)
			continue
		}
		if extracted == "" {
			continue
		}
		sc.Chunk.Text = extracted
		out = append(out, sc)
	}
	return out, nil
}

// extract returns the relevant sentences of text, or "" when the
// extractor judged the chunk irrelevant.
func (c *Compression) extract(ctx context.Context, query, text string) (string, error) {
	prompt := fmt.Sprintf(
		"Given the question below, copy out only the sentences from the passage that help answer it. "+
			"Keep the sentences in their original order and wording. "+
			"If no sentence is relevant, respond with exactly %s.\n\nQuestion: %s\n\nPassage:\n%s",
		noRelevantContent, query, text)

	raw, err := c.completer.Complete(ctx, prompt, compressionTemperature)
	if err != nil {
		return "", fmt.Errorf("extract relevant sentences: %w", err)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || strings.Contains(raw, noRelevantContent) {
		return "", nil
	}
	return raw, nil
}
