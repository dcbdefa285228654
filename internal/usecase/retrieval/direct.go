package retrieval

import (
	"context"
	"fmt"

	"github.com/lumenlearn/lumen/internal/domain"
)

// Direct embeds the query once and returns the nearest chunks as-is.
type Direct struct {
	embedder domain.Embedder
	index    index
}

func NewDirect(embedder domain.Embedder, idx index) *Direct {
	return &Direct{embedder: embedder, index: idx}
}

func (d *Direct) Retrieve(
	ctx context.Context, query string, k int, filter domain.MetadataFilter,
) ([]domain.ScoredChunk, error) {
	result, err := d.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := d.index.Query(ctx, result.Embedding, k, filter)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}
