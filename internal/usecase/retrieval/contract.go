// Package retrieval implements the query-side strategies over the
// vector index: direct KNN, multi-query expansion, parent-document
// widening and contextual compression.
package retrieval

import (
	"context"

	"github.com/lumenlearn/lumen/internal/domain"
)

// Strategy retrieves at most k chunks relevant to a query. A nil filter
// matches everything. Strategies never return an empty result to mask a
// failing dependency: embedding or index errors propagate.
type Strategy interface {
	Retrieve(ctx context.Context, query string, k int, filter domain.MetadataFilter) ([]domain.ScoredChunk, error)
}

// index is the consumer interface over the vector index.
type index interface {
	Query(ctx context.Context, vector []float32, k int, filter domain.MetadataFilter) ([]domain.ScoredChunk, error)
}

// documents resolves a chunk hit back to its source document.
type documents interface {
	Get(ctx context.Context, id string) (domain.Document, error)
}

// Strategy names accepted by Select and the configuration layer.
const (
	StrategyDirect      = "direct"
	StrategyMultiQuery  = "multi_query"
	StrategyParent      = "parent_document"
	StrategyCompression = "compression"
)
