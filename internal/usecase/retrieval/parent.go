package retrieval

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lumenlearn/lumen/internal/db"
	"github.com/lumenlearn/lumen/internal/domain"
)

// ParentDocument retrieves child chunks and widens each hit to its full
// source document, deduplicated by document id. The widened result
// keeps the best child score per document. A hit whose document record
// is gone keeps the child chunk instead of being dropped.
type ParentDocument struct {
	inner  Strategy
	docs   documents
	logger *zap.Logger
}

func NewParentDocument(inner Strategy, docs documents, logger *zap.Logger) *ParentDocument {
	return &ParentDocument{inner: inner, docs: docs, logger: logger}
}

func (p *ParentDocument) Retrieve(
	ctx context.Context, query string, k int, filter domain.MetadataFilter,
) ([]domain.ScoredChunk, error) {
	children, err := p.inner.Retrieve(ctx, query, k, filter)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	out := make([]domain.ScoredChunk, 0, len(children))
	for _, child := range children {
		if child.Chunk.DocumentID == "" {
			out = append(out, child)
			continue
		}
		if seen[child.Chunk.DocumentID] {
			continue
		}
		seen[child.Chunk.DocumentID] = true

		doc, err := p.docs.Get(ctx, child.Chunk.DocumentID)
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				p.logger.Warn("Parent document missing, keeping child chunk",
					zap.String("document_id", child.Chunk.DocumentID))
				out = append(out, child)
				continue
			}
			return nil, fmt.Errorf("widen to parent document: %w", err)
		}

		out = append(out, domain.ScoredChunk{
			Chunk: domain.Chunk{
				ID:         doc.ID,
				DocumentID: doc.ID,
				Text:       doc.Text,
				Tags:       doc.Tags,
			},
			Score: child.Score,
		})
	}

	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}
