// Package ingest turns source documents into indexed, embedded chunks.
package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumenlearn/lumen/internal/chunker"
	"github.com/lumenlearn/lumen/internal/domain"
)

// indexer is the consumer interface over the vector index.
type indexer interface {
	Upsert(ctx context.Context, chunk domain.Chunk) (string, error)
}

// documents persists the full source document for parent-widening.
type documents interface {
	Save(ctx context.Context, doc domain.Document) error
}

// Service splits, embeds and indexes documents.
type Service struct {
	chunkCfg chunker.Config
	embedder domain.Embedder
	index    indexer
	docs     documents
	logger   *zap.Logger
}

func New(
	chunkCfg chunker.Config,
	embedder domain.Embedder,
	index indexer,
	docs documents,
	logger *zap.Logger,
) *Service {
	return &Service{
		chunkCfg: chunkCfg,
		embedder: embedder,
		index:    index,
		docs:     docs,
		logger:   logger,
	}
}

// Ingest stores the document and indexes its chunks. It returns the
// document id and the number of chunks indexed. Ingestion is not
// transactional: a failure mid-way leaves earlier chunks indexed, and
// re-ingesting the same id overwrites them.
func (s *Service) Ingest(ctx context.Context, doc domain.Document) (string, int, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Text == "" {
		return "", 0, fmt.Errorf("document has no text")
	}

	if err := s.docs.Save(ctx, doc); err != nil {
		return "", 0, err
	}

	chunks, err := chunker.Split(doc, s.chunkCfg)
	if err != nil {
		return "", 0, fmt.Errorf("split document %s: %w", doc.ID, err)
	}

	for _, chunk := range chunks {
		result, err := s.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return "", 0, fmt.Errorf("embed chunk %d of document %s: %w", chunk.Position, doc.ID, err)
		}
		chunk.Embedding = result.Embedding

		if _, err := s.index.Upsert(ctx, chunk); err != nil {
			return "", 0, err
		}
	}

	s.logger.Info("Document ingested",
		zap.String("document_id", doc.ID),
		zap.Int("chunks", len(chunks)))
	return doc.ID, len(chunks), nil
}
