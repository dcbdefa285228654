package ingest

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/lumenlearn/lumen/internal/chunker"
	"github.com/lumenlearn/lumen/internal/domain"
)

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	calls   int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}, nil
}

type mockIndexer struct {
	upsertFn func(ctx context.Context, chunk domain.Chunk) (string, error)
	upserted []domain.Chunk
}

func (m *mockIndexer) Upsert(ctx context.Context, chunk domain.Chunk) (string, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, chunk)
	}
	m.upserted = append(m.upserted, chunk)
	return chunk.ID, nil
}

type mockDocuments struct {
	saveFn func(ctx context.Context, doc domain.Document) error
	saved  []domain.Document
}

func (m *mockDocuments) Save(ctx context.Context, doc domain.Document) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, doc)
	}
	m.saved = append(m.saved, doc)
	return nil
}

type serviceFixture struct {
	svc      *Service
	embedder *mockEmbedder
	index    *mockIndexer
	docs     *mockDocuments
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		embedder: &mockEmbedder{},
		index:    &mockIndexer{},
		docs:     &mockDocuments{},
	}
	cfg := chunker.Config{ChunkSize: 80, Overlap: 10}
	f.svc = New(cfg, f.embedder, f.index, f.docs, zap.NewNop())
	return f
}
