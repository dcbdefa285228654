package retrieval

import (
	"context"

	"github.com/lumenlearn/lumen/internal/domain"
)

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}, nil
}

type mockIndex struct {
	queryFn func(ctx context.Context, vector []float32, k int, filter domain.MetadataFilter) ([]domain.ScoredChunk, error)
}

func (m *mockIndex) Query(ctx context.Context, vector []float32, k int, filter domain.MetadataFilter) ([]domain.ScoredChunk, error) {
	return m.queryFn(ctx, vector, k, filter)
}

type mockStrategy struct {
	retrieveFn func(ctx context.Context, query string, k int, filter domain.MetadataFilter) ([]domain.ScoredChunk, error)
}

func (m *mockStrategy) Retrieve(ctx context.Context, query string, k int, filter domain.MetadataFilter) ([]domain.ScoredChunk, error) {
	return m.retrieveFn(ctx, query, k, filter)
}

type mockCompleter struct {
	completeFn func(ctx context.Context, prompt string, temperature float32) (string, error)
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	return m.completeFn(ctx, prompt, temperature)
}

type mockDocuments struct {
	getFn func(ctx context.Context, id string) (domain.Document, error)
}

func (m *mockDocuments) Get(ctx context.Context, id string) (domain.Document, error) {
	return m.getFn(ctx, id)
}

func scored(id, docID, text string, score float64) domain.ScoredChunk {
	return domain.ScoredChunk{
		Chunk: domain.Chunk{ID: id, DocumentID: docID, Text: text},
		Score: score,
	}
}
