package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/lumenlearn/lumen/internal/domain"
)

func TestDirect_Retrieve(t *testing.T) {
	want := []domain.ScoredChunk{
		scored("c1", "d1", "first", 0.9),
		scored("c2", "d1", "second", 0.7),
	}
	var gotVector []float32
	var gotK int
	var gotFilter domain.MetadataFilter
	idx := &mockIndex{queryFn: func(ctx context.Context, vector []float32, k int, filter domain.MetadataFilter) ([]domain.ScoredChunk, error) {
		gotVector, gotK, gotFilter = vector, k, filter
		return want, nil
	}}
	d := NewDirect(&mockEmbedder{}, idx)

	got, err := d.Retrieve(context.Background(), "what is apr", 2, domain.MetadataFilter{"subject": "finance"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 2 || got[0].Chunk.ID != "c1" {
		t.Errorf("chunks = %v", got)
	}
	if len(gotVector) != 3 {
		t.Errorf("query vector = %v", gotVector)
	}
	if gotK != 2 {
		t.Errorf("k = %d", gotK)
	}
	if gotFilter["subject"] != "finance" {
		t.Errorf("filter = %v", gotFilter)
	}
}

func TestDirect_EmbedErrorPropagates(t *testing.T) {
	emb := &mockEmbedder{embedFn: func(ctx context.Context, text string) (domain.EmbeddingResult, error) {
		return domain.EmbeddingResult{}, domain.ErrRetrievalUnavailable
	}}
	idx := &mockIndex{queryFn: func(ctx context.Context, vector []float32, k int, filter domain.MetadataFilter) ([]domain.ScoredChunk, error) {
		t.Error("index must not be queried after an embed failure")
		return nil, nil
	}}
	d := NewDirect(emb, idx)

	_, err := d.Retrieve(context.Background(), "query", 4, nil)
	if !errors.Is(err, domain.ErrRetrievalUnavailable) {
		t.Fatalf("err = %v, want ErrRetrievalUnavailable", err)
	}
}

func TestDirect_IndexErrorPropagates(t *testing.T) {
	boom := errors.New("index down")
	idx := &mockIndex{queryFn: func(ctx context.Context, vector []float32, k int, filter domain.MetadataFilter) ([]domain.ScoredChunk, error) {
		return nil, boom
	}}
	d := NewDirect(&mockEmbedder{}, idx)

	if _, err := d.Retrieve(context.Background(), "query", 4, nil); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}
