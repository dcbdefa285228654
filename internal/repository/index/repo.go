// Package index implements the vector index over the shared store's
// FT.SEARCH capability: chunk upsert and nearest-neighbor queries.
package index

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/lumenlearn/lumen/internal/db"
	"github.com/lumenlearn/lumen/internal/domain"
)

const (
	chunkKeyPrefix = domain.KeyPrefix + "chunk:"
	indexName      = domain.KeyPrefix + "chunks:idx"
)

// store is the consumer interface for index operations.
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo stores chunk records as hashes and answers KNN queries over them.
// Concurrent Upsert and Query are safe; a query racing an upsert may or
// may not see the new chunk (eventual visibility).
type Repo struct {
	store store
	dims  int
}

// New creates a vector index repository.
func New(s store, dims int) *Repo {
	return &Repo{store: s, dims: dims}
}

// EnsureIndex creates the chunk FT index if it does not exist (idempotent).
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("probe index: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     indexName,
		Prefixes: []string{chunkKeyPrefix},
		Fields: []db.IndexField{
			{Name: "text", Type: db.FieldText},
			{Name: "document_id", Type: db.FieldTag},
			{Name: "position", Type: db.FieldNumeric},
			{Name: "tags", Type: db.FieldTag},
			{Name: "vector", Type: db.FieldVector, Dimensions: r.dims},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && err != db.ErrIndexExists {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Upsert writes a chunk record (text, metadata, embedding blob) and
// returns its id. The embedding must already be computed.
func (r *Repo) Upsert(ctx context.Context, chunk domain.Chunk) (string, error) {
	if len(chunk.Embedding) == 0 {
		return "", fmt.Errorf("chunk %s has no embedding", chunk.ID)
	}

	fields := map[string]string{
		"text":        chunk.Text,
		"document_id": chunk.DocumentID,
		"position":    strconv.Itoa(chunk.Position),
		"vector":      vectorBlob(chunk.Embedding),
	}
	if len(chunk.Tags) > 0 {
		fields["tags"] = joinTags(chunk.Tags)
	}

	if err := r.store.HSet(ctx, chunkKeyPrefix+chunk.ID, fields); err != nil {
		return "", fmt.Errorf("upsert chunk %s: %w", chunk.ID, err)
	}
	return chunk.ID, nil
}

// Query returns at most k chunks ordered by descending similarity, ties
// broken by insertion order (FT.SEARCH is stable for equal distances).
// An optional filter restricts results by tag equality.
func (r *Repo) Query(
	ctx context.Context, vector []float32, k int, filter domain.MetadataFilter,
) ([]domain.ScoredChunk, error) {
	q := &db.KNNQuery{
		IndexName:    indexName,
		Vector:       vector,
		K:            k,
		TagFilters:   filterPairs(filter),
		ReturnFields: []string{"text", "document_id", "position", "tags", "__vector_score"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: knn query: %v", domain.ErrRetrievalUnavailable, err)
	}

	out := make([]domain.ScoredChunk, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		pos, _ := strconv.Atoi(e.Fields["position"])
		out = append(out, domain.ScoredChunk{
			Chunk: domain.Chunk{
				ID:         strings.TrimPrefix(e.Key, chunkKeyPrefix),
				DocumentID: e.Fields["document_id"],
				Text:       e.Fields["text"],
				Position:   pos,
				Tags:       parseTags(e.Fields["tags"]),
			},
			Score: e.Score,
		})
	}
	return out, nil
}

// Get fetches a single chunk record by id.
func (r *Repo) Get(ctx context.Context, id string) (domain.Chunk, error) {
	fields, err := r.store.HGetAll(ctx, chunkKeyPrefix+id)
	if err != nil {
		return domain.Chunk{}, fmt.Errorf("get chunk %s: %w", id, err)
	}
	if len(fields) == 0 {
		return domain.Chunk{}, db.ErrKeyNotFound
	}
	pos, _ := strconv.Atoi(fields["position"])
	return domain.Chunk{
		ID:         id,
		DocumentID: fields["document_id"],
		Text:       fields["text"],
		Position:   pos,
		Tags:       parseTags(fields["tags"]),
	}, nil
}

func vectorBlob(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// joinTags encodes tags as comma-separated k=v pairs in a TAG field.
// Keys are sorted so the encoding is deterministic.
func joinTags(tags map[string]string) string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+tags[k])
	}
	return strings.Join(pairs, ",")
}

func parseTags(s string) map[string]string {
	if s == "" {
		return nil
	}
	out := map[string]string{}
	for _, pair := range strings.Split(s, ",") {
		if k, v, ok := strings.Cut(pair, "="); ok {
			out[k] = v
		}
	}
	return out
}

func filterPairs(filter domain.MetadataFilter) []string {
	if len(filter) == 0 {
		return nil
	}
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+filter[k])
	}
	return pairs
}
