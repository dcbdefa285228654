package db

import (
	"context"
	"time"
)

// Store is the shared-store facade combining all sub-interfaces.
// Consumers depend on the narrow sub-interfaces, not on Store.
type Store interface {
	Pinger
	KVStore
	HashStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations with TTL and atomic
// counters. All single-key operations are linearizable.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	// IncrBy atomically increments a key and returns the new value.
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	// Expire sets TTL on a key. When nx=true, only if the key has no expiry yet.
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// HashStore provides hash-based storage for chunk records.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides KNN search over an FT index.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}

// FieldType is an FT schema field type.
type FieldType string

// Supported FT field types.
const (
	FieldText    FieldType = "TEXT"
	FieldTag     FieldType = "TAG"
	FieldNumeric FieldType = "NUMERIC"
	FieldVector  FieldType = "VECTOR"
)

// IndexField is one field in an FT index schema.
type IndexField struct {
	Name       string
	Type       FieldType
	Dimensions int // VECTOR fields only
}

// IndexDefinition describes an FT index over hash keys with a prefix.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// KNNQuery is a vector similarity query. TagFilters are exact-match
// conditions on the composite tag field, AND-ed together.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	TagFilters   []string
	ReturnFields []string
}

// SearchEntry is a single hit: key, similarity score, and returned fields.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SearchResult is an ordered FT.SEARCH result page.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}
