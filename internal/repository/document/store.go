// Package document persists full source documents in the key-value
// store so retrieval strategies can widen chunk hits back to their
// parent document.
package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lumenlearn/lumen/internal/db"
	"github.com/lumenlearn/lumen/internal/domain"
)

const keyPrefix = domain.KeyPrefix + "doc:"

// store is the consumer interface for document persistence.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Store keeps documents as JSON records keyed by document id.
type Store struct {
	store store
}

func New(s store) *Store {
	return &Store{store: s}
}

// Save writes the document record, overwriting any previous version.
func (s *Store) Save(ctx context.Context, doc domain.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", doc.ID, err)
	}
	if err := s.store.Set(ctx, keyPrefix+doc.ID, data); err != nil {
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	return nil
}

// Get fetches a document by id. Returns db.ErrKeyNotFound when absent.
func (s *Store) Get(ctx context.Context, id string) (domain.Document, error) {
	data, err := s.store.Get(ctx, keyPrefix+id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Document{}, db.ErrKeyNotFound
		}
		return domain.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("parse document %s: %w", id, err)
	}
	return doc, nil
}
