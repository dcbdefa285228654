// Package session persists learner sessions as JSON values in the shared
// store with an inactivity TTL.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lumenlearn/lumen/internal/db"
	"github.com/lumenlearn/lumen/internal/domain"
)

const sessionKeyPrefix = domain.KeyPrefix + "session:"

// store is the consumer interface for session persistence.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Store reads and writes learner sessions. A store outage surfaces as
// ErrMemoryUnavailable so callers can degrade to an ephemeral session.
type Store struct {
	store store
	ttl   time.Duration
}

// New creates a session store. ttl is the inactivity eviction window.
func New(s store, ttl time.Duration) *Store {
	return &Store{store: s, ttl: ttl}
}

// Load fetches a learner session. Returns db.ErrKeyNotFound when the
// learner has no stored session yet.
func (s *Store) Load(ctx context.Context, learnerID string) (*domain.LearnerSession, error) {
	data, err := s.store.Get(ctx, sessionKeyPrefix+learnerID)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, db.ErrKeyNotFound
		}
		return nil, fmt.Errorf("%w: load session %s: %v", domain.ErrMemoryUnavailable, learnerID, err)
	}

	var sess domain.LearnerSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("%w: decode session %s: %v", domain.ErrMemoryUnavailable, learnerID, err)
	}
	if sess.SkillLevels == nil {
		sess.SkillLevels = map[string]float64{}
	}
	return &sess, nil
}

// Save writes a learner session, refreshing the inactivity TTL.
func (s *Store) Save(ctx context.Context, sess *domain.LearnerSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.LearnerID, err)
	}
	if err := s.store.SetWithTTL(ctx, sessionKeyPrefix+sess.LearnerID, data, s.ttl); err != nil {
		return fmt.Errorf("%w: save session %s: %v", domain.ErrMemoryUnavailable, sess.LearnerID, err)
	}
	return nil
}
