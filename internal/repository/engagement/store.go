// Package engagement reads the completion-probability signal an
// external batch system writes to the shared store. The engine only
// ever reads it.
package engagement

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/lumenlearn/lumen/internal/db"
	"github.com/lumenlearn/lumen/internal/domain"
)

const keyPrefix = domain.KeyPrefix + "engagement:"

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Store resolves a learner's predicted completion probability.
type Store struct {
	store  store
	logger *zap.Logger
}

func New(s store, logger *zap.Logger) *Store {
	return &Store{store: s, logger: logger}
}

// CompletionProbability returns the predicted probability in [0,1] and
// whether a signal exists. Missing or unparsable signals report false;
// the caller treats that as "no bias".
func (s *Store) CompletionProbability(ctx context.Context, learnerID string) (float64, bool) {
	data, err := s.store.Get(ctx, keyPrefix+learnerID)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			s.logger.Warn("Failed to read engagement signal",
				zap.String("learner_id", learnerID), zap.Error(err))
		}
		return 0, false
	}

	p, err := strconv.ParseFloat(string(data), 64)
	if err != nil || p < 0 || p > 1 {
		s.logger.Warn("Invalid engagement signal",
			zap.String("learner_id", learnerID), zap.String("value", string(data)))
		return 0, false
	}
	return p, true
}
