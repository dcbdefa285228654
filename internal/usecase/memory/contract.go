package memory

import (
	"context"

	"github.com/lumenlearn/lumen/internal/domain"
)

// Repository defines the persistence contract for learner sessions.
type Repository interface {
	Load(ctx context.Context, learnerID string) (*domain.LearnerSession, error)
	Save(ctx context.Context, sess *domain.LearnerSession) error
}
