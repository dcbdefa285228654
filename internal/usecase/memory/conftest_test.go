package memory

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/lumenlearn/lumen/internal/db"
	"github.com/lumenlearn/lumen/internal/domain"
)

type mockRepository struct {
	mu       sync.Mutex
	sessions map[string]*domain.LearnerSession

	loadFn func(ctx context.Context, learnerID string) (*domain.LearnerSession, error)
	saveFn func(ctx context.Context, sess *domain.LearnerSession) error
}

func newMockRepository() *mockRepository {
	return &mockRepository{sessions: map[string]*domain.LearnerSession{}}
}

func (m *mockRepository) Load(ctx context.Context, learnerID string) (*domain.LearnerSession, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx, learnerID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[learnerID]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	cp := *sess
	return &cp, nil
}

func (m *mockRepository) Save(ctx context.Context, sess *domain.LearnerSession) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, sess)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sess
	m.sessions[sess.LearnerID] = &cp
	return nil
}

func newTestService(repo Repository) *Service {
	return New(repo, zap.NewNop())
}

func boolPtr(b bool) *bool { return &b }
