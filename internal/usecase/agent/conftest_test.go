package agent

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/lumenlearn/lumen/internal/domain"
	"github.com/lumenlearn/lumen/internal/usecase/generate"
)

type mockSessions struct {
	mu       sync.Mutex
	sessions map[string]*domain.LearnerSession

	getFn    func(ctx context.Context, learnerID string) (*domain.LearnerSession, error)
	appendFn func(ctx context.Context, learnerID string, in domain.Interaction) (*domain.LearnerSession, error)
}

func newMockSessions() *mockSessions {
	return &mockSessions{sessions: map[string]*domain.LearnerSession{}}
}

func (m *mockSessions) Get(ctx context.Context, learnerID string) (*domain.LearnerSession, error) {
	if m.getFn != nil {
		return m.getFn(ctx, learnerID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[learnerID]; ok {
		return sess, nil
	}
	return domain.NewLearnerSession(learnerID), nil
}

func (m *mockSessions) Append(ctx context.Context, learnerID string, in domain.Interaction) (*domain.LearnerSession, error) {
	if m.appendFn != nil {
		return m.appendFn(ctx, learnerID, in)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[learnerID]
	if !ok {
		sess = domain.NewLearnerSession(learnerID)
		m.sessions[learnerID] = sess
	}
	sess.History = append(sess.History, in)
	return sess, nil
}

type mockRetriever struct {
	retrieveFn func(ctx context.Context, query string, k int, filter domain.MetadataFilter) ([]domain.ScoredChunk, error)
}

func (m *mockRetriever) Retrieve(ctx context.Context, query string, k int, filter domain.MetadataFilter) ([]domain.ScoredChunk, error) {
	if m.retrieveFn != nil {
		return m.retrieveFn(ctx, query, k, filter)
	}
	return []domain.ScoredChunk{
		{Chunk: domain.Chunk{ID: "c1", Text: "reference text"}, Score: 0.9},
	}, nil
}

type mockGenerator struct {
	generateFn func(ctx context.Context, req generate.Request) (domain.Lesson, error)
}

func (m *mockGenerator) Generate(ctx context.Context, req generate.Request) (domain.Lesson, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, req)
	}
	return sampleLesson(req.Topic), nil
}

type mockEngagement struct {
	prob float64
	ok   bool
}

func (m *mockEngagement) CompletionProbability(ctx context.Context, learnerID string) (float64, bool) {
	return m.prob, m.ok
}

func sampleLesson(topic string) domain.Lesson {
	return domain.Lesson{
		Topic:        topic,
		Content:      "Lesson content about " + topic + ".",
		KeyPoints:    []string{"point one", "point two"},
		Scenario:     "A short scenario.",
		QuizQuestion: "Which statement is true?",
		QuizOptions:  []string{"Option A", "Option B", "Option C", "Option D"},
		CorrectIndex: 2,
	}
}

type orchestratorFixture struct {
	sessions  *mockSessions
	retriever *mockRetriever
	generator *mockGenerator
	registry  *Registry
	orch      *Orchestrator
}

func newFixture() *orchestratorFixture {
	f := &orchestratorFixture{
		sessions:  newMockSessions(),
		retriever: &mockRetriever{},
		generator: &mockGenerator{},
	}
	f.registry = NewRegistry(nil)
	tools := NewTools(f.sessions, f.retriever, f.generator, 4, zap.NewNop())
	if err := tools.RegisterAll(f.registry); err != nil {
		panic(err)
	}
	f.orch = NewOrchestrator(f.registry, f.sessions, nil, Config{}, nil, zap.NewNop())
	return f
}
