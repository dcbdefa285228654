package chi

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/lumenlearn/lumen/internal/chunker"
	"github.com/lumenlearn/lumen/internal/domain"
	agentuc "github.com/lumenlearn/lumen/internal/usecase/agent"
	generateuc "github.com/lumenlearn/lumen/internal/usecase/generate"
	healthuc "github.com/lumenlearn/lumen/internal/usecase/health"
	ingestuc "github.com/lumenlearn/lumen/internal/usecase/ingest"
)

type mockSessions struct{}

func (mockSessions) Get(ctx context.Context, learnerID string) (*domain.LearnerSession, error) {
	return domain.NewLearnerSession(learnerID), nil
}

func (mockSessions) Append(ctx context.Context, learnerID string, in domain.Interaction) (*domain.LearnerSession, error) {
	sess := domain.NewLearnerSession(learnerID)
	sess.History = append(sess.History, in)
	return sess, nil
}

type mockRetriever struct{}

func (mockRetriever) Retrieve(ctx context.Context, query string, k int, filter domain.MetadataFilter) ([]domain.ScoredChunk, error) {
	return nil, nil
}

type mockGenerator struct {
	generateFn func(ctx context.Context, req generateuc.Request) (domain.Lesson, error)
}

func (m *mockGenerator) Generate(ctx context.Context, req generateuc.Request) (domain.Lesson, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, req)
	}
	return domain.Lesson{
		Topic:        req.Topic,
		Content:      "Lesson content.",
		KeyPoints:    []string{"one"},
		QuizQuestion: "Which?",
		QuizOptions:  []string{"A", "B", "C", "D"},
		CorrectIndex: 0,
	}, nil
}

type mockEmbedder struct {
	err error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1}}, nil
}

type mockIndexer struct{}

func (mockIndexer) Upsert(ctx context.Context, chunk domain.Chunk) (string, error) {
	return chunk.ID, nil
}

type mockDocStore struct{}

func (mockDocStore) Save(ctx context.Context, doc domain.Document) error { return nil }

type mockPinger struct{ err error }

func (m *mockPinger) Ping(ctx context.Context) error { return m.err }

type mockLLMChecker struct{ err error }

func (m *mockLLMChecker) HealthCheck(ctx context.Context) error { return m.err }

type serverFixture struct {
	generator *mockGenerator
	embedder  *mockEmbedder
	pinger    *mockPinger
	llm       *mockLLMChecker
	server    *Server
}

func newServerFixture() *serverFixture {
	f := &serverFixture{
		generator: &mockGenerator{},
		embedder:  &mockEmbedder{},
		pinger:    &mockPinger{},
		llm:       &mockLLMChecker{},
	}

	registry := agentuc.NewRegistry(nil)
	tools := agentuc.NewTools(mockSessions{}, mockRetriever{}, f.generator, 4, zap.NewNop())
	if err := tools.RegisterAll(registry); err != nil {
		panic(err)
	}
	orch := agentuc.NewOrchestrator(registry, mockSessions{}, nil, agentuc.Config{}, nil, zap.NewNop())

	ingest := ingestuc.New(
		chunker.Config{ChunkSize: 200, Overlap: 20},
		f.embedder, mockIndexer{}, mockDocStore{}, zap.NewNop())

	health := healthuc.New(f.pinger, f.llm)

	f.server = NewServer(orch, ingest, health, zap.NewNop())
	return f
}

var errDown = errors.New("down")
