package generate

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/lumenlearn/lumen/internal/domain"
	"github.com/lumenlearn/lumen/internal/repository/respcache"
)

type mockCompleter struct {
	completeFn func(ctx context.Context, prompt string, temperature float32) (string, error)
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	return m.completeFn(ctx, prompt, temperature)
}

type mockLimiter struct {
	allowFn func(ctx context.Context, userID, origin string) (bool, error)
}

func (m *mockLimiter) Allow(ctx context.Context, userID, origin string) (bool, error) {
	if m.allowFn != nil {
		return m.allowFn(ctx, userID, origin)
	}
	return true, nil
}

// passthroughCache always computes. Tests that need hit behavior replace
// getFn.
type passthroughCache struct {
	getFn func(ctx context.Context, key string, ttl time.Duration, compute respcache.ComputeFunc) ([]byte, error)
}

func (m *passthroughCache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute respcache.ComputeFunc) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key, ttl, compute)
	}
	return compute(ctx)
}

type mockChecker struct {
	checkFn func(ctx context.Context, lesson domain.Lesson) (domain.SafetyReport, error)
}

func (m *mockChecker) Check(ctx context.Context, lesson domain.Lesson) (domain.SafetyReport, error) {
	if m.checkFn != nil {
		return m.checkFn(ctx, lesson)
	}
	return domain.SafetyReport{Passed: true, Sanitized: lesson}, nil
}

func validLesson() domain.Lesson {
	return domain.Lesson{
		Topic:        "budgeting",
		Content:      "A budget is a plan for your money.",
		KeyPoints:    []string{"track spending", "plan ahead"},
		Scenario:     "You have 10 coins and three things you want.",
		QuizQuestion: "What is a budget?",
		QuizOptions:  []string{"A toy", "A plan for money", "A bank", "A coin"},
		CorrectIndex: 1,
	}
}

func lessonJSON(l domain.Lesson) string {
	raw, _ := json.Marshal(l)
	return string(raw)
}

func testRequest() Request {
	return Request{
		Topic:      "budgeting",
		Difficulty: domain.DifficultyEasy,
		LearnerID:  "learner-1",
		Origin:     "10.0.0.1",
	}
}

func newTestService(c *mockCompleter, lim *mockLimiter, cache *passthroughCache, chk *mockChecker) *Service {
	return New(c, lim, cache, chk, Config{Temperature: 0.7, CacheTTL: time.Minute}, zap.NewNop())
}
