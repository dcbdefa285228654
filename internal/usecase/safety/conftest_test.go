package safety

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/lumenlearn/lumen/internal/domain"
)

type mockModerator struct {
	moderateFn func(ctx context.Context, text string) (domain.ModerationResult, error)
}

func (m *mockModerator) Moderate(ctx context.Context, text string) (domain.ModerationResult, error) {
	return m.moderateFn(ctx, text)
}

type mockCompleter struct {
	completeFn func(ctx context.Context, prompt string, temperature float32) (string, error)
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	return m.completeFn(ctx, prompt, temperature)
}

func cleanModerator() *mockModerator {
	return &mockModerator{moderateFn: func(ctx context.Context, text string) (domain.ModerationResult, error) {
		return domain.ModerationResult{}, nil
	}}
}

func approvingReviewer() *mockCompleter {
	return &mockCompleter{completeFn: func(ctx context.Context, prompt string, temperature float32) (string, error) {
		return `{"approved": true, "issues": []}`, nil
	}}
}

func verdictJSON(v reviewVerdict) string {
	raw, _ := json.Marshal(v)
	return string(raw)
}

func newTestPipeline(mod domain.Moderator, rev domain.Completer) *Pipeline {
	return New(mod, rev, Config{}, nil, zap.NewNop())
}

func validLesson() domain.Lesson {
	return domain.Lesson{
		Topic:        "saving money",
		Content:      "Setting aside a little of your allowance each week adds up.",
		KeyPoints:    []string{"save first", "small amounts add up"},
		Scenario:     "You get 5 coins a week and want a toy that costs 20 coins.",
		QuizQuestion: "What should you do first with your allowance?",
		QuizOptions:  []string{"Spend it all", "Save some of it", "Lose it", "Give it away"},
		CorrectIndex: 1,
	}
}
