package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lumenlearn/lumen/internal/domain"
	"github.com/lumenlearn/lumen/internal/usecase/generate"
)

// Tool names.
const (
	ToolAssessKnowledge = "assess_knowledge"
	ToolGenerateLesson  = "generate_adaptive_lesson"
	ToolCreateScenario  = "create_practice_scenario"
	ToolEvaluateQuiz    = "evaluate_quiz_response"
	ToolGetLearningPath = "get_learning_path"
	ToolTrackEngagement = "track_engagement"
)

// Skill thresholds used by knowledge assessment and path planning.
const (
	skillBeginnerBelow = 0.4
	skillAdvancedFrom  = 0.8
	pathAdvanceAbove   = 0.8
	pathReinforceBelow = 0.5
)

// engagementFullSec is the interaction duration treated as full
// engagement when scoring.
const engagementFullSec = 300.0

// Tools binds the tool handlers to their dependencies.
type Tools struct {
	sessions  sessions
	retriever retriever
	generator generator
	topK      int
	logger    *zap.Logger
}

func NewTools(s sessions, r retriever, g generator, topK int, logger *zap.Logger) *Tools {
	return &Tools{sessions: s, retriever: r, generator: g, topK: topK, logger: logger}
}

// RegisterAll registers the six learning tools.
func (t *Tools) RegisterAll(r *Registry) error {
	tools := []Tool{
		{
			Name: ToolAssessKnowledge,
			Schema: []ArgSpec{
				{Name: "learner_id", Kind: ArgString, Required: true},
				{Name: "topic", Kind: ArgString, Required: true},
			},
			Handler: t.assessKnowledge,
		},
		{
			Name: ToolGenerateLesson,
			Schema: []ArgSpec{
				{Name: "topic", Kind: ArgString, Required: true},
				{Name: "difficulty", Kind: ArgString, Required: true},
				{Name: "learner_id", Kind: ArgString},
				{Name: "learner_context", Kind: ArgString},
			},
			Handler: t.generateLesson,
		},
		{
			Name: ToolCreateScenario,
			Schema: []ArgSpec{
				{Name: "topic", Kind: ArgString, Required: true},
				{Name: "industry_context", Kind: ArgString, Required: true},
				{Name: "difficulty", Kind: ArgString, Required: true},
			},
			Handler: t.createScenario,
		},
		{
			Name: ToolEvaluateQuiz,
			Schema: []ArgSpec{
				{Name: "response", Kind: ArgString, Required: true},
				{Name: "expected_answer", Kind: ArgString, Required: true},
				{Name: "topic", Kind: ArgString, Required: true},
			},
			Handler: t.evaluateQuiz,
		},
		{
			Name: ToolGetLearningPath,
			Schema: []ArgSpec{
				{Name: "learner_id", Kind: ArgString, Required: true},
				{Name: "current_topic", Kind: ArgString, Required: true},
				{Name: "performance", Kind: ArgNumber, Required: true},
			},
			Handler: t.learningPath,
		},
		{
			Name: ToolTrackEngagement,
			Schema: []ArgSpec{
				{Name: "learner_id", Kind: ArgString, Required: true},
				{Name: "interaction_type", Kind: ArgString, Required: true},
				{Name: "duration", Kind: ArgNumber, Required: true},
			},
			Handler: t.trackEngagement,
		},
	}
	for _, tool := range tools {
		if err := r.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

type assessment struct {
	Score       float64  `json:"score"`
	Level       string   `json:"level"`
	WeakAreas   []string `json:"weak_areas"`
	StrongAreas []string `json:"strong_areas"`
}

func (t *Tools) assessKnowledge(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		LearnerID string `json:"learner_id"`
		Topic     string `json:"topic"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArguments, err)
	}

	sess, err := t.sessions.Get(ctx, in.LearnerID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		// Same degradation as the run loop: a down session store costs
		// personalization, not the assessment.
		t.logger.Warn("Session store unavailable, assessing from baseline",
			zap.String("learner_id", in.LearnerID), zap.Error(err))
		sess = domain.NewLearnerSession(in.LearnerID)
	}

	score := sess.Skill(in.Topic)
	out := assessment{
		Score:       score,
		Level:       skillLevel(score),
		WeakAreas:   append([]string(nil), sess.WeakAreas...),
		StrongAreas: strongAreas(sess),
	}
	return out, nil
}

func skillLevel(score float64) string {
	switch {
	case score < skillBeginnerBelow:
		return "beginner"
	case score < skillAdvancedFrom:
		return "intermediate"
	}
	return "advanced"
}

func strongAreas(sess *domain.LearnerSession) []string {
	var out []string
	for topic, skill := range sess.SkillLevels {
		if skill >= skillAdvancedFrom {
			out = append(out, topic)
		}
	}
	return out
}

func (t *Tools) generateLesson(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		Topic          string `json:"topic"`
		Difficulty     string `json:"difficulty"`
		LearnerID      string `json:"learner_id"`
		LearnerContext string `json:"learner_context"`
		Origin         string `json:"origin"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArguments, err)
	}
	if !domain.ValidDifficulty(in.Difficulty) {
		return nil, fmt.Errorf("%w: unknown difficulty %q", domain.ErrInvalidArguments, in.Difficulty)
	}

	// Generating without reference material risks hallucinated content,
	// so a retrieval failure blocks the lesson instead of degrading it.
	chunks, err := t.retriever.Retrieve(ctx, in.Topic, t.topK, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieve context for %q: %w", in.Topic, err)
	}

	lesson, err := t.generator.Generate(ctx, generate.Request{
		Topic:          in.Topic,
		Difficulty:     in.Difficulty,
		LearnerID:      in.LearnerID,
		Origin:         in.Origin,
		LearnerContext: in.LearnerContext,
		Chunks:         chunks,
	})
	if err != nil {
		return nil, err
	}
	return lesson, nil
}

func (t *Tools) createScenario(_ context.Context, args json.RawMessage) (any, error) {
	var in struct {
		Topic           string `json:"topic"`
		IndustryContext string `json:"industry_context"`
		Difficulty      string `json:"difficulty"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArguments, err)
	}

	scenario := fmt.Sprintf(
		"Scenario: You are working with a client in the %s industry. They are asking about %s.\n\n"+
			"Situation: The client is hesitant because they don't understand how %s applies to their business cycle.\n\n"+
			"Task: Explain %s using an example relevant to %s.\n\n"+
			"Difficulty: %s",
		in.IndustryContext, in.Topic, in.Topic, in.Topic, in.IndustryContext, in.Difficulty)
	return map[string]string{"scenario": scenario}, nil
}

type quizEvaluation struct {
	Correct            bool    `json:"correct"`
	Feedback           string  `json:"feedback"`
	ConfidenceScore    float64 `json:"confidence_score"`
	NextRecommendation string  `json:"next_recommendation"`
}

// evaluateQuiz is deterministic: the same (response, expected) pair
// always yields the same evaluation.
func (t *Tools) evaluateQuiz(_ context.Context, args json.RawMessage) (any, error) {
	var in struct {
		Response       string `json:"response"`
		ExpectedAnswer string `json:"expected_answer"`
		Topic          string `json:"topic"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArguments, err)
	}

	correct := strings.EqualFold(strings.TrimSpace(in.Response), strings.TrimSpace(in.ExpectedAnswer))
	out := quizEvaluation{Correct: correct}
	if correct {
		out.Feedback = "Correct! Well done."
		out.ConfidenceScore = 1.0
		out.NextRecommendation = "advance to next topic"
	} else {
		out.Feedback = fmt.Sprintf("Not quite. The correct answer was: %s", in.ExpectedAnswer)
		out.NextRecommendation = "review current topic"
	}
	return out, nil
}

type learningPath struct {
	NextTopic            string `json:"next_topic"`
	DifficultyAdjustment string `json:"difficulty_adjustment"`
	ReinforcementNeeded  bool   `json:"reinforcement_needed"`
}

func (t *Tools) learningPath(_ context.Context, args json.RawMessage) (any, error) {
	var in struct {
		LearnerID    string  `json:"learner_id"`
		CurrentTopic string  `json:"current_topic"`
		Performance  float64 `json:"performance"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArguments, err)
	}
	if in.Performance < 0 || in.Performance > 1 {
		return nil, fmt.Errorf("%w: performance %v out of range [0,1]", domain.ErrInvalidArguments, in.Performance)
	}

	switch {
	case in.Performance > pathAdvanceAbove:
		return learningPath{
			NextTopic:            "Advanced " + in.CurrentTopic,
			DifficultyAdjustment: "increase",
		}, nil
	case in.Performance < pathReinforceBelow:
		return learningPath{
			NextTopic:            in.CurrentTopic,
			DifficultyAdjustment: "decrease",
			ReinforcementNeeded:  true,
		}, nil
	}
	return learningPath{
		NextTopic:            "Related concepts to " + in.CurrentTopic,
		DifficultyAdjustment: "maintain",
	}, nil
}

func (t *Tools) trackEngagement(_ context.Context, args json.RawMessage) (any, error) {
	var in struct {
		LearnerID       string  `json:"learner_id"`
		InteractionType string  `json:"interaction_type"`
		Duration        float64 `json:"duration"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArguments, err)
	}
	if in.Duration < 0 {
		return nil, fmt.Errorf("%w: duration must not be negative", domain.ErrInvalidArguments)
	}

	score := in.Duration / engagementFullSec
	if score > 1 {
		score = 1
	}
	return map[string]any{
		"status":           "recorded",
		"engagement_score": score,
	}, nil
}
