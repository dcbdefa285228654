package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lumenlearn/lumen/internal/domain"
)

// failureMessage is the only content an errored run ever returns.
const failureMessage = "I'm sorry, I couldn't process your request. Please try again."

// Config tunes the orchestration loop.
type Config struct {
	MaxIterations int
}

// Orchestrator runs the learning state machine. Stateless across runs;
// all per-learner state lives in the session memory manager.
type Orchestrator struct {
	registry    *Registry
	sessions    sessions
	engagement  engagementSignal // nil when no signal source is wired
	cfg         Config
	runDuration *prometheus.HistogramVec
	logger      *zap.Logger
}

func NewOrchestrator(
	registry *Registry,
	s sessions,
	engagement engagementSignal,
	cfg Config,
	runDuration *prometheus.HistogramVec,
	logger *zap.Logger,
) *Orchestrator {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 5
	}
	return &Orchestrator{
		registry:    registry,
		sessions:    s,
		engagement:  engagement,
		cfg:         cfg,
		runDuration: runDuration,
		logger:      logger,
	}
}

// runState accumulates per-run planning state.
type runState struct {
	sess        *domain.LearnerSession
	ephemeral   bool
	intent      string
	topic       string
	engageProb  float64
	haveEngage  bool
	completed   map[string]bool
	performance float64
	content     json.RawMessage
}

// Run drives one interaction to a terminal state. It never returns an
// error: failures are folded into the result so the caller always gets
// a trace id and a terminal state.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) domain.RunResult {
	traceID := uuid.NewString()
	start := time.Now()
	logger := o.logger.With(
		zap.String("trace_id", traceID),
		zap.String("learner_id", req.LearnerID))

	result := o.run(ctx, req, traceID, logger)
	if o.runDuration != nil {
		o.runDuration.WithLabelValues(string(result.TerminalState)).Observe(time.Since(start).Seconds())
	}
	logger.Info("Agent run finished",
		zap.String("terminal_state", string(result.TerminalState)),
		zap.Int("tool_calls", len(result.TraceSummary)))
	return result
}

func (o *Orchestrator) run(ctx context.Context, req RunRequest, traceID string, logger *zap.Logger) domain.RunResult {
	result := domain.RunResult{TraceID: traceID}

	// ASSESS: load the learner session. A down session store costs
	// personalization, not service.
	state := &runState{completed: map[string]bool{}}
	sess, err := o.sessions.Get(ctx, req.LearnerID)
	if err != nil {
		if ctx.Err() != nil {
			return o.fail(result)
		}
		logger.Warn("Session store unavailable, running with ephemeral session", zap.Error(err))
		sess = domain.NewLearnerSession(req.LearnerID)
		state.ephemeral = true
	}
	state.sess = sess
	state.intent = classifyIntent(req, sess)
	state.topic = extractTopic(req, sess, state.intent)
	state.performance = sess.Skill(state.topic)
	if o.engagement != nil {
		state.engageProb, state.haveEngage = o.engagement.CompletionProbability(ctx, req.LearnerID)
	}

	for i := 0; i < o.cfg.MaxIterations; i++ {
		// PLAN
		step := o.plan(req, state)
		if step == nil {
			result.Content = state.content
			result.TerminalState = domain.TerminalSuccess
			return result
		}

		// ACT
		args, _ := json.Marshal(step.args)
		inv := domain.ToolInvocation{
			Tool:      step.tool,
			Arguments: args,
			Timestamp: time.Now().UTC(),
		}
		out, err := o.registry.Invoke(ctx, step.tool, args)
		if err != nil {
			inv.Err = err.Error()
			result.TraceSummary = append(result.TraceSummary, inv)

			if errors.Is(err, domain.ErrSafetyRejected) {
				logger.Warn("Tool rejected by safety pipeline", zap.String("tool", step.tool))
				return o.fail(result)
			}
			if ctx.Err() != nil {
				return o.fail(result)
			}
			logger.Warn("Tool invocation failed",
				zap.String("tool", step.tool), zap.Error(err))
			continue
		}
		inv.Result = out
		result.TraceSummary = append(result.TraceSummary, inv)

		// OBSERVE
		state.completed[step.tool] = true
		o.observe(ctx, req, state, step.tool, out, logger)
	}

	// Budget exhausted: return what was produced, flagged as truncated.
	result.Content = state.content
	result.TerminalState = domain.TerminalMaxIterations
	result.Truncated = true
	return result
}

func (o *Orchestrator) fail(result domain.RunResult) domain.RunResult {
	msg, _ := json.Marshal(map[string]string{"message": failureMessage})
	result.Content = msg
	result.TerminalState = domain.TerminalError
	result.Truncated = false
	return result
}

// planStep is one planned tool call.
type planStep struct {
	tool string
	args map[string]any
}

// plan picks the next tool from the intent and what has already
// succeeded. Returning nil terminates the run with success.
func (o *Orchestrator) plan(req RunRequest, state *runState) *planStep {
	switch state.intent {
	case intentQuizAnswer:
		return o.planQuiz(req, state)
	case intentClarification:
		return o.planLesson(req, state, true)
	}
	return o.planNewTopic(req, state)
}

func (o *Orchestrator) planNewTopic(req RunRequest, state *runState) *planStep {
	if !state.completed[ToolAssessKnowledge] {
		return &planStep{
			tool: ToolAssessKnowledge,
			args: map[string]any{
				"learner_id": req.LearnerID,
				"topic":      state.topic,
			},
		}
	}
	return o.planLesson(req, state, false)
}

func (o *Orchestrator) planLesson(req RunRequest, state *runState, easier bool) *planStep {
	if !state.completed[ToolGenerateLesson] {
		return &planStep{
			tool: ToolGenerateLesson,
			args: map[string]any{
				"topic":           state.topic,
				"difficulty":      o.chooseDifficulty(state, easier),
				"learner_id":      req.LearnerID,
				"learner_context": learnerContext(state.sess, state.topic),
				"origin":          req.Origin,
			},
		}
	}
	if wantsPractice(req, state) && !state.completed[ToolCreateScenario] {
		return &planStep{
			tool: ToolCreateScenario,
			args: map[string]any{
				"topic":            state.topic,
				"industry_context": "general business",
				"difficulty":       o.chooseDifficulty(state, easier),
			},
		}
	}
	return o.planEngagement(req, state, domain.InteractionLesson)
}

// wantsPractice decides whether a practice scenario follows the lesson:
// either the learner asked for one, or they are advanced enough that a
// plain lesson undersells the topic.
func wantsPractice(req RunRequest, state *runState) bool {
	u := strings.ToLower(req.Utterance)
	if strings.Contains(u, "practice") || strings.Contains(u, "scenario") || strings.Contains(u, "exercise") {
		return true
	}
	return state.sess.Skill(state.topic) >= skillAdvancedFrom
}

func (o *Orchestrator) planQuiz(req RunRequest, state *runState) *planStep {
	if !state.completed[ToolEvaluateQuiz] {
		return &planStep{
			tool: ToolEvaluateQuiz,
			args: map[string]any{
				"response":        req.Utterance,
				"expected_answer": req.Quiz.ExpectedAnswer,
				"topic":           state.topic,
			},
		}
	}
	if !state.completed[ToolGetLearningPath] {
		return &planStep{
			tool: ToolGetLearningPath,
			args: map[string]any{
				"learner_id":    req.LearnerID,
				"current_topic": state.topic,
				"performance":   state.performance,
			},
		}
	}
	return o.planEngagement(req, state, domain.InteractionQuiz)
}

func (o *Orchestrator) planEngagement(req RunRequest, state *runState, kind string) *planStep {
	if req.DurationSec <= 0 || state.completed[ToolTrackEngagement] {
		return nil
	}
	return &planStep{
		tool: ToolTrackEngagement,
		args: map[string]any{
			"learner_id":       req.LearnerID,
			"interaction_type": kind,
			"duration":         req.DurationSec,
		},
	}
}

// chooseDifficulty maps the skill estimate to a difficulty band. A topic
// at or below the neutral baseline counts as beginner material: an unseen
// learner starts easy and earns harder content through quiz results. A
// weak engagement signal or a clarification request steps the band down
// so struggling learners get simpler material.
func (o *Orchestrator) chooseDifficulty(state *runState, easier bool) string {
	skill := state.sess.Skill(state.topic)
	difficulty := domain.DifficultyMedium
	switch {
	case skill <= domain.SkillBaseline || state.sess.IsWeak(state.topic):
		difficulty = domain.DifficultyEasy
	case skill >= skillAdvancedFrom:
		difficulty = domain.DifficultyHard
	}
	if easier || (state.haveEngage && state.engageProb < 0.4) {
		difficulty = stepDown(difficulty)
	}
	return difficulty
}

func stepDown(difficulty string) string {
	switch difficulty {
	case domain.DifficultyHard:
		return domain.DifficultyMedium
	}
	return domain.DifficultyEasy
}

// observe folds a successful tool result into run and session state.
func (o *Orchestrator) observe(
	ctx context.Context, req RunRequest, state *runState, tool string, out json.RawMessage, logger *zap.Logger,
) {
	switch tool {
	case ToolGenerateLesson:
		state.content = out
		o.record(ctx, req, state, domain.Interaction{
			Kind:  domain.InteractionLesson,
			Topic: state.topic,
		}, logger)

	case ToolCreateScenario:
		// A lesson, when present, stays the primary artifact.
		if state.content == nil {
			state.content = out
		}
		o.record(ctx, req, state, domain.Interaction{
			Kind:  domain.InteractionScenario,
			Topic: state.topic,
		}, logger)

	case ToolEvaluateQuiz:
		state.content = out
		var eval quizEvaluation
		if err := json.Unmarshal(out, &eval); err == nil {
			if eval.Correct {
				state.performance = 1.0
			} else {
				state.performance = 0.0
			}
			correct := eval.Correct
			o.record(ctx, req, state, domain.Interaction{
				Kind:    domain.InteractionQuiz,
				Topic:   state.topic,
				Correct: &correct,
			}, logger)
		}
	}
}

// record appends the interaction to the session. With an ephemeral
// session the update stays in memory for this run only.
func (o *Orchestrator) record(
	ctx context.Context, req RunRequest, state *runState, in domain.Interaction, logger *zap.Logger,
) {
	in.Timestamp = time.Now().UTC()
	if state.ephemeral {
		state.sess.History = append(state.sess.History, in)
		return
	}

	sess, err := o.sessions.Append(ctx, req.LearnerID, in)
	if err != nil {
		logger.Warn("Failed to record interaction", zap.Error(err))
		state.ephemeral = true
		state.sess.History = append(state.sess.History, in)
		return
	}
	state.sess = sess
}

// learnerContext builds the short personalization digest passed to the
// lesson generator. It is stable for equal session states, so it also
// acts as the learner part of the lesson cache identity.
func learnerContext(sess *domain.LearnerSession, topic string) string {
	data, _ := json.Marshal(map[string]any{
		"level":      skillLevel(sess.Skill(topic)),
		"weak_areas": sess.WeakAreas,
	})
	return string(data)
}
