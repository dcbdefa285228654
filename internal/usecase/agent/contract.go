// Package agent drives one learning interaction through an explicit
// state machine (assess, plan, act, observe) over a registry of
// schema-validated tools. The iteration bound is the primary defense
// against runaway tool-call loops.
package agent

import (
	"context"

	"github.com/lumenlearn/lumen/internal/domain"
	"github.com/lumenlearn/lumen/internal/usecase/generate"
)

// sessions is the consumer interface over the session memory manager.
type sessions interface {
	Get(ctx context.Context, learnerID string) (*domain.LearnerSession, error)
	Append(ctx context.Context, learnerID string, in domain.Interaction) (*domain.LearnerSession, error)
}

// generator produces safe, validated lessons.
type generator interface {
	Generate(ctx context.Context, req generate.Request) (domain.Lesson, error)
}

// retriever fetches reference chunks for lesson generation.
type retriever interface {
	Retrieve(ctx context.Context, query string, k int, filter domain.MetadataFilter) ([]domain.ScoredChunk, error)
}

// engagementSignal exposes the external completion-probability model.
// Read-only; ok is false when no signal exists for the learner.
type engagementSignal interface {
	CompletionProbability(ctx context.Context, learnerID string) (float64, bool)
}

// QuizContext carries the quiz a learner is answering. The caller owns
// quiz persistence and passes the expected answer back with the
// learner's response.
type QuizContext struct {
	Topic          string `json:"topic"`
	ExpectedAnswer string `json:"expected_answer"`
}

// RunRequest describes one learner interaction.
type RunRequest struct {
	LearnerID   string
	Origin      string
	Utterance   string
	Quiz        *QuizContext // set when the utterance answers a delivered quiz
	DurationSec int          // client-reported interaction duration, 0 if unknown
}
