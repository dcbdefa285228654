// Package safety validates generated lessons before they reach a
// learner: PII redaction, provider moderation, and an LLM compliance
// review against fixed content principles. Moderation and review
// failures are treated as rejections, never as passes.
package safety

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lumenlearn/lumen/internal/domain"
	"github.com/lumenlearn/lumen/internal/retry"
)

// Verdict label values for the safety metric.
const (
	verdictPassed     = "passed"
	verdictRejected   = "rejected"
	verdictFailClosed = "fail_closed"
)

// Config bounds the compliance review stage.
type Config struct {
	ReviewRetries int // extra review attempts on transient provider errors
	ReviewBackoff retry.Policy
}

// Pipeline runs the three safety stages in order. It is stateless and
// safe for concurrent use.
type Pipeline struct {
	moderator domain.Moderator
	completer domain.Completer
	cfg       Config
	verdicts  *prometheus.CounterVec
	logger    *zap.Logger
}

func New(
	moderator domain.Moderator,
	completer domain.Completer,
	cfg Config,
	verdicts *prometheus.CounterVec,
	logger *zap.Logger,
) *Pipeline {
	if cfg.ReviewBackoff.MaxRetries == 0 {
		cfg.ReviewBackoff.MaxRetries = cfg.ReviewRetries
	}
	return &Pipeline{
		moderator: moderator,
		completer: completer,
		cfg:       cfg,
		verdicts:  verdicts,
		logger:    logger,
	}
}

// Check runs redaction, moderation and compliance review over the
// lesson. The returned report always carries a sanitized lesson, even
// when the verdict is a rejection. Check returns an error only for
// context cancellation; provider failures surface as a failed report.
func (p *Pipeline) Check(ctx context.Context, lesson domain.Lesson) (domain.SafetyReport, error) {
	report := domain.SafetyReport{}
	report.Sanitized, report.PIIFound = redactLesson(lesson)

	flagged, err := p.moderate(ctx, report.Sanitized)
	if err != nil {
		if ctx.Err() != nil {
			return domain.SafetyReport{}, ctx.Err()
		}
		// Moderation unavailable. Unverified content never ships.
		p.logger.Warn("Moderation unavailable, rejecting content", zap.Error(err))
		report.Issues = append(report.Issues, "moderation unavailable")
		p.incVerdict(verdictFailClosed)
		return report, nil
	}
	if flagged {
		report.ModerationFlagged = true
		report.Issues = append(report.Issues, "moderation flagged content")
		p.incVerdict(verdictRejected)
		return report, nil
	}

	verdict, err := p.review(ctx, report.Sanitized)
	if err != nil {
		if ctx.Err() != nil {
			return domain.SafetyReport{}, ctx.Err()
		}
		p.logger.Warn("Compliance review unavailable, rejecting content", zap.Error(err))
		report.Issues = append(report.Issues, "compliance review unavailable")
		p.incVerdict(verdictFailClosed)
		return report, nil
	}

	report.Sanitized = applyVerdict(report.Sanitized, verdict)
	if !verdict.Approved {
		report.Issues = append(report.Issues, verdict.Issues...)
		if len(verdict.Issues) == 0 {
			report.Issues = append(report.Issues, "compliance review rejected content")
		}
		p.incVerdict(verdictRejected)
		return report, nil
	}

	report.Passed = true
	p.incVerdict(verdictPassed)
	return report, nil
}

// moderate checks every learner-visible field in a single provider call.
func (p *Pipeline) moderate(ctx context.Context, lesson domain.Lesson) (bool, error) {
	parts := []string{lesson.Topic, lesson.Content, lesson.Scenario, lesson.QuizQuestion}
	parts = append(parts, lesson.KeyPoints...)
	parts = append(parts, lesson.QuizOptions...)

	result, err := p.moderator.Moderate(ctx, strings.Join(parts, "\n"))
	if err != nil {
		return false, fmt.Errorf("moderate lesson: %w", err)
	}
	if result.Flagged {
		p.logger.Info("Moderation flagged lesson",
			zap.String("topic", lesson.Topic),
			zap.Strings("categories", result.Categories))
	}
	return result.Flagged, nil
}

func (p *Pipeline) review(ctx context.Context, lesson domain.Lesson) (reviewVerdict, error) {
	prompt := buildReviewPrompt(lesson)

	var verdict reviewVerdict
	err := retry.Do(ctx, p.cfg.ReviewBackoff, func(ctx context.Context) error {
		raw, err := p.completer.Complete(ctx, prompt, reviewTemperature)
		if err != nil {
			return fmt.Errorf("compliance review call: %w", err)
		}
		verdict, err = parseReviewVerdict(raw)
		return err
	})
	if err != nil {
		return reviewVerdict{}, err
	}
	return verdict, nil
}

func (p *Pipeline) incVerdict(v string) {
	if p.verdicts != nil {
		p.verdicts.WithLabelValues(v).Inc()
	}
}
