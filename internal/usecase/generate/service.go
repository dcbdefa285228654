package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lumenlearn/lumen/internal/domain"
	"github.com/lumenlearn/lumen/internal/repository/respcache"
	"github.com/lumenlearn/lumen/internal/retry"
)

// maxParseRetries bounds corrective re-prompting after malformed model
// output. The budget is per generation attempt, not per request.
const maxParseRetries = 3

// Config tunes the generator.
type Config struct {
	Temperature float32
	CacheTTL    time.Duration
	Completion  retry.Policy // transient completion errors
}

// Service generates lessons. Every lesson that leaves the service has
// passed validation and the safety pipeline.
type Service struct {
	completer domain.Completer
	limiter   limiter
	cache     cache
	safety    checker
	cfg       Config
	logger    *zap.Logger
}

func New(
	completer domain.Completer,
	lim limiter,
	c cache,
	safety checker,
	cfg Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		completer: completer,
		limiter:   lim,
		cache:     c,
		safety:    safety,
		cfg:       cfg,
		logger:    logger,
	}
}

// Generate returns a safe, validated lesson for the request. Identical
// requests within the cache TTL share one model call; the rate limiter
// is consulted only when a model call is actually needed, so cache hits
// never consume budget.
func (s *Service) Generate(ctx context.Context, req Request) (domain.Lesson, error) {
	key := respcache.Key(req.Topic, req.Difficulty, req.LearnerContext)

	data, err := s.cache.GetOrCompute(ctx, key, s.cfg.CacheTTL, func(ctx context.Context) ([]byte, error) {
		allowed, err := s.limiter.Allow(ctx, req.LearnerID, req.Origin)
		if err != nil {
			return nil, fmt.Errorf("rate limit check: %w", err)
		}
		if !allowed {
			return nil, domain.ErrRateLimited
		}
		return s.generateSafe(ctx, req)
	})
	if err != nil {
		return domain.Lesson{}, err
	}

	var lesson domain.Lesson
	if err := json.Unmarshal(data, &lesson); err != nil {
		return domain.Lesson{}, fmt.Errorf("decode cached lesson: %w", err)
	}
	return lesson, nil
}

// generateSafe runs the full attempt chain: generate, safety-check, and
// on a failed report regenerate once from scratch before giving up.
func (s *Service) generateSafe(ctx context.Context, req Request) ([]byte, error) {
	var lastIssues []string
	for attempt := 0; attempt < 2; attempt++ {
		lesson, err := s.generateOnce(ctx, req)
		if err != nil {
			return nil, err
		}

		report, err := s.safety.Check(ctx, lesson)
		if err != nil {
			return nil, err
		}
		if report.Passed {
			data, err := json.Marshal(report.Sanitized)
			if err != nil {
				return nil, fmt.Errorf("encode lesson: %w", err)
			}
			return data, nil
		}

		lastIssues = report.Issues
		s.logger.Info("Lesson failed safety check",
			zap.String("topic", req.Topic),
			zap.Int("attempt", attempt+1),
			zap.Strings("issues", report.Issues))
	}
	return nil, fmt.Errorf("%w: safety issues: %s",
		domain.ErrSafetyRejected, strings.Join(lastIssues, "; "))
}

// generateOnce calls the model and parses its output, re-prompting with
// a corrective message on malformed responses.
func (s *Service) generateOnce(ctx context.Context, req Request) (domain.Lesson, error) {
	base := buildPrompt(req)
	prompt := base

	var parseErr error
	for attempt := 0; attempt <= maxParseRetries; attempt++ {
		raw, err := s.complete(ctx, prompt)
		if err != nil {
			return domain.Lesson{}, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
		}

		var lesson domain.Lesson
		lesson, parseErr = parseLesson(raw)
		if parseErr == nil {
			lesson.Topic = req.Topic
			return lesson, nil
		}
		prompt = correctivePrompt(base, parseErr)
	}
	return domain.Lesson{}, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, parseErr)
}

func (s *Service) complete(ctx context.Context, prompt string) (string, error) {
	var raw string
	err := retry.Do(ctx, s.cfg.Completion, func(ctx context.Context) error {
		var err error
		raw, err = s.completer.Complete(ctx, prompt, s.cfg.Temperature)
		return err
	})
	return raw, err
}

func parseLesson(raw string) (domain.Lesson, error) {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, "{"); i > 0 {
		raw = raw[i:]
	}
	if i := strings.LastIndex(raw, "}"); i >= 0 {
		raw = raw[:i+1]
	}

	var lesson domain.Lesson
	if err := json.Unmarshal([]byte(raw), &lesson); err != nil {
		return domain.Lesson{}, fmt.Errorf("%w: not valid JSON: %v", domain.ErrInvalidLesson, err)
	}
	if err := lesson.Validate(); err != nil {
		return domain.Lesson{}, err
	}
	return lesson, nil
}
