// Package generate produces structured micro-lessons: prompt assembly
// over retrieved context, structured-output parsing with corrective
// retries, and the safety gate every lesson must clear.
package generate

import (
	"context"
	"time"

	"github.com/lumenlearn/lumen/internal/domain"
	"github.com/lumenlearn/lumen/internal/repository/respcache"
)

// limiter gates completion spend before any model call is made.
type limiter interface {
	Allow(ctx context.Context, userID, origin string) (bool, error)
}

// cache deduplicates identical lesson requests across callers.
type cache interface {
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute respcache.ComputeFunc) ([]byte, error)
}

// checker is the safety pipeline the generated lesson must pass.
type checker interface {
	Check(ctx context.Context, lesson domain.Lesson) (domain.SafetyReport, error)
}

// Request describes one lesson to generate. LearnerContext is a short
// textual digest of the learner's level and weak areas; it is part of
// the cache identity, so equal digests share a cached lesson.
type Request struct {
	Topic          string
	Difficulty     string
	LearnerID      string
	Origin         string
	LearnerContext string
	Chunks         []domain.ScoredChunk
}
