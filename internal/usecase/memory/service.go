// Package memory manages bounded per-learner history and skill estimates.
// Sessions are owned exclusively by this manager: all mutations go through
// Append, serialized per learner.
package memory

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lumenlearn/lumen/internal/db"
	"github.com/lumenlearn/lumen/internal/domain"
)

// skillAlpha is the exponential-moving-average weight of the newest quiz
// outcome in the topic skill estimate.
const skillAlpha = 0.3

// weakWindow is how many recent quiz attempts per topic the weak-area
// classification looks at.
const weakWindow = 3

// Accuracy thresholds for entering and leaving the weak-area set.
const (
	weakBelow  = 0.5
	clearAbove = 0.8
)

// lockStripes bounds the memory spent on per-learner serialization. Two
// learners hashing to the same stripe contend but stay correct.
const lockStripes = 256

// Service implements the session memory manager.
type Service struct {
	repo   Repository
	logger *zap.Logger

	locks [lockStripes]sync.Mutex
}

// New creates a memory manager.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Get returns the learner's session, creating a default one (empty
// history, neutral skill baseline) when absent.
func (s *Service) Get(ctx context.Context, learnerID string) (*domain.LearnerSession, error) {
	sess, err := s.repo.Load(ctx, learnerID)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.NewLearnerSession(learnerID), nil
		}
		return nil, err
	}
	return sess, nil
}

// Append records an interaction: bounds the history, updates the topic
// skill estimate for quiz interactions, and reclassifies weak areas.
// The read-modify-write cycle is atomic per learner; different learners
// proceed independently.
func (s *Service) Append(ctx context.Context, learnerID string, in domain.Interaction) (*domain.LearnerSession, error) {
	lock := s.learnerLock(learnerID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.Get(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now().UTC()
	}

	sess.History = append(sess.History, in)
	if len(sess.History) > domain.MaxHistory {
		sess.History = sess.History[len(sess.History)-domain.MaxHistory:]
	}

	if in.Kind == domain.InteractionQuiz && in.Correct != nil && in.Topic != "" {
		outcome := 0.0
		if *in.Correct {
			outcome = 1.0
		}
		prev := sess.Skill(in.Topic)
		sess.SkillLevels[in.Topic] = (1-skillAlpha)*prev + skillAlpha*outcome

		s.reclassifyWeakArea(sess, in.Topic)
	}

	sess.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("append interaction: %w", err)
	}
	return sess, nil
}

// reclassifyWeakArea applies the rolling-accuracy thresholds for a topic:
// below 50% over the last quiz attempts marks it weak, above 80% clears it.
func (s *Service) reclassifyWeakArea(sess *domain.LearnerSession, topic string) {
	var correct, total int
	for i := len(sess.History) - 1; i >= 0 && total < weakWindow; i-- {
		in := sess.History[i]
		if in.Kind != domain.InteractionQuiz || in.Topic != topic || in.Correct == nil {
			continue
		}
		total++
		if *in.Correct {
			correct++
		}
	}
	if total == 0 {
		return
	}

	accuracy := float64(correct) / float64(total)
	switch {
	case accuracy < weakBelow:
		if !sess.IsWeak(topic) {
			sess.WeakAreas = append(sess.WeakAreas, topic)
		}
	case accuracy > clearAbove:
		sess.WeakAreas = removeTopic(sess.WeakAreas, topic)
	}
}

func (s *Service) learnerLock(learnerID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(learnerID))
	return &s.locks[h.Sum32()%lockStripes]
}

func removeTopic(areas []string, topic string) []string {
	out := areas[:0]
	for _, t := range areas {
		if t != topic {
			out = append(out, t)
		}
	}
	return out
}
