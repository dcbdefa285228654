package domain

import "time"

// MaxHistory bounds the per-learner interaction history.
const MaxHistory = 10

// SkillBaseline is the neutral starting skill estimate for unseen topics.
const SkillBaseline = 0.5

// Interaction kinds recorded in a learner session.
const (
	InteractionChat     = "chat"
	InteractionLesson   = "lesson"
	InteractionQuiz     = "quiz"
	InteractionScenario = "scenario"
)

// Interaction is one recorded exchange with a learner.
type Interaction struct {
	Kind      string    `json:"kind"`
	Topic     string    `json:"topic"`
	Correct   *bool     `json:"correct,omitempty"` // quiz interactions only
	Timestamp time.Time `json:"timestamp"`
}

// LearnerSession is bounded per-learner state used to personalize
// generation. Owned exclusively by the session memory manager; no other
// component mutates it directly.
type LearnerSession struct {
	LearnerID   string             `json:"learner_id"`
	History     []Interaction      `json:"history"`
	SkillLevels map[string]float64 `json:"topic_skill_levels"`
	WeakAreas   []string           `json:"weak_areas"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// NewLearnerSession creates a default session: empty history, all skills
// at the neutral baseline.
func NewLearnerSession(learnerID string) *LearnerSession {
	return &LearnerSession{
		LearnerID:   learnerID,
		SkillLevels: map[string]float64{},
	}
}

// Skill returns the skill estimate for a topic, defaulting to the baseline.
func (s *LearnerSession) Skill(topic string) float64 {
	if v, ok := s.SkillLevels[topic]; ok {
		return v
	}
	return SkillBaseline
}

// IsWeak reports whether the topic is currently a weak area.
func (s *LearnerSession) IsWeak(topic string) bool {
	for _, t := range s.WeakAreas {
		if t == topic {
			return true
		}
	}
	return false
}
