package domain

import "testing"

func TestNewLearnerSession(t *testing.T) {
	s := NewLearnerSession("learner-1")
	if s.LearnerID != "learner-1" {
		t.Errorf("unexpected learner id: %s", s.LearnerID)
	}
	if s.SkillLevels == nil {
		t.Error("skill levels map must be initialized")
	}
	if len(s.History) != 0 {
		t.Error("new session must have empty history")
	}
}

func TestSkill_DefaultsToBaseline(t *testing.T) {
	s := NewLearnerSession("learner-1")
	if got := s.Skill("loans"); got != SkillBaseline {
		t.Errorf("expected baseline %v for unseen topic, got %v", SkillBaseline, got)
	}

	s.SkillLevels["loans"] = 0.8
	if got := s.Skill("loans"); got != 0.8 {
		t.Errorf("expected 0.8, got %v", got)
	}
}

func TestIsWeak(t *testing.T) {
	s := NewLearnerSession("learner-1")
	s.WeakAreas = []string{"credit", "taxes"}

	if !s.IsWeak("credit") {
		t.Error("expected credit to be weak")
	}
	if s.IsWeak("savings") {
		t.Error("expected savings not to be weak")
	}
}
