package domain

import "fmt"

// QuizOptionCount is the required number of quiz options per lesson.
const QuizOptionCount = 4

// Difficulty levels for generated content.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Lesson is a structured micro-lesson produced by the content generator.
// The quiz contract (exactly 4 options, correct index in range) is a hard
// invariant: violating output is rejected, never surfaced to a learner.
type Lesson struct {
	Topic        string   `json:"topic"`
	Content      string   `json:"content"`
	KeyPoints    []string `json:"key_points"`
	Scenario     string   `json:"scenario"`
	QuizQuestion string   `json:"quiz_question"`
	QuizOptions  []string `json:"quiz_options"`
	CorrectIndex int      `json:"correct_answer"`
}

// Validate checks the lesson against the structural contract.
func (l *Lesson) Validate() error {
	if l.Topic == "" {
		return fmt.Errorf("%w: missing topic", ErrInvalidLesson)
	}
	if l.Content == "" {
		return fmt.Errorf("%w: missing content", ErrInvalidLesson)
	}
	if len(l.KeyPoints) == 0 {
		return fmt.Errorf("%w: missing key_points", ErrInvalidLesson)
	}
	if l.QuizQuestion == "" {
		return fmt.Errorf("%w: missing quiz_question", ErrInvalidLesson)
	}
	if len(l.QuizOptions) != QuizOptionCount {
		return fmt.Errorf("%w: quiz_options must have exactly %d entries, got %d",
			ErrInvalidLesson, QuizOptionCount, len(l.QuizOptions))
	}
	if l.CorrectIndex < 0 || l.CorrectIndex >= QuizOptionCount {
		return fmt.Errorf("%w: correct_answer %d out of range [0,%d]",
			ErrInvalidLesson, l.CorrectIndex, QuizOptionCount-1)
	}
	return nil
}

// ValidDifficulty reports whether d is a known difficulty level.
func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}
