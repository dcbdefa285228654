package safety

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lumenlearn/lumen/internal/domain"
)

// Content principles the compliance review checks lessons against. They
// are fixed. Learner input never reaches the rubric side of the prompt.
var compliancePrinciples = []string{
	"Content must be age-appropriate for young learners.",
	"Content must encourage healthy habits and positive behavior.",
	"Content must not contain violence, fear, or distressing themes.",
	"Content must not give medical, legal, or financial advice.",
	"Content must not reference real individuals negatively.",
}

const reviewTemperature float32 = 0.0

type reviewVerdict struct {
	Approved        bool     `json:"approved"`
	Issues          []string `json:"issues"`
	RevisedContent  string   `json:"revised_content"`
	RevisedScenario string   `json:"revised_scenario"`
}

func buildReviewPrompt(lesson domain.Lesson) string {
	var b strings.Builder
	b.WriteString("You are a content compliance reviewer for a children's learning platform.\n")
	b.WriteString("Review the lesson below against these principles:\n")
	for i, p := range compliancePrinciples {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}
	b.WriteString("\nIf the lesson violates a principle, rewrite the offending prose so it complies while keeping the teaching intent. ")
	b.WriteString("Never change the quiz question, options, or answer. ")
	b.WriteString("If a violation cannot be fixed by rewriting, set approved to false and list it in issues.\n\n")
	b.WriteString("Respond with only a JSON object:\n")
	b.WriteString(`{"approved": true, "issues": [], "revised_content": "...", "revised_scenario": "..."}` + "\n\n")

	raw, _ := json.Marshal(map[string]any{
		"topic":    lesson.Topic,
		"content":  lesson.Content,
		"scenario": lesson.Scenario,
	})
	b.WriteString("Lesson:\n")
	b.Write(raw)
	return b.String()
}

func parseReviewVerdict(raw string) (reviewVerdict, error) {
	raw = strings.TrimSpace(raw)
	// Some models wrap JSON in a fenced block.
	if i := strings.Index(raw, "{"); i > 0 {
		raw = raw[i:]
	}
	if i := strings.LastIndex(raw, "}"); i >= 0 {
		raw = raw[:i+1]
	}

	var v reviewVerdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return reviewVerdict{}, fmt.Errorf("parse review verdict: %w", err)
	}
	return v, nil
}

// applyVerdict folds a review verdict back into the lesson. Only prose
// fields are writable. The quiz triple always survives untouched so a
// rewrite cannot desynchronize the question from its graded answer.
func applyVerdict(lesson domain.Lesson, v reviewVerdict) domain.Lesson {
	if v.RevisedContent != "" {
		lesson.Content = v.RevisedContent
	}
	if v.RevisedScenario != "" {
		lesson.Scenario = v.RevisedScenario
	}
	return lesson
}
