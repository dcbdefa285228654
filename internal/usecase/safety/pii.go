package safety

import (
	"regexp"

	"github.com/lumenlearn/lumen/internal/domain"
)

const redactedMark = "[REDACTED]"

var piiPatterns = []struct {
	kind domain.PIIKind
	re   *regexp.Regexp
}{
	{domain.PIIEmail, regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)},
	{domain.PIINationalID, regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{domain.PIIPaymentCard, regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`)},
	{domain.PIIPhone, regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)},
}

// redactPII replaces every PII match in s and reports which kinds were
// found. National IDs and payment cards are matched before phone numbers
// so the broader phone pattern cannot claim their digit groups.
func redactPII(s string) (string, []domain.PIIKind) {
	var found []domain.PIIKind
	for _, p := range piiPatterns {
		if !p.re.MatchString(s) {
			continue
		}
		s = p.re.ReplaceAllString(s, redactedMark)
		found = append(found, p.kind)
	}
	return s, found
}

// redactLesson scans every learner-visible field of the lesson and
// returns the sanitized copy plus the union of PII kinds found.
func redactLesson(lesson domain.Lesson) (domain.Lesson, []domain.PIIKind) {
	seen := make(map[domain.PIIKind]bool)
	var kinds []domain.PIIKind

	redact := func(s string) string {
		out, found := redactPII(s)
		for _, k := range found {
			if !seen[k] {
				seen[k] = true
				kinds = append(kinds, k)
			}
		}
		return out
	}

	lesson.Topic = redact(lesson.Topic)
	lesson.Content = redact(lesson.Content)
	lesson.Scenario = redact(lesson.Scenario)
	lesson.QuizQuestion = redact(lesson.QuizQuestion)
	for i := range lesson.KeyPoints {
		lesson.KeyPoints[i] = redact(lesson.KeyPoints[i])
	}
	for i := range lesson.QuizOptions {
		lesson.QuizOptions[i] = redact(lesson.QuizOptions[i])
	}
	return lesson, kinds
}
