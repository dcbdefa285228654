package agent

import (
	"strings"

	"github.com/lumenlearn/lumen/internal/domain"
)

// Utterance intents driving the planning step.
const (
	intentNewTopic      = "new_topic"
	intentQuizAnswer    = "quiz_answer"
	intentClarification = "clarification"
)

var clarificationLeads = []string{
	"why",
	"how come",
	"what do you mean",
	"i don't understand",
	"i dont understand",
	"can you explain",
	"explain that again",
	"explain again",
	"i'm confused",
	"im confused",
}

// classifyIntent decides what the learner is doing. Quiz answers are
// identified by the caller-supplied quiz context, never guessed from
// the utterance alone.
func classifyIntent(req RunRequest, sess *domain.LearnerSession) string {
	if req.Quiz != nil {
		return intentQuizAnswer
	}

	u := strings.ToLower(strings.TrimSpace(req.Utterance))
	if len(sess.History) > 0 {
		for _, lead := range clarificationLeads {
			if strings.HasPrefix(u, lead) {
				return intentClarification
			}
		}
	}
	return intentNewTopic
}

var topicLeads = []string{
	"i want to learn about ",
	"teach me about ",
	"tell me about ",
	"i want to learn ",
	"teach me ",
	"what is ",
	"what are ",
	"explain ",
}

// extractTopic derives the topic from the utterance. Clarifications
// inherit the topic of the most recent interaction.
func extractTopic(req RunRequest, sess *domain.LearnerSession, intent string) string {
	if req.Quiz != nil && req.Quiz.Topic != "" {
		return req.Quiz.Topic
	}
	if intent == intentClarification {
		for i := len(sess.History) - 1; i >= 0; i-- {
			if sess.History[i].Topic != "" {
				return sess.History[i].Topic
			}
		}
	}

	u := strings.TrimSpace(req.Utterance)
	lower := strings.ToLower(u)
	for _, lead := range topicLeads {
		if strings.HasPrefix(lower, lead) {
			u = u[len(lead):]
			break
		}
	}
	return strings.TrimRight(strings.TrimSpace(u), "?.! ")
}
