package generate

import (
	"fmt"
	"strings"

	"github.com/lumenlearn/lumen/internal/domain"
)

// exampleLesson anchors the output format. A single few-shot example is
// enough to keep small models on the schema.
const exampleLesson = `{
  "topic": "saving money",
  "content": "Saving a little bit of your allowance every week adds up. If you put aside one coin out of every five you get, you will be surprised how fast your jar fills.",
  "key_points": ["Save a small part of everything you get", "Savings grow over time", "Keep savings in one safe place"],
  "scenario": "Naya gets 5 coins a week. She wants a toy that costs 12 coins. How many weeks of saving 3 coins does she need?",
  "quiz_question": "What is the easiest way to start saving?",
  "quiz_options": ["Spend everything right away", "Save a small part of everything you get", "Borrow from a friend", "Wait for a bigger allowance"],
  "correct_answer": 1
}`

func buildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are a friendly tutor creating a short lesson for a young learner.\n\n")
	fmt.Fprintf(&b, "Topic: %s\nDifficulty: %s\n", req.Topic, req.Difficulty)
	if req.LearnerContext != "" {
		fmt.Fprintf(&b, "Learner: %s\n", req.LearnerContext)
	}

	if len(req.Chunks) > 0 {
		b.WriteString("\nUse the following reference material:\n")
		for i, sc := range req.Chunks {
			fmt.Fprintf(&b, "[%d] %s\n", i+1, sc.Chunk.Text)
		}
	}

	b.WriteString("\nRespond with only a JSON object in exactly this shape:\n")
	b.WriteString(exampleLesson)
	b.WriteString("\n\nRules: key_points has 2 to 5 entries, quiz_options has exactly ")
	fmt.Fprintf(&b, "%d entries, correct_answer is the zero-based index of the right option.\n", domain.QuizOptionCount)
	return b.String()
}

// correctivePrompt re-asks after a malformed response, naming what was
// wrong so the model can fix exactly that.
func correctivePrompt(base string, parseErr error) string {
	return fmt.Sprintf(
		"%s\nYour previous response was invalid: %v.\nRespond again with only the corrected JSON object.",
		base, parseErr)
}
