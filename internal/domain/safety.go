package domain

// PIIKind identifies a class of structured personal identifier.
type PIIKind string

// Detected PII kinds.
const (
	PIIEmail       PIIKind = "email"
	PIIPhone       PIIKind = "phone"
	PIINationalID  PIIKind = "national_id"
	PIIPaymentCard PIIKind = "payment_card"
)

// SafetyReport is the outcome of the safety pipeline over one generated
// artifact. Derived per request, never persisted beyond it.
// Passed is true only when the moderation check did not flag the content
// and no unresolved compliance issue remains.
type SafetyReport struct {
	Passed            bool
	PIIFound          []PIIKind
	ModerationFlagged bool
	Issues            []string
	Sanitized         Lesson
}
