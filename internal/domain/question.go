package domain

import "time"

// QuestionKind tags the question variant; validation and rendering dispatch
// on it.
type QuestionKind string

const (
	QuestionKindText           QuestionKind = "TEXT"
	QuestionKindMultipleChoice QuestionKind = "MULTIPLE_CHOICE"
)

// Valid reports whether the kind is known.
func (k QuestionKind) Valid() bool {
	return k == QuestionKindText || k == QuestionKindMultipleChoice
}

// Question is one questionnaire entry. IDs are monotonically assigned and
// never reused after deletion. Position is the explicit ordering contract,
// not an incidental container property.
type Question struct {
	ID        int64
	Text      string
	Kind      QuestionKind
	Options   []string
	Required  bool
	Position  int
	CreatedAt time.Time
}

// AcceptsAnswer reports whether the given answer text is valid for this
// question. TEXT accepts any non-empty answer; MULTIPLE_CHOICE requires one
// of the current options.
func (q Question) AcceptsAnswer(answer string) bool {
	if answer == "" {
		return false
	}
	if q.Kind != QuestionKindMultipleChoice {
		return true
	}
	for _, opt := range q.Options {
		if opt == answer {
			return true
		}
	}
	return false
}
