package dto

import (
	"time"

	"github.com/spec-kit/adoption-portal/internal/domain"
)

// QuestionRequest payload for catalog edits.
type QuestionRequest struct {
	Text     string              `json:"text"`
	Kind     domain.QuestionKind `json:"kind"`
	Options  []string            `json:"options"`
	Required bool                `json:"required"`
	Position int                 `json:"position"`
}

// QuestionResponse questionnaire entry view.
type QuestionResponse struct {
	ID        int64               `json:"id"`
	Text      string              `json:"text"`
	Kind      domain.QuestionKind `json:"kind"`
	Options   []string            `json:"options,omitempty"`
	Required  bool                `json:"required"`
	Position  int                 `json:"position"`
	CreatedAt time.Time           `json:"created_at"`
}

// ReplaceQuestionnaireRequest swaps the whole catalog in one call.
type ReplaceQuestionnaireRequest struct {
	Questions []QuestionRequest `json:"questions"`
}
