package dto

import (
	"time"

	"github.com/spec-kit/adoption-portal/internal/domain"
)

// SubmitQuestionnaireRequest carries the applicant's answers keyed by
// question id.
type SubmitQuestionnaireRequest struct {
	Answers map[int64]string `json:"answers"`
}

// SelectPetRequest payload for attaching a pet to the open attempt.
type SelectPetRequest struct {
	PetID int64 `json:"pet_id"`
}

// ReviewRequest payload for a staff verdict.
type ReviewRequest struct {
	Decision domain.ReviewDecision `json:"decision"`
}

// ApplicationResponse adoption attempt view.
type ApplicationResponse struct {
	ID          string                   `json:"id"`
	ExternalKey string                   `json:"external_key"`
	UserID      string                   `json:"user_id"`
	Status      domain.ApplicationStatus `json:"status"`
	PetID       *int64                   `json:"pet_id,omitempty"`
	Responses   map[int64]string         `json:"responses"`
	SubmittedAt time.Time                `json:"submitted_at"`
	ReviewedAt  *time.Time               `json:"reviewed_at,omitempty"`
	ReviewerID  *string                  `json:"reviewer_id,omitempty"`
}
