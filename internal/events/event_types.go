package events

import (
	"time"

	"github.com/spec-kit/adoption-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventApplicationSubmitted EventType = "application_submitted"
	EventPetSelected          EventType = "pet_selected"
	EventApplicationReviewed  EventType = "application_reviewed"
	EventPetStatusOverridden  EventType = "pet_status_overridden"
	EventUserRoleChanged      EventType = "user_role_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID            string      `json:"id"`
	Type          EventType   `json:"type"`
	ApplicationID string      `json:"application_id,omitempty"`
	ActorID       string      `json:"actor_id"`
	Timestamp     time.Time   `json:"timestamp"`
	Payload       interface{} `json:"payload"`
}

// ApplicationSubmittedPayload payload.
type ApplicationSubmittedPayload struct {
	UserID        string `json:"user_id"`
	AnswerCount   int    `json:"answer_count"`
	QuestionCount int    `json:"question_count"`
}

// PetSelectedPayload payload.
type PetSelectedPayload struct {
	UserID string `json:"user_id"`
	PetID  int64  `json:"pet_id"`
}

// ApplicationReviewedPayload payload.
type ApplicationReviewedPayload struct {
	UserID     string                   `json:"user_id"`
	ReviewerID string                   `json:"reviewer_id"`
	Decision   domain.ReviewDecision    `json:"decision"`
	NewStatus  domain.ApplicationStatus `json:"new_status"`
	PetID      *int64                   `json:"pet_id,omitempty"`
}

// PetStatusOverriddenPayload payload.
type PetStatusOverriddenPayload struct {
	PetID     int64            `json:"pet_id"`
	OldStatus domain.PetStatus `json:"old_status"`
	NewStatus domain.PetStatus `json:"new_status"`
	StaffID   string           `json:"staff_id"`
}

// UserRoleChangedPayload payload.
type UserRoleChangedPayload struct {
	UserID  string      `json:"user_id"`
	OldRole domain.Role `json:"old_role"`
	NewRole domain.Role `json:"new_role"`
}
