package domain

import "time"

// ApplicationStatus enumerates lifecycle states for adoption attempts.
// OPEN is the implicit pre-submission state and is never persisted; stored
// records are SUBMITTED until a review makes them terminal.
type ApplicationStatus string

const (
	ApplicationStatusOpen      ApplicationStatus = "OPEN"
	ApplicationStatusSubmitted ApplicationStatus = "SUBMITTED"
	ApplicationStatusApproved  ApplicationStatus = "APPROVED"
	ApplicationStatusRejected  ApplicationStatus = "REJECTED"
)

// Terminal reports whether no further transition may leave the status.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationStatusApproved || s == ApplicationStatusRejected
}

// NonTerminal reports whether the status still blocks a new attempt for the
// same user.
func (s ApplicationStatus) NonTerminal() bool {
	return s == ApplicationStatusOpen || s == ApplicationStatusSubmitted
}

// ReviewDecision is the verdict a reviewer renders on a submitted record.
type ReviewDecision string

const (
	DecisionApprove ReviewDecision = "APPROVE"
	DecisionReject  ReviewDecision = "REJECT"
)

// ApplicationRecord is one workflow thread per user per adoption attempt.
// Responses are an immutable snapshot of the answers as given against the
// questionnaire at submission time; later catalog edits never rewrite them.
type ApplicationRecord struct {
	ID          string
	ExternalKey string
	UserID      string
	Status      ApplicationStatus
	PetID       *int64
	Responses   map[int64]string
	SubmittedAt time.Time
	ReviewedAt  *time.Time
	ReviewerID  *string
}
