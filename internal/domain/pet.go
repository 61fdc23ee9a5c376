package domain

import "time"

// PetStatus enumerates adoption availability states.
type PetStatus string

const (
	PetStatusAvailable PetStatus = "AVAILABLE"
	PetStatusPending   PetStatus = "PENDING"
	PetStatusAdopted   PetStatus = "ADOPTED"
)

// Valid reports whether the status is a known state.
func (s PetStatus) Valid() bool {
	switch s {
	case PetStatusAvailable, PetStatusPending, PetStatusAdopted:
		return true
	}
	return false
}

// Pet is an adoptable animal. Status is shared mutable state: the workflow
// flips it on submission/review, and staff may override it directly.
type Pet struct {
	ID          int64
	Name        string
	Species     string
	Breed       string
	Age         int
	Description string
	Status      PetStatus
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
