package dto

import (
	"time"

	"github.com/spec-kit/adoption-portal/internal/domain"
)

// PetRequest payload for create/update.
type PetRequest struct {
	Name        string           `json:"name"`
	Species     string           `json:"species"`
	Breed       string           `json:"breed"`
	Age         int              `json:"age"`
	Description string           `json:"description"`
	Status      domain.PetStatus `json:"status"`
	ImageURL    string           `json:"image_url"`
}

// PetStatusRequest payload for a staff status override.
type PetStatusRequest struct {
	Status domain.PetStatus `json:"status"`
}

// PetResponse public pet view.
type PetResponse struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Species     string           `json:"species"`
	Breed       string           `json:"breed,omitempty"`
	Age         int              `json:"age"`
	Description string           `json:"description,omitempty"`
	Status      domain.PetStatus `json:"status"`
	ImageURL    string           `json:"image_url,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
