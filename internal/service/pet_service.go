package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/adoption-portal/internal/domain"
	"github.com/spec-kit/adoption-portal/internal/events"
	"github.com/spec-kit/adoption-portal/internal/repository"
	apperrors "github.com/spec-kit/adoption-portal/pkg/util"
)

// PetService manages the adoptable pet inventory. Reads are public; every
// mutation requires at least STAFF and is re-checked here regardless of what
// the route layer enforced.
type PetService struct {
	pets         repository.PetRepository
	applications repository.ApplicationRepository
	dispatcher   events.Dispatcher
}

// PetInput describes pet creation/update payloads.
type PetInput struct {
	Name        string
	Species     string
	Breed       string
	Age         int
	Description string
	Status      domain.PetStatus
	ImageURL    string
}

// PetSearchFilter narrows inventory listings; empty fields pass all values.
type PetSearchFilter struct {
	Species string
	Breed   string
	Status  string
}

// StatusConflict pairs a pet with the linked application whose status
// disagrees with it; produced when a staff override bypassed the workflow.
type StatusConflict struct {
	Pet           domain.Pet               `json:"pet"`
	ApplicationID string                   `json:"application_id"`
	RecordStatus  domain.ApplicationStatus `json:"record_status"`
	Detail        string                   `json:"detail"`
}

// NewPetService constructs the service.
func NewPetService(petRepo repository.PetRepository, applicationRepo repository.ApplicationRepository, dispatcher events.Dispatcher) *PetService {
	return &PetService{pets: petRepo, applications: applicationRepo, dispatcher: dispatcher}
}

// GetPet fetches one pet.
func (s *PetService) GetPet(ctx context.Context, id int64) (*domain.Pet, error) {
	pet, err := s.pets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("pet", map[string]any{"pet_id": id})
		}
		return nil, mapStoreErr(err, "pet")
	}
	return pet, nil
}

// SearchPets lists pets matching the filter; filters combine by AND.
func (s *PetService) SearchPets(ctx context.Context, filter PetSearchFilter) ([]domain.Pet, error) {
	repoFilter := repository.PetFilter{}
	if species := strings.TrimSpace(filter.Species); species != "" {
		repoFilter.Species = &species
	}
	if breed := strings.TrimSpace(filter.Breed); breed != "" {
		repoFilter.Breed = &breed
	}
	if raw := strings.TrimSpace(filter.Status); raw != "" {
		status := domain.PetStatus(strings.ToUpper(raw))
		if !status.Valid() {
			return nil, apperrors.NewValidationError("unknown pet status filter", map[string]any{"status": raw})
		}
		repoFilter.Status = &status
	}
	pets, err := s.pets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, mapStoreErr(err, "pet")
	}
	return pets, nil
}

// CreatePet adds an animal to the inventory.
func (s *PetService) CreatePet(ctx context.Context, staff *domain.User, input PetInput) (*domain.Pet, error) {
	if err := requireStaff(staff); err != nil {
		return nil, err
	}
	pet, err := petFromInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.pets.Create(ctx, pet); err != nil {
		return nil, mapStoreErr(err, "pet")
	}
	return pet, nil
}

// UpdatePet rewrites a pet, including direct status edits. A status change
// that bypasses the workflow is the deliberate administrative override; it is
// permitted unconditionally and flagged via ListStatusConflicts when it
// disagrees with a linked record.
func (s *PetService) UpdatePet(ctx context.Context, staff *domain.User, id int64, input PetInput) (*domain.Pet, error) {
	if err := requireStaff(staff); err != nil {
		return nil, err
	}
	existing, err := s.pets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("pet", map[string]any{"pet_id": id})
		}
		return nil, mapStoreErr(err, "pet")
	}
	pet, err := petFromInput(input)
	if err != nil {
		return nil, err
	}
	pet.ID = id
	pet.CreatedAt = existing.CreatedAt
	if err := s.pets.Update(ctx, pet); err != nil {
		return nil, mapStoreErr(err, "pet")
	}
	if existing.Status != pet.Status {
		s.publishOverride(ctx, staff.ID, pet.ID, existing.Status, pet.Status)
	}
	return pet, nil
}

// OverrideStatus writes a pet status directly, skipping the workflow's
// transition rules.
func (s *PetService) OverrideStatus(ctx context.Context, staff *domain.User, id int64, status domain.PetStatus) (*domain.Pet, error) {
	if err := requireStaff(staff); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown pet status", map[string]any{"status": status})
	}
	existing, err := s.pets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("pet", map[string]any{"pet_id": id})
		}
		return nil, mapStoreErr(err, "pet")
	}
	if err := s.pets.SetStatus(ctx, id, status); err != nil {
		return nil, mapStoreErr(err, "pet")
	}
	if existing.Status != status {
		s.publishOverride(ctx, staff.ID, id, existing.Status, status)
	}
	existing.Status = status
	return existing, nil
}

// DeletePet removes a pet from the inventory.
func (s *PetService) DeletePet(ctx context.Context, staff *domain.User, id int64) error {
	if err := requireStaff(staff); err != nil {
		return err
	}
	if err := s.pets.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("pet", map[string]any{"pet_id": id})
		}
		return mapStoreErr(err, "pet")
	}
	return nil
}

// ListStatusConflicts reports pets whose status disagrees with the linked
// application record, the data-integrity condition an override can produce.
func (s *PetService) ListStatusConflicts(ctx context.Context, staff *domain.User) ([]StatusConflict, error) {
	if err := requireStaff(staff); err != nil {
		return nil, err
	}

	var conflicts []StatusConflict

	submitted, err := s.applications.ListByStatus(ctx, domain.ApplicationStatusSubmitted)
	if err != nil {
		return nil, mapStoreErr(err, "application")
	}
	for _, record := range submitted {
		if record.PetID == nil {
			continue
		}
		pet, err := s.pets.GetByID(ctx, *record.PetID)
		if err != nil {
			continue
		}
		if pet.Status != domain.PetStatusPending {
			conflicts = append(conflicts, StatusConflict{
				Pet:           *pet,
				ApplicationID: record.ID,
				RecordStatus:  record.Status,
				Detail:        "pet selected by a pending attempt is not PENDING",
			})
		}
	}

	approved, err := s.applications.ListByStatus(ctx, domain.ApplicationStatusApproved)
	if err != nil {
		return nil, mapStoreErr(err, "application")
	}
	for _, record := range approved {
		if record.PetID == nil {
			continue
		}
		pet, err := s.pets.GetByID(ctx, *record.PetID)
		if err != nil {
			continue
		}
		if pet.Status != domain.PetStatusAdopted {
			conflicts = append(conflicts, StatusConflict{
				Pet:           *pet,
				ApplicationID: record.ID,
				RecordStatus:  record.Status,
				Detail:        "pet on an approved attempt is not ADOPTED",
			})
		}
	}

	return conflicts, nil
}

func (s *PetService) publishOverride(ctx context.Context, staffID string, petID int64, from, to domain.PetStatus) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventPetStatusOverridden,
		ActorID:   staffID,
		Timestamp: time.Now(),
		Payload: events.PetStatusOverriddenPayload{
			PetID:     petID,
			OldStatus: from,
			NewStatus: to,
			StaffID:   staffID,
		},
	})
}

func petFromInput(input PetInput) (*domain.Pet, error) {
	name := strings.TrimSpace(input.Name)
	species := strings.TrimSpace(input.Species)
	breed := strings.TrimSpace(input.Breed)
	if name == "" || species == "" || breed == "" {
		return nil, apperrors.NewValidationError("name, species, breed required", nil)
	}
	if input.Age < 0 {
		return nil, apperrors.NewValidationError("age cannot be negative", nil)
	}
	status := input.Status
	if status == "" {
		status = domain.PetStatusAvailable
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown pet status", map[string]any{"status": status})
	}
	return &domain.Pet{
		Name:        name,
		Species:     species,
		Breed:       breed,
		Age:         input.Age,
		Description: strings.TrimSpace(input.Description),
		Status:      status,
		ImageURL:    strings.TrimSpace(input.ImageURL),
	}, nil
}

func requireStaff(caller *domain.User) error {
	if caller == nil {
		return apperrors.NewUnauthenticated("caller required")
	}
	if !caller.Role.AtLeast(domain.RoleStaff) {
		return apperrors.NewForbidden("staff role required")
	}
	return nil
}
