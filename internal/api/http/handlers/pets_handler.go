package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/adoption-portal/internal/api/dto"
	"github.com/spec-kit/adoption-portal/internal/auth"
	"github.com/spec-kit/adoption-portal/internal/domain"
	"github.com/spec-kit/adoption-portal/internal/service"
	apperrors "github.com/spec-kit/adoption-portal/pkg/util"
)

// PetsHandler manages the pet inventory endpoints. Browsing is public;
// mutations require staff.
type PetsHandler struct {
	service *service.PetService
}

// NewPetsHandler constructs handler.
func NewPetsHandler(petService *service.PetService) *PetsHandler {
	return &PetsHandler{service: petService}
}

// SearchPets GET /pets.
func (h *PetsHandler) SearchPets(c *fiber.Ctx) error {
	filter := service.PetSearchFilter{
		Species: strings.TrimSpace(c.Query("species")),
		Breed:   strings.TrimSpace(c.Query("breed")),
		Status:  strings.ToUpper(strings.TrimSpace(c.Query("status"))),
	}
	pets, err := h.service.SearchPets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.PetResponse, 0, len(pets))
	for i := range pets {
		items = append(items, petResponse(&pets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetPet GET /pets/:id.
func (h *PetsHandler) GetPet(c *fiber.Ctx) error {
	id, err := parsePetID(c)
	if err != nil {
		return err
	}
	pet, err := h.service.GetPet(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": petResponse(pet)})
}

// CreatePet POST /pets.
func (h *PetsHandler) CreatePet(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthenticated("user required")
	}
	var req dto.PetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	pet, err := h.service.CreatePet(c.UserContext(), principal.User, petInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": petResponse(pet)})
}

// UpdatePet PUT /pets/:id.
func (h *PetsHandler) UpdatePet(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthenticated("user required")
	}
	id, err := parsePetID(c)
	if err != nil {
		return err
	}
	var req dto.PetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	pet, err := h.service.UpdatePet(c.UserContext(), principal.User, id, petInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": petResponse(pet)})
}

// OverrideStatus PUT /pets/:id/status.
func (h *PetsHandler) OverrideStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthenticated("user required")
	}
	id, err := parsePetID(c)
	if err != nil {
		return err
	}
	var req dto.PetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status := domain.PetStatus(strings.ToUpper(strings.TrimSpace(string(req.Status))))
	pet, err := h.service.OverrideStatus(c.UserContext(), principal.User, id, status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": petResponse(pet)})
}

// DeletePet DELETE /pets/:id.
func (h *PetsHandler) DeletePet(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthenticated("user required")
	}
	id, err := parsePetID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeletePet(c.UserContext(), principal.User, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListStatusConflicts GET /pets/conflicts.
func (h *PetsHandler) ListStatusConflicts(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthenticated("user required")
	}
	conflicts, err := h.service.ListStatusConflicts(c.UserContext(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": conflicts})
}

func parsePetID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid pet id", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}

func petInput(req dto.PetRequest) service.PetInput {
	return service.PetInput{
		Name:        req.Name,
		Species:     req.Species,
		Breed:       req.Breed,
		Age:         req.Age,
		Description: req.Description,
		Status:      req.Status,
		ImageURL:    req.ImageURL,
	}
}

func petResponse(pet *domain.Pet) dto.PetResponse {
	return dto.PetResponse{
		ID:          pet.ID,
		Name:        pet.Name,
		Species:     pet.Species,
		Breed:       pet.Breed,
		Age:         pet.Age,
		Description: pet.Description,
		Status:      pet.Status,
		ImageURL:    pet.ImageURL,
		CreatedAt:   pet.CreatedAt,
		UpdatedAt:   pet.UpdatedAt,
	}
}
