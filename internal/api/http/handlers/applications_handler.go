package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/adoption-portal/internal/api/dto"
	"github.com/spec-kit/adoption-portal/internal/auth"
	"github.com/spec-kit/adoption-portal/internal/domain"
	"github.com/spec-kit/adoption-portal/internal/service"
	apperrors "github.com/spec-kit/adoption-portal/pkg/util"
)

// ApplicationsHandler manages the adoption workflow endpoints for applicants
// and reviewers.
type ApplicationsHandler struct {
	service *service.WorkflowService
}

// NewApplicationsHandler constructs handler.
func NewApplicationsHandler(workflowService *service.WorkflowService) *ApplicationsHandler {
	return &ApplicationsHandler{service: workflowService}
}

// Eligibility GET /applications/eligibility.
func (h *ApplicationsHandler) Eligibility(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthenticated("user required")
	}
	eligibility, err := h.service.CanSelectPet(c.UserContext(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eligibility})
}

// Submit POST /applications.
func (h *ApplicationsHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthenticated("user required")
	}
	var req dto.SubmitQuestionnaireRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	record, err := h.service.SubmitQuestionnaire(c.UserContext(), principal.User, req.Answers)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": applicationResponse(record)})
}

// SelectPet POST /applications/pet.
func (h *ApplicationsHandler) SelectPet(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthenticated("user required")
	}
	var req dto.SelectPetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.PetID <= 0 {
		return apperrors.NewValidationError("pet_id required", nil)
	}
	record, err := h.service.SelectPet(c.UserContext(), principal.User, req.PetID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationResponse(record)})
}

// ListMine GET /applications.
func (h *ApplicationsHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthenticated("user required")
	}
	records, err := h.service.ListUserApplications(c.UserContext(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationResponses(records)})
}

// ListOpenReviews GET /reviews.
func (h *ApplicationsHandler) ListOpenReviews(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthenticated("user required")
	}
	records, err := h.service.ListOpenReviews(c.UserContext(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationResponses(records)})
}

// Review POST /reviews/:id.
func (h *ApplicationsHandler) Review(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthenticated("user required")
	}
	var req dto.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	decision := domain.ReviewDecision(strings.ToUpper(strings.TrimSpace(string(req.Decision))))
	record, err := h.service.ReviewDecision(c.UserContext(), principal.User, c.Params("id"), decision)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationResponse(record)})
}

func applicationResponse(record *domain.ApplicationRecord) dto.ApplicationResponse {
	return dto.ApplicationResponse{
		ID:          record.ID,
		ExternalKey: record.ExternalKey,
		UserID:      record.UserID,
		Status:      record.Status,
		PetID:       record.PetID,
		Responses:   record.Responses,
		SubmittedAt: record.SubmittedAt,
		ReviewedAt:  record.ReviewedAt,
		ReviewerID:  record.ReviewerID,
	}
}

func applicationResponses(records []domain.ApplicationRecord) []dto.ApplicationResponse {
	items := make([]dto.ApplicationResponse, 0, len(records))
	for i := range records {
		items = append(items, applicationResponse(&records[i]))
	}
	return items
}
