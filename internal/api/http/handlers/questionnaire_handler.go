package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/adoption-portal/internal/api/dto"
	"github.com/spec-kit/adoption-portal/internal/auth"
	"github.com/spec-kit/adoption-portal/internal/domain"
	"github.com/spec-kit/adoption-portal/internal/service"
	apperrors "github.com/spec-kit/adoption-portal/pkg/util"
)

// QuestionnaireHandler manages the questionnaire catalog endpoints. Reads
// need any authenticated caller; edits need ADMIN.
type QuestionnaireHandler struct {
	service *service.CatalogService
}

// NewQuestionnaireHandler constructs handler.
func NewQuestionnaireHandler(catalogService *service.CatalogService) *QuestionnaireHandler {
	return &QuestionnaireHandler{service: catalogService}
}

// ListQuestions GET /questionnaire.
func (h *QuestionnaireHandler) ListQuestions(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthenticated("user required")
	}
	questions, err := h.service.ListQuestions(c.UserContext(), principal.User)
	if err != nil {
		return err
	}
	items := make([]dto.QuestionResponse, 0, len(questions))
	for i := range questions {
		items = append(items, questionResponse(&questions[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddQuestion POST /questionnaire.
func (h *QuestionnaireHandler) AddQuestion(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthenticated("user required")
	}
	var req dto.QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	question, err := h.service.AddQuestion(c.UserContext(), principal.User, questionInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": questionResponse(question)})
}

// UpdateQuestion PUT /questionnaire/:id.
func (h *QuestionnaireHandler) UpdateQuestion(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthenticated("user required")
	}
	id, err := parseQuestionID(c)
	if err != nil {
		return err
	}
	var req dto.QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	question, err := h.service.UpdateQuestion(c.UserContext(), principal.User, id, questionInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": questionResponse(question)})
}

// RemoveQuestion DELETE /questionnaire/:id.
func (h *QuestionnaireHandler) RemoveQuestion(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthenticated("user required")
	}
	id, err := parseQuestionID(c)
	if err != nil {
		return err
	}
	if err := h.service.RemoveQuestion(c.UserContext(), principal.User, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ReplaceQuestionnaire PUT /questionnaire.
func (h *QuestionnaireHandler) ReplaceQuestionnaire(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthenticated("user required")
	}
	var req dto.ReplaceQuestionnaireRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	inputs := make([]service.QuestionInput, 0, len(req.Questions))
	for _, q := range req.Questions {
		inputs = append(inputs, questionInput(q))
	}
	questions, err := h.service.ReplaceQuestionnaire(c.UserContext(), principal.User, inputs)
	if err != nil {
		return err
	}
	items := make([]dto.QuestionResponse, 0, len(questions))
	for i := range questions {
		items = append(items, questionResponse(&questions[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseQuestionID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid question id", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}

func questionInput(req dto.QuestionRequest) service.QuestionInput {
	return service.QuestionInput{
		Text:     req.Text,
		Kind:     req.Kind,
		Options:  req.Options,
		Required: req.Required,
		Position: req.Position,
	}
}

func questionResponse(question *domain.Question) dto.QuestionResponse {
	return dto.QuestionResponse{
		ID:        question.ID,
		Text:      question.Text,
		Kind:      question.Kind,
		Options:   question.Options,
		Required:  question.Required,
		Position:  question.Position,
		CreatedAt: question.CreatedAt,
	}
}
