package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/adoption-portal/internal/domain"
	"github.com/spec-kit/adoption-portal/internal/repository"
	apperrors "github.com/spec-kit/adoption-portal/pkg/util"
)

// CatalogService manages the questionnaire catalog. Mutation is ADMIN-only;
// reads are open to any authenticated caller. Edits never touch responses on
// past records, which are snapshots of the catalog at submission time.
type CatalogService struct {
	questions repository.QuestionRepository
}

// QuestionInput describes catalog mutation payloads.
type QuestionInput struct {
	Text     string
	Kind     domain.QuestionKind
	Options  []string
	Required bool
	Position int
}

// NewCatalogService constructs the service.
func NewCatalogService(questionRepo repository.QuestionRepository) *CatalogService {
	return &CatalogService{questions: questionRepo}
}

// ListQuestions returns the catalog in position order.
func (s *CatalogService) ListQuestions(ctx context.Context, caller *domain.User) ([]domain.Question, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthenticated("caller required")
	}
	questions, err := s.questions.List(ctx)
	if err != nil {
		return nil, mapStoreErr(err, "questionnaire")
	}
	return questions, nil
}

// AddQuestion appends a question; its id is assigned monotonically and never
// reused, even after deletion.
func (s *CatalogService) AddQuestion(ctx context.Context, caller *domain.User, input QuestionInput) (*domain.Question, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	question, err := questionFromInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.questions.Create(ctx, question); err != nil {
		return nil, mapStoreErr(err, "question")
	}
	return question, nil
}

// UpdateQuestion rewrites an existing catalog entry.
func (s *CatalogService) UpdateQuestion(ctx context.Context, caller *domain.User, id int64, input QuestionInput) (*domain.Question, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	question, err := questionFromInput(input)
	if err != nil {
		return nil, err
	}
	question.ID = id
	if err := s.questions.Update(ctx, question); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("question", map[string]any{"question_id": id})
		}
		return nil, mapStoreErr(err, "question")
	}
	return question, nil
}

// RemoveQuestion deletes a catalog entry. Past records keep their responses.
func (s *CatalogService) RemoveQuestion(ctx context.Context, caller *domain.User, id int64) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if err := s.questions.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("question", map[string]any{"question_id": id})
		}
		return mapStoreErr(err, "question")
	}
	return nil
}

// ReplaceQuestionnaire swaps the entire catalog in one unit.
func (s *CatalogService) ReplaceQuestionnaire(ctx context.Context, caller *domain.User, inputs []QuestionInput) ([]domain.Question, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	questions := make([]*domain.Question, 0, len(inputs))
	for i, input := range inputs {
		question, err := questionFromInput(input)
		if err != nil {
			return nil, err
		}
		if question.Position == 0 {
			question.Position = i + 1
		}
		questions = append(questions, question)
	}
	if err := s.questions.ReplaceAll(ctx, questions); err != nil {
		return nil, mapStoreErr(err, "questionnaire")
	}
	result := make([]domain.Question, 0, len(questions))
	for _, question := range questions {
		result = append(result, *question)
	}
	return result, nil
}

func questionFromInput(input QuestionInput) (*domain.Question, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, apperrors.NewValidationError("question text required", nil)
	}
	if !input.Kind.Valid() {
		return nil, apperrors.NewValidationError("question kind must be TEXT or MULTIPLE_CHOICE", nil)
	}
	options := make([]string, 0, len(input.Options))
	for _, opt := range input.Options {
		opt = strings.TrimSpace(opt)
		if opt != "" {
			options = append(options, opt)
		}
	}
	if input.Kind == domain.QuestionKindMultipleChoice && len(options) == 0 {
		return nil, apperrors.NewValidationError("multiple-choice questions need at least one option", nil)
	}
	if input.Kind == domain.QuestionKindText && len(options) > 0 {
		return nil, apperrors.NewValidationError("text questions cannot carry options", nil)
	}
	return &domain.Question{
		Text:     text,
		Kind:     input.Kind,
		Options:  options,
		Required: input.Required,
		Position: input.Position,
	}, nil
}

func requireAdmin(caller *domain.User) error {
	if caller == nil {
		return apperrors.NewUnauthenticated("caller required")
	}
	if caller.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}
