package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/adoption-portal/internal/config"
	"github.com/spec-kit/adoption-portal/internal/domain"
	"github.com/spec-kit/adoption-portal/internal/events"
	"github.com/spec-kit/adoption-portal/internal/persistence"
	"github.com/spec-kit/adoption-portal/internal/repository"
	apperrors "github.com/spec-kit/adoption-portal/pkg/util"
)

// EligibilityReason explains a denied pet selection and maps to the next
// action the caller should take.
type EligibilityReason string

const (
	// ReasonNoSubmission: no submitted record exists; go answer the questionnaire.
	ReasonNoSubmission EligibilityReason = "NO_SUBMISSION"
	// ReasonPendingReview: a submitted record awaits review; wait.
	ReasonPendingReview EligibilityReason = "PENDING_REVIEW"
)

// Eligibility is the answer to "may this caller pick a pet right now?".
type Eligibility struct {
	Allowed bool              `json:"allowed"`
	Reason  EligibilityReason `json:"reason,omitempty"`
}

// WorkflowService is the adoption workflow coordinator. It owns the
// eligibility rules and the record state machine; all caller identity arrives
// as explicit parameters, never from ambient state.
type WorkflowService struct {
	applications repository.ApplicationRepository
	pets         repository.PetRepository
	users        repository.UserRepository
	questions    repository.QuestionRepository
	locks        *persistence.Redis
	dispatcher   events.Dispatcher
	cfg          config.WorkflowConfig
}

// WorkflowDependencies bundles repositories for the coordinator.
type WorkflowDependencies struct {
	ApplicationRepo repository.ApplicationRepository
	PetRepo         repository.PetRepository
	UserRepo        repository.UserRepository
	QuestionRepo    repository.QuestionRepository
	Locks           *persistence.Redis
	Dispatcher      events.Dispatcher
}

// NewWorkflowService constructs the coordinator.
func NewWorkflowService(cfg config.WorkflowConfig, deps WorkflowDependencies) *WorkflowService {
	return &WorkflowService{
		applications: deps.ApplicationRepo,
		pets:         deps.PetRepo,
		users:        deps.UserRepo,
		questions:    deps.QuestionRepo,
		locks:        deps.Locks,
		dispatcher:   deps.Dispatcher,
		cfg:          cfg,
	}
}

// CanSelectPet answers whether the user may pick a pet. Only approved users
// may; the reason distinguishes "never submitted" from "review outstanding".
func (s *WorkflowService) CanSelectPet(ctx context.Context, user *domain.User) (Eligibility, error) {
	if user == nil {
		return Eligibility{}, apperrors.NewUnauthenticated("caller required")
	}
	if user.Approved {
		return Eligibility{Allowed: true}, nil
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	_, err := s.applications.GetSubmittedByUser(ctx, user.ID)
	switch {
	case err == nil:
		return Eligibility{Allowed: false, Reason: ReasonPendingReview}, nil
	case errors.Is(err, repository.ErrNotFound):
		return Eligibility{Allowed: false, Reason: ReasonNoSubmission}, nil
	default:
		return Eligibility{}, mapStoreErr(err, "application")
	}
}

// SubmitQuestionnaire validates the answers against the current catalog and
// opens a new adoption attempt. At most one non-terminal record may exist per
// user; the check-then-create is serialized by a per-user lock with the store
// constraint as backstop.
func (s *WorkflowService) SubmitQuestionnaire(ctx context.Context, user *domain.User, answers map[int64]string) (*domain.ApplicationRecord, error) {
	if user == nil {
		return nil, apperrors.NewUnauthenticated("caller required")
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	owner := uuid.NewString()
	lockKey := "workflow:submit:" + user.ID
	acquired, err := s.locks.AcquireLock(ctx, lockKey, owner, s.cfg.SubmitLockTTL())
	if err != nil {
		return nil, apperrors.NewUnavailable("submission lock unavailable", err)
	}
	if !acquired {
		return nil, apperrors.NewConflict("ALREADY_OPEN", "a submission is already in progress", nil)
	}
	// Release on a detached context so a store timeout on the request
	// context does not strand the lock until its TTL lapses.
	defer func() { _ = s.locks.ReleaseLock(context.Background(), lockKey, owner) }()

	if _, err := s.applications.GetSubmittedByUser(ctx, user.ID); err == nil {
		return nil, apperrors.NewConflict("ALREADY_OPEN", "an adoption attempt is already pending review", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, mapStoreErr(err, "application")
	}

	questions, err := s.questions.List(ctx)
	if err != nil {
		return nil, mapStoreErr(err, "questionnaire")
	}
	responses, err := validateAnswers(questions, answers)
	if err != nil {
		return nil, err
	}

	record := &domain.ApplicationRecord{
		ExternalKey: generateApplicationKey(),
		UserID:      user.ID,
		Responses:   responses,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.applications.CreateSubmitted(ctx, record); err != nil {
		if errors.Is(err, repository.ErrOpenRecordExists) {
			return nil, apperrors.NewConflict("ALREADY_OPEN", "an adoption attempt is already pending review", nil)
		}
		return nil, mapStoreErr(err, "application")
	}

	s.publishEvent(ctx, events.Event{
		Type:          events.EventApplicationSubmitted,
		ApplicationID: record.ID,
		ActorID:       user.ID,
		Payload: events.ApplicationSubmittedPayload{
			UserID:        user.ID,
			AnswerCount:   len(responses),
			QuestionCount: len(questions),
		},
	})
	return record, nil
}

// SelectPet binds an available pet to the caller's open attempt and moves the
// pet to PENDING. The AVAILABLE->PENDING flip is a compare-and-set: under
// concurrent callers exactly one wins, the rest see PET_UNAVAILABLE.
func (s *WorkflowService) SelectPet(ctx context.Context, user *domain.User, petID int64) (*domain.ApplicationRecord, error) {
	if user == nil {
		return nil, apperrors.NewUnauthenticated("caller required")
	}
	if !user.Approved {
		return nil, apperrors.NewDomainError("NOT_APPROVED", "caller is not approved for adoption", http.StatusForbidden, nil)
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	record, err := s.applications.GetSubmittedByUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewConflict("NO_ACTIVE_RECORD", "no open adoption attempt; submit the questionnaire first", nil)
		}
		return nil, mapStoreErr(err, "application")
	}
	if record.PetID != nil {
		return nil, apperrors.NewConflict("PET_ALREADY_SELECTED", "a pet is already attached to the open attempt", map[string]any{"pet_id": *record.PetID})
	}

	if err := s.pets.UpdateStatusIf(ctx, petID, domain.PetStatusAvailable, domain.PetStatusPending); err != nil {
		switch {
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, apperrors.NewConflict("PET_UNAVAILABLE", "pet is no longer available", nil)
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NewNotFound("pet", map[string]any{"pet_id": petID})
		default:
			return nil, mapStoreErr(err, "pet")
		}
	}

	if err := s.applications.AttachPet(ctx, record.ID, petID); err != nil {
		// Undo the flip so the pet is not stranded in PENDING.
		_ = s.pets.UpdateStatusIf(ctx, petID, domain.PetStatusPending, domain.PetStatusAvailable)
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, apperrors.NewConflict("NO_ACTIVE_RECORD", "the attempt was reviewed before the pet could be attached", nil)
		}
		return nil, mapStoreErr(err, "application")
	}
	record.PetID = &petID

	s.publishEvent(ctx, events.Event{
		Type:          events.EventPetSelected,
		ApplicationID: record.ID,
		ActorID:       user.ID,
		Payload: events.PetSelectedPayload{
			UserID: user.ID,
			PetID:  petID,
		},
	})
	return record, nil
}

// ReviewDecision terminalizes a submitted record. APPROVE marks the applicant
// approved and adopts the attached pet; REJECT returns the attached pet to the
// pool. Reviews are never repeated: the terminal-state compare-and-set makes
// concurrent reviews race safely.
func (s *WorkflowService) ReviewDecision(ctx context.Context, staff *domain.User, applicationID string, decision domain.ReviewDecision) (*domain.ApplicationRecord, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthenticated("caller required")
	}
	if !staff.Role.AtLeast(domain.RoleStaff) {
		return nil, apperrors.NewForbidden("staff role required")
	}
	var target domain.ApplicationStatus
	switch decision {
	case domain.DecisionApprove:
		target = domain.ApplicationStatusApproved
	case domain.DecisionReject:
		target = domain.ApplicationStatusRejected
	default:
		return nil, apperrors.NewValidationError("decision must be APPROVE or REJECT", nil)
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	record, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("application", map[string]any{"application_id": applicationID})
		}
		return nil, mapStoreErr(err, "application")
	}
	if record.Status.Terminal() {
		return nil, apperrors.NewConflict("ALREADY_REVIEWED", "application has already been reviewed", nil)
	}

	reviewedAt := time.Now().UTC()
	if err := s.applications.MarkReviewed(ctx, record.ID, target, reviewedAt, staff.ID); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, apperrors.NewConflict("ALREADY_REVIEWED", "application has already been reviewed", nil)
		}
		return nil, mapStoreErr(err, "application")
	}
	record.Status = target
	record.ReviewedAt = &reviewedAt
	reviewerID := staff.ID
	record.ReviewerID = &reviewerID

	// Side effects apply exactly once: only the review that won the
	// compare-and-set reaches this point.
	if decision == domain.DecisionApprove {
		if err := s.approveApplicant(ctx, record.UserID); err != nil {
			return nil, err
		}
		if record.PetID != nil {
			if err := s.flipReviewedPet(ctx, *record.PetID, domain.PetStatusAdopted); err != nil {
				return nil, err
			}
		}
	} else if record.PetID != nil {
		if err := s.flipReviewedPet(ctx, *record.PetID, domain.PetStatusAvailable); err != nil {
			return nil, err
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:          events.EventApplicationReviewed,
		ApplicationID: record.ID,
		ActorID:       staff.ID,
		Payload: events.ApplicationReviewedPayload{
			UserID:     record.UserID,
			ReviewerID: staff.ID,
			Decision:   decision,
			NewStatus:  target,
			PetID:      record.PetID,
		},
	})
	return record, nil
}

// ListOpenReviews returns all submitted records oldest first, so review is
// first-in-first-reviewed.
func (s *WorkflowService) ListOpenReviews(ctx context.Context, staff *domain.User) ([]domain.ApplicationRecord, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthenticated("caller required")
	}
	if !staff.Role.AtLeast(domain.RoleStaff) {
		return nil, apperrors.NewForbidden("staff role required")
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	records, err := s.applications.ListByStatus(ctx, domain.ApplicationStatusSubmitted)
	if err != nil {
		return nil, mapStoreErr(err, "application")
	}
	return records, nil
}

// ListUserApplications returns the caller's own records, oldest first.
func (s *WorkflowService) ListUserApplications(ctx context.Context, user *domain.User) ([]domain.ApplicationRecord, error) {
	if user == nil {
		return nil, apperrors.NewUnauthenticated("caller required")
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	records, err := s.applications.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, mapStoreErr(err, "application")
	}
	return records, nil
}

func (s *WorkflowService) approveApplicant(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return mapStoreErr(err, "user")
	}
	if user.Approved {
		return nil
	}
	user.Approved = true
	if err := s.users.Update(ctx, user); err != nil {
		return mapStoreErr(err, "user")
	}
	return nil
}

// flipReviewedPet moves a PENDING pet to its post-review status. A staff
// override may already have moved the pet; the resulting disagreement is a
// reportable integrity condition, not a review failure.
func (s *WorkflowService) flipReviewedPet(ctx context.Context, petID int64, to domain.PetStatus) error {
	err := s.pets.UpdateStatusIf(ctx, petID, domain.PetStatusPending, to)
	if err == nil || errors.Is(err, repository.ErrStatusConflict) || errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return mapStoreErr(err, "pet")
}

func (s *WorkflowService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.StoreTimeout())
}

func (s *WorkflowService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// validateAnswers checks the submitted answers against the current catalog.
// Required TEXT answers must be non-empty, MULTIPLE_CHOICE answers must be one
// of the question's current options, and unknown question ids are rejected.
// Unanswered optional questions are omitted, never defaulted.
func validateAnswers(questions []domain.Question, answers map[int64]string) (map[int64]string, error) {
	byID := make(map[int64]domain.Question, len(questions))
	for _, question := range questions {
		byID[question.ID] = question
	}

	for id := range answers {
		if _, ok := byID[id]; !ok {
			return nil, apperrors.NewValidationError("answer references an unknown question", map[string]any{"question_id": id})
		}
	}

	responses := make(map[int64]string, len(answers))
	for _, question := range questions {
		answer, ok := answers[question.ID]
		answer = strings.TrimSpace(answer)
		if !ok || answer == "" {
			if question.Required {
				return nil, apperrors.NewValidationError("required question not answered", map[string]any{"question_id": question.ID})
			}
			continue
		}
		if !question.AcceptsAnswer(answer) {
			return nil, apperrors.NewValidationError("answer is not one of the question's options", map[string]any{"question_id": question.ID})
		}
		responses[question.ID] = answer
	}
	return responses, nil
}

func generateApplicationKey() string {
	return "ADP-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// mapStoreErr converts low-level store failures into the typed taxonomy.
// Deadline overruns surface as retryable UNAVAILABLE instead of hanging the
// caller.
func mapStoreErr(err error, resource string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewUnavailable(resource+" store did not respond in time", err)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, nil)
	}
	return apperrors.NewInternalError(err)
}
