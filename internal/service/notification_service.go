package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/adoption-portal/internal/events"
)

// NotificationService reacts to workflow events. Delivery is log-based for
// now; a mail or webhook sender can replace notify without touching the
// event wiring.
type NotificationService struct {
	logger *zap.Logger
}

// NewNotificationService builds the service.
func NewNotificationService(logger *zap.Logger) *NotificationService {
	return &NotificationService{logger: logger}
}

// RegisterHandlers subscribes the service to the events it cares about.
func (s *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventApplicationSubmitted, s.onApplicationSubmitted)
	dispatcher.Subscribe(events.EventPetSelected, s.onPetSelected)
	dispatcher.Subscribe(events.EventApplicationReviewed, s.onApplicationReviewed)
	dispatcher.Subscribe(events.EventPetStatusOverridden, s.onPetStatusOverridden)
	dispatcher.Subscribe(events.EventUserRoleChanged, s.onUserRoleChanged)
}

func (s *NotificationService) onApplicationSubmitted(_ context.Context, ev events.Event) error {
	payload, ok := ev.Payload.(events.ApplicationSubmittedPayload)
	if !ok {
		return nil
	}
	s.logger.Info("notify: application submitted",
		zap.String("application_id", ev.ApplicationID),
		zap.String("user_id", payload.UserID),
		zap.Int("answers", payload.AnswerCount),
	)
	return nil
}

func (s *NotificationService) onPetSelected(_ context.Context, ev events.Event) error {
	payload, ok := ev.Payload.(events.PetSelectedPayload)
	if !ok {
		return nil
	}
	s.logger.Info("notify: pet selected",
		zap.String("application_id", ev.ApplicationID),
		zap.String("user_id", payload.UserID),
		zap.Int64("pet_id", payload.PetID),
	)
	return nil
}

func (s *NotificationService) onApplicationReviewed(_ context.Context, ev events.Event) error {
	payload, ok := ev.Payload.(events.ApplicationReviewedPayload)
	if !ok {
		return nil
	}
	fields := []zap.Field{
		zap.String("application_id", ev.ApplicationID),
		zap.String("user_id", payload.UserID),
		zap.String("reviewer_id", payload.ReviewerID),
		zap.String("decision", string(payload.Decision)),
		zap.String("new_status", string(payload.NewStatus)),
	}
	if payload.PetID != nil {
		fields = append(fields, zap.Int64("pet_id", *payload.PetID))
	}
	s.logger.Info("notify: application reviewed", fields...)
	return nil
}

func (s *NotificationService) onPetStatusOverridden(_ context.Context, ev events.Event) error {
	payload, ok := ev.Payload.(events.PetStatusOverriddenPayload)
	if !ok {
		return nil
	}
	s.logger.Warn("notify: pet status overridden",
		zap.Int64("pet_id", payload.PetID),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)),
		zap.String("staff_id", payload.StaffID),
	)
	return nil
}

func (s *NotificationService) onUserRoleChanged(_ context.Context, ev events.Event) error {
	payload, ok := ev.Payload.(events.UserRoleChangedPayload)
	if !ok {
		return nil
	}
	s.logger.Info("notify: user role changed",
		zap.String("user_id", payload.UserID),
		zap.String("old_role", string(payload.OldRole)),
		zap.String("new_role", string(payload.NewRole)),
		zap.String("actor_id", ev.ActorID),
	)
	return nil
}
