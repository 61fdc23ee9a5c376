package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/adoption-portal/internal/auth"
	"github.com/spec-kit/adoption-portal/internal/config"
	"github.com/spec-kit/adoption-portal/internal/domain"
	"github.com/spec-kit/adoption-portal/internal/events"
	"github.com/spec-kit/adoption-portal/internal/repository"
	apperrors "github.com/spec-kit/adoption-portal/pkg/util"
)

// AuthService coordinates registration, login, and account administration.
// Registration always yields role=USER, approved=false; approval happens only
// through the review workflow and role changes only through an ADMIN.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new portal account.
func (s *AuthService) Register(ctx context.Context, email, password, fullName, phone string) (*domain.User, string, time.Time, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" || strings.TrimSpace(fullName) == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("email, password, full_name required", nil)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(fullName),
		Phone:        strings.TrimSpace(phone),
		Role:         domain.RoleUser,
		Approved:     false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", time.Time{}, apperrors.NewConflict("EMAIL_TAKEN", "email already registered", nil)
		}
		return nil, "", time.Time{}, mapStoreErr(err, "user")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}

// Login authenticates an account.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
		}
		return nil, "", time.Time{}, mapStoreErr(err, "user")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}

// Logout currently no-ops for stateless JWT approach.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// ListUsers returns all accounts; ADMIN only.
func (s *AuthService) ListUsers(ctx context.Context, caller *domain.User) ([]domain.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, mapStoreErr(err, "user")
	}
	return users, nil
}

// GetUser returns one account: callers see themselves, staff see anyone.
func (s *AuthService) GetUser(ctx context.Context, caller *domain.User, id string) (*domain.User, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthenticated("caller required")
	}
	if caller.ID != id && !caller.Role.AtLeast(domain.RoleStaff) {
		return nil, apperrors.NewForbidden("cannot view other accounts")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, mapStoreErr(err, "user")
	}
	return user, nil
}

// ChangeRole sets another account's role; ADMIN only, and never the caller's
// own account, so an admin cannot be tricked into self-demotion loops and a
// user can never self-promote by any path.
func (s *AuthService) ChangeRole(ctx context.Context, caller *domain.User, id string, role domain.Role) (*domain.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}
	if caller.ID == id {
		return nil, apperrors.NewForbidden("cannot change own role")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, mapStoreErr(err, "user")
	}
	oldRole := user.Role
	if oldRole == role {
		return user, nil
	}
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapStoreErr(err, "user")
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventUserRoleChanged,
			ActorID:   caller.ID,
			Timestamp: time.Now(),
			Payload: events.UserRoleChangedPayload{
				UserID:  user.ID,
				OldRole: oldRole,
				NewRole: role,
			},
		})
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
