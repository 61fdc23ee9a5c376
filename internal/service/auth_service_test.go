package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/adoption-portal/internal/config"
	"github.com/spec-kit/adoption-portal/internal/domain"
	"github.com/spec-kit/adoption-portal/internal/events"
	"github.com/spec-kit/adoption-portal/internal/repository"
	apperrors "github.com/spec-kit/adoption-portal/pkg/util"
)

func newAuthFixture() (*AuthService, *repository.MemoryUserRepository) {
	users := repository.NewMemoryUserRepository()
	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		BcryptCost:            4,
	}}
	svc := NewAuthService(cfg, AuthDependencies{
		UserRepo:   users,
		Dispatcher: events.NewInMemoryDispatcher(),
	})
	return svc, users
}

func TestRegisterDefaultsToUnapprovedUser(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	user, token, _, err := svc.Register(ctx, "Jamie@Example.com", "secret", "Jamie Doe", "")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "jamie@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.False(t, user.Approved)

	_, _, _, err = svc.Register(ctx, "jamie@example.com", "other", "Impostor", "")
	require.Error(t, err)
	assert.Equal(t, "EMAIL_TAKEN", apperrors.CodeOf(err))

	_, _, _, err = svc.Register(ctx, "", "secret", "No Email", "")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION", apperrors.CodeOf(err))
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "jamie@example.com", "secret", "Jamie Doe", "")
	require.NoError(t, err)

	user, token, _, err := svc.Login(ctx, "jamie@example.com", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "jamie@example.com", user.Email)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, _, _, err = svc.Login(ctx, "jamie@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHENTICATED", apperrors.CodeOf(err))

	_, _, _, err = svc.Login(ctx, "nobody@example.com", "secret")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHENTICATED", apperrors.CodeOf(err))
}

func TestChangeRole(t *testing.T) {
	svc, users := newAuthFixture()
	ctx := context.Background()

	admin := &domain.User{Email: "admin@example.com", PasswordHash: "x", FullName: "Admin", Role: domain.RoleAdmin}
	require.NoError(t, users.Create(ctx, admin))
	target, _, _, err := svc.Register(ctx, "jamie@example.com", "secret", "Jamie Doe", "")
	require.NoError(t, err)

	// Only an admin may change roles, and never through self-service.
	_, err = svc.ChangeRole(ctx, target, target.ID, domain.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.CodeOf(err))

	_, err = svc.ChangeRole(ctx, admin, admin.ID, domain.RoleUser)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.CodeOf(err))

	_, err = svc.ChangeRole(ctx, admin, target.ID, domain.Role("OWNER"))
	require.Error(t, err)
	assert.Equal(t, "VALIDATION", apperrors.CodeOf(err))

	updated, err := svc.ChangeRole(ctx, admin, target.ID, domain.RoleStaff)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, updated.Role)

	stored, err := users.GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, stored.Role)
}

func TestGetUserVisibility(t *testing.T) {
	svc, users := newAuthFixture()
	ctx := context.Background()

	staff := &domain.User{Email: "staff@example.com", PasswordHash: "x", FullName: "Staff", Role: domain.RoleStaff}
	require.NoError(t, users.Create(ctx, staff))
	alice, _, _, err := svc.Register(ctx, "alice@example.com", "secret", "Alice", "")
	require.NoError(t, err)
	bob, _, _, err := svc.Register(ctx, "bob@example.com", "secret", "Bob", "")
	require.NoError(t, err)

	// Users see themselves; staff see anyone; users cannot see each other.
	got, err := svc.GetUser(ctx, alice, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = svc.GetUser(ctx, alice, bob.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.CodeOf(err))

	got, err = svc.GetUser(ctx, staff, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.ID)

	_, err = svc.GetUser(ctx, staff, "missing")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.CodeOf(err))
}

func TestListUsersRequiresAdmin(t *testing.T) {
	svc, users := newAuthFixture()
	ctx := context.Background()

	admin := &domain.User{Email: "admin@example.com", PasswordHash: "x", FullName: "Admin", Role: domain.RoleAdmin}
	require.NoError(t, users.Create(ctx, admin))
	_, _, _, err := svc.Register(ctx, "alice@example.com", "secret", "Alice", "")
	require.NoError(t, err)

	list, err := svc.ListUsers(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	staff := &domain.User{ID: "staff-1", Role: domain.RoleStaff}
	_, err = svc.ListUsers(ctx, staff)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.CodeOf(err))
}
