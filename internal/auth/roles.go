package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/adoption-portal/internal/domain"
	apperrors "github.com/spec-kit/adoption-portal/pkg/util"
)

// RequireRole ensures the caller holds at least the given role. Route-level
// guards are a convenience; every mutating service operation re-validates the
// caller's role itself.
func RequireRole(min domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if !principal.User.Role.AtLeast(min) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a caller is logged in, any role.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		return c.Next()
	}
}
