package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/adoption-portal/internal/api/http/handlers"
	"github.com/spec-kit/adoption-portal/internal/auth"
	"github.com/spec-kit/adoption-portal/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Pets           *handlers.PetsHandler
	Questionnaire  *handlers.QuestionnaireHandler
	Applications   *handlers.ApplicationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authProtected.Post("/logout", cfg.Users.Logout)
	authProtected.Get("/me", cfg.Users.Me)

	// Browsing the inventory is public, so the staff guard is attached per
	// route rather than on the group; a group-level Use would also cover the
	// public GETs. /conflicts precedes /:id so the literal segment is not
	// swallowed by the param route.
	staffGate := auth.RequireRole(domain.RoleStaff)
	pets := app.Group("/pets")
	pets.Get("/conflicts", cfg.AuthMiddleware.Handle, staffGate, cfg.Pets.ListStatusConflicts)
	pets.Get("", cfg.Pets.SearchPets)
	pets.Get("/:id", cfg.Pets.GetPet)
	pets.Post("", cfg.AuthMiddleware.Handle, staffGate, cfg.Pets.CreatePet)
	pets.Put("/:id", cfg.AuthMiddleware.Handle, staffGate, cfg.Pets.UpdatePet)
	pets.Put("/:id/status", cfg.AuthMiddleware.Handle, staffGate, cfg.Pets.OverrideStatus)
	pets.Delete("/:id", cfg.AuthMiddleware.Handle, staffGate, cfg.Pets.DeletePet)

	questionnaire := app.Group("/questionnaire", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	questionnaire.Get("", cfg.Questionnaire.ListQuestions)
	admin := questionnaire.Group("", auth.RequireRole(domain.RoleAdmin))
	admin.Post("", cfg.Questionnaire.AddQuestion)
	admin.Put("", cfg.Questionnaire.ReplaceQuestionnaire)
	admin.Put("/:id", cfg.Questionnaire.UpdateQuestion)
	admin.Delete("/:id", cfg.Questionnaire.RemoveQuestion)

	applications := app.Group("/applications", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	applications.Get("/eligibility", cfg.Applications.Eligibility)
	applications.Post("", cfg.Applications.Submit)
	applications.Post("/pet", cfg.Applications.SelectPet)
	applications.Get("", cfg.Applications.ListMine)

	reviews := app.Group("/reviews", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleStaff))
	reviews.Get("", cfg.Applications.ListOpenReviews)
	reviews.Post("/:id", cfg.Applications.Review)

	// Reading a single user is self-or-staff and the service decides; only
	// listing and role changes are admin-gated at the route.
	adminUsers := app.Group("/admin/users", cfg.AuthMiddleware.Handle)
	adminUsers.Get("", auth.RequireRole(domain.RoleAdmin), cfg.Users.ListUsers)
	adminUsers.Get("/:id", auth.RequireAuthenticated(), cfg.Users.GetUser)
	adminUsers.Put("/:id/role", auth.RequireRole(domain.RoleAdmin), cfg.Users.ChangeRole)
}
