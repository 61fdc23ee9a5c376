package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/adoption-portal/internal/api/http/handlers"
	"github.com/spec-kit/adoption-portal/internal/auth"
	"github.com/spec-kit/adoption-portal/internal/config"
	"github.com/spec-kit/adoption-portal/internal/domain"
	"github.com/spec-kit/adoption-portal/internal/events"
	"github.com/spec-kit/adoption-portal/internal/observability"
	"github.com/spec-kit/adoption-portal/internal/repository"
	"github.com/spec-kit/adoption-portal/internal/service"
)

type apiFixture struct {
	app       *fiber.App
	users     *repository.MemoryUserRepository
	questions *repository.MemoryQuestionRepository
	pets      *repository.MemoryPetRepository
	auth      *service.AuthService
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	users := repository.NewMemoryUserRepository()
	pets := repository.NewMemoryPetRepository()
	applications := repository.NewMemoryApplicationRepository()
	questions := repository.NewMemoryQuestionRepository()
	dispatcher := events.NewInMemoryDispatcher()

	cfg := config.Config{
		Auth:     config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4},
		Workflow: config.WorkflowConfig{StoreTimeoutSeconds: 5, SubmitLockTTLSec: 10},
	}

	authService := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: users, Dispatcher: dispatcher})
	workflowService := service.NewWorkflowService(cfg.Workflow, service.WorkflowDependencies{
		ApplicationRepo: applications,
		PetRepo:         pets,
		UserRepo:        users,
		QuestionRepo:    questions,
		Dispatcher:      dispatcher,
	})

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", nil, nil),
		Users:          handlers.NewUsersHandler(authService),
		Pets:           handlers.NewPetsHandler(service.NewPetService(pets, applications, dispatcher)),
		Questionnaire:  handlers.NewQuestionnaireHandler(service.NewCatalogService(questions)),
		Applications:   handlers.NewApplicationsHandler(workflowService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), users),
	})

	return &apiFixture{app: app, users: users, questions: questions, pets: pets, auth: authService}
}

func (f *apiFixture) request(t *testing.T, method, path, token string, body any) *stdhttp.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *stdhttp.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (f *apiFixture) registerToken(t *testing.T, email string) string {
	t.Helper()
	resp := f.request(t, stdhttp.MethodPost, "/auth/register", "", map[string]string{
		"email":     email,
		"password":  "secret",
		"full_name": "Test User",
	})
	require.Equal(t, stdhttp.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	return data["token"].(string)
}

func (f *apiFixture) staffToken(t *testing.T, role domain.Role) string {
	t.Helper()
	user := &domain.User{Email: string(role) + "@example.com", PasswordHash: "x", FullName: "Staff", Role: role, Approved: true}
	require.NoError(t, f.users.Create(context.Background(), user))
	token, _, err := f.auth.TokenManager().GenerateToken(user.ID, user.Role)
	require.NoError(t, err)
	return token
}

func TestHealthLive(t *testing.T) {
	f := newAPIFixture(t)
	resp := f.request(t, stdhttp.MethodGet, "/health/live", "", nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "alive", body["status"])
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.request(t, stdhttp.MethodGet, "/applications/eligibility", "", nil)
	require.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
	body := decodeBody(t, resp)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "UNAUTHENTICATED", errObj["code"])
}

func TestRoleGatesOnRoutes(t *testing.T) {
	f := newAPIFixture(t)
	userToken := f.registerToken(t, "user@example.com")

	// A plain user cannot reach staff or admin surfaces.
	resp := f.request(t, stdhttp.MethodGet, "/reviews", userToken, nil)
	require.Equal(t, stdhttp.StatusForbidden, resp.StatusCode)

	resp = f.request(t, stdhttp.MethodPost, "/questionnaire", userToken, map[string]any{
		"text": "Why?", "kind": "TEXT",
	})
	require.Equal(t, stdhttp.StatusForbidden, resp.StatusCode)

	resp = f.request(t, stdhttp.MethodGet, "/admin/users", userToken, nil)
	require.Equal(t, stdhttp.StatusForbidden, resp.StatusCode)

	adminToken := f.staffToken(t, domain.RoleAdmin)
	resp = f.request(t, stdhttp.MethodGet, "/admin/users", adminToken, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
}

func TestPetBrowsingNeedsNoToken(t *testing.T) {
	f := newAPIFixture(t)
	staffToken := f.staffToken(t, domain.RoleStaff)

	resp := f.request(t, stdhttp.MethodPost, "/pets", staffToken, map[string]any{
		"name": "Luna", "species": "cat", "breed": "tabby", "age": 2,
	})
	require.Equal(t, stdhttp.StatusCreated, resp.StatusCode)
	pet := decodeBody(t, resp)["data"].(map[string]any)
	petID := int64(pet["id"].(float64))

	// Anonymous callers can list and read pets.
	resp = f.request(t, stdhttp.MethodGet, "/pets", "", nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	resp = f.request(t, stdhttp.MethodGet, "/pets/"+jsonKey(petID), "", nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)["data"].(map[string]any)
	assert.Equal(t, "Luna", body["name"])

	// The staff surfaces under the same prefix stay guarded.
	resp = f.request(t, stdhttp.MethodGet, "/pets/conflicts", "", nil)
	require.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)

	resp = f.request(t, stdhttp.MethodPost, "/pets", "", map[string]any{"name": "Rex", "species": "dog", "age": 1})
	require.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)

	resp = f.request(t, stdhttp.MethodGet, "/pets/conflicts", staffToken, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
}

func TestAdminUserReadIsSelfOrStaff(t *testing.T) {
	f := newAPIFixture(t)
	aToken := f.registerToken(t, "alpha@example.com")
	bToken := f.registerToken(t, "beta@example.com")

	me := func(token string) string {
		resp := f.request(t, stdhttp.MethodGet, "/auth/me", token, nil)
		require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
		return decodeBody(t, resp)["data"].(map[string]any)["id"].(string)
	}
	aID, bID := me(aToken), me(bToken)

	// A user may read their own record but not a peer's.
	resp := f.request(t, stdhttp.MethodGet, "/admin/users/"+aID, aToken, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	resp = f.request(t, stdhttp.MethodGet, "/admin/users/"+bID, aToken, nil)
	require.Equal(t, stdhttp.StatusForbidden, resp.StatusCode)

	// Staff may read anyone, yet listing stays admin only.
	staffToken := f.staffToken(t, domain.RoleStaff)
	resp = f.request(t, stdhttp.MethodGet, "/admin/users/"+bID, staffToken, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	resp = f.request(t, stdhttp.MethodGet, "/admin/users", staffToken, nil)
	require.Equal(t, stdhttp.StatusForbidden, resp.StatusCode)
}

func TestAdoptionFlowOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	adminToken := f.staffToken(t, domain.RoleAdmin)
	staffToken := f.staffToken(t, domain.RoleStaff)
	userToken := f.registerToken(t, "adopter@example.com")

	// Admin seeds the questionnaire and a pet.
	resp := f.request(t, stdhttp.MethodPost, "/questionnaire", adminToken, map[string]any{
		"text": "Do you have a yard?", "kind": "TEXT", "required": true, "position": 1,
	})
	require.Equal(t, stdhttp.StatusCreated, resp.StatusCode)
	question := decodeBody(t, resp)["data"].(map[string]any)
	questionID := int64(question["id"].(float64))

	resp = f.request(t, stdhttp.MethodPost, "/pets", staffToken, map[string]any{
		"name": "Rex", "species": "dog", "breed": "mixed", "age": 3,
	})
	require.Equal(t, stdhttp.StatusCreated, resp.StatusCode)
	pet := decodeBody(t, resp)["data"].(map[string]any)
	petID := int64(pet["id"].(float64))

	// Eligibility starts at NO_SUBMISSION.
	resp = f.request(t, stdhttp.MethodGet, "/applications/eligibility", userToken, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	eligibility := decodeBody(t, resp)["data"].(map[string]any)
	assert.Equal(t, false, eligibility["allowed"])
	assert.Equal(t, "NO_SUBMISSION", eligibility["reason"])

	// Submit the questionnaire.
	resp = f.request(t, stdhttp.MethodPost, "/applications", userToken, map[string]any{
		"answers": map[string]string{jsonKey(questionID): "yes"},
	})
	require.Equal(t, stdhttp.StatusCreated, resp.StatusCode)
	record := decodeBody(t, resp)["data"].(map[string]any)
	recordID := record["id"].(string)
	assert.Equal(t, "SUBMITTED", record["status"])

	// Second submit conflicts.
	resp = f.request(t, stdhttp.MethodPost, "/applications", userToken, map[string]any{
		"answers": map[string]string{jsonKey(questionID): "yes"},
	})
	require.Equal(t, stdhttp.StatusConflict, resp.StatusCode)
	errObj := decodeBody(t, resp)["error"].(map[string]any)
	assert.Equal(t, "ALREADY_OPEN", errObj["code"])

	// Staff approves; thereafter the user resubmits and takes the pet.
	resp = f.request(t, stdhttp.MethodPost, "/reviews/"+recordID, staffToken, map[string]string{"decision": "APPROVE"})
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	resp = f.request(t, stdhttp.MethodPost, "/applications", userToken, map[string]any{
		"answers": map[string]string{jsonKey(questionID): "yes"},
	})
	require.Equal(t, stdhttp.StatusCreated, resp.StatusCode)

	resp = f.request(t, stdhttp.MethodPost, "/applications/pet", userToken, map[string]any{"pet_id": petID})
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	resp = f.request(t, stdhttp.MethodGet, "/pets/"+jsonKey(petID), "", nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	petBody := decodeBody(t, resp)["data"].(map[string]any)
	assert.Equal(t, "PENDING", petBody["status"])
}

func jsonKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
