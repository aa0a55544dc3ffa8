package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/case-service/internal/api/http/handlers"
	"github.com/spec-kit/case-service/internal/auth"
	"github.com/spec-kit/case-service/internal/config"
	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/events"
	"github.com/spec-kit/case-service/internal/observability"
	"github.com/spec-kit/case-service/internal/persistence"
	"github.com/spec-kit/case-service/internal/repository/memstore"
	"github.com/spec-kit/case-service/internal/service"
)

type testServer struct {
	app      *fiber.App
	seedCase string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	store := memstore.New()
	require.NoError(t, persistence.Seed(ctx, persistence.SeedRepositories{
		Users: store.Users(), Statuses: store.Statuses(), Cases: store.Cases(),
	}, logger))

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, AllowUserHeader: true}}

	caseSvc := service.NewCaseService(service.CaseDependencies{
		CaseRepo: store.Cases(), HistoryRepo: store.History(), Statuses: store.Statuses(),
		Dispatcher: dispatcher, Logger: logger,
	})
	assignSvc := service.NewAssignmentService(service.AssignmentDependencies{
		CaseRepo: store.Cases(), UserRepo: store.Users(), Dispatcher: dispatcher, Logger: logger,
	})
	statsSvc := service.NewStatsService(service.StatsDependencies{
		CaseRepo: store.Cases(), UserRepo: store.Users(), Statuses: store.Statuses(),
	})
	authSvc := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: store.Users()})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("case-service", "test", map[string]handlers.Pinger{"postgres": (*persistence.Postgres)(nil)}),
		Auth:           handlers.NewAuthHandler(authSvc),
		Cases:          handlers.NewCasesHandler(caseSvc, assignSvc, statsSvc),
		AuthMiddleware: auth.NewAuthMiddleware(authSvc.TokenManager(), store.Users(), cfg.Auth.AllowUserHeader),
		Metrics:        metrics,
	})

	page, err := caseSvc.ListCases(ctx, mustActor(t, store, persistence.DemoAdminID), service.CaseListFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	return &testServer{app: app, seedCase: page.Items[0].ID}
}

func mustActor(t *testing.T, store *memstore.Store, userID string) domain.Actor {
	t.Helper()
	user, err := store.Users().GetByID(context.Background(), userID)
	require.NoError(t, err)
	return user.Actor()
}

func (s *testServer) do(t *testing.T, method, path, userID, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if userID != "" {
		req.Header.Set(auth.UserHeader, userID)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload map[string]any
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &payload), string(raw))
	}
	return resp.StatusCode, payload
}

func errorCode(payload map[string]any) string {
	errBody, _ := payload["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestCreateAndFetchCase(t *testing.T) {
	s := newTestServer(t)

	status, created := s.do(t, fiber.MethodPost, "/api/v1/cases", persistence.DemoSupervisorID,
		`{"title":"Printer on fire","description":"Third floor"}`)
	require.Equal(t, fiber.StatusCreated, status)
	data := created["data"].(map[string]any)
	assert.Equal(t, "Printer on fire", data["title"])
	assert.Nil(t, data["assignedTo"])
	assert.Equal(t, "TO_BE_REVIEWED", data["status"].(map[string]any)["name"])
	assert.Equal(t, "Bob", data["creator"].(map[string]any)["name"])

	status, fetched := s.do(t, fiber.MethodGet, "/api/v1/cases/"+data["id"].(string), persistence.DemoSupervisorID, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, data["id"], fetched["data"].(map[string]any)["id"])
}

func TestCreateCaseGuards(t *testing.T) {
	s := newTestServer(t)

	status, payload := s.do(t, fiber.MethodPost, "/api/v1/cases", persistence.DemoAgentID, `{"title":"t","description":"d"}`)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(payload))

	status, payload = s.do(t, fiber.MethodPost, "/api/v1/cases", "", `{"title":"t","description":"d"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(payload))

	status, payload = s.do(t, fiber.MethodPost, "/api/v1/cases", persistence.DemoAdminID, `{"title":"   ","description":"d"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(payload))

	long := strings.Repeat("x", 201)
	status, _ = s.do(t, fiber.MethodPost, "/api/v1/cases", persistence.DemoAdminID, `{"title":"`+long+`","description":"d"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestListCasesScopedForAgent(t *testing.T) {
	s := newTestServer(t)

	status, payload := s.do(t, fiber.MethodGet, "/api/v1/cases", persistence.DemoAgentID, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, payload["data"])
	assert.EqualValues(t, 0, payload["meta"].(map[string]any)["total"])

	status, payload = s.do(t, fiber.MethodGet, "/api/v1/cases?page=1&limit=5", persistence.DemoAdminID, "")
	require.Equal(t, fiber.StatusOK, status)
	meta := payload["meta"].(map[string]any)
	assert.EqualValues(t, 1, meta["total"])
	assert.EqualValues(t, 5, meta["limit"])
	assert.Equal(t, false, meta["hasNextPage"])

	status, payload = s.do(t, fiber.MethodGet, "/api/v1/cases?limit=10&page=9223372036854775807", persistence.DemoAdminID, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, payload["data"])
	assert.EqualValues(t, 1, payload["meta"].(map[string]any)["total"])

	status, payload = s.do(t, fiber.MethodGet, "/api/v1/cases?limit=500", persistence.DemoAdminID, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(payload))
}

func TestAssignThenUpdateStatus(t *testing.T) {
	s := newTestServer(t)
	casePath := "/api/v1/cases/" + s.seedCase

	status, payload := s.do(t, fiber.MethodPatch, casePath+"/assign", persistence.DemoSupervisorID,
		`{"userId":"`+persistence.DemoAgentID+`"}`)
	require.Equal(t, fiber.StatusOK, status)
	data := payload["data"].(map[string]any)
	assert.Equal(t, persistence.DemoAgentID, data["assignedTo"])
	assert.Equal(t, persistence.DemoSupervisorID, data["assignedBy"])

	status, payload = s.do(t, fiber.MethodPatch, casePath+"/status", persistence.DemoSupervisorID, `{"status":"COMPLETE"}`)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(payload))

	status, payload = s.do(t, fiber.MethodPatch, casePath+"/status", persistence.DemoAgentID, `{"status":"NOT_A_STATUS"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "BAD_REQUEST", errorCode(payload))

	status, payload = s.do(t, fiber.MethodPatch, casePath+"/status", persistence.DemoAgentID, `{"status":"COMPLETE"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "COMPLETE", payload["data"].(map[string]any)["status"].(map[string]any)["name"])

	// ADMIN is not an assignee role for status changes.
	status, _ = s.do(t, fiber.MethodPatch, casePath+"/status", persistence.DemoAdminID, `{"status":"OBSERVATION"}`)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestAssignForbiddenForPeerRole(t *testing.T) {
	s := newTestServer(t)
	status, payload := s.do(t, fiber.MethodPatch, "/api/v1/cases/"+s.seedCase+"/assign", persistence.DemoSupervisorID,
		`{"userId":"`+persistence.DemoSupervisorID+`"}`)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(payload))

	status, payload = s.do(t, fiber.MethodPatch, "/api/v1/cases/"+s.seedCase+"/assign", persistence.DemoAdminID, `{"userId":"nope"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(payload))
}

func TestGetCaseErrors(t *testing.T) {
	s := newTestServer(t)

	status, payload := s.do(t, fiber.MethodGet, "/api/v1/cases/not-a-uuid", persistence.DemoAdminID, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(payload))

	status, payload = s.do(t, fiber.MethodGet, "/api/v1/cases/00000000-0000-4000-8000-000000000000", persistence.DemoAdminID, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(payload))

	status, _ = s.do(t, fiber.MethodGet, "/api/v1/cases/"+s.seedCase, persistence.DemoAgentID, "")
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestReferenceEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, payload := s.do(t, fiber.MethodGet, "/api/v1/cases/statuses", persistence.DemoAgentID, "")
	require.Equal(t, fiber.StatusOK, status)
	statuses := payload["data"].([]any)
	require.Len(t, statuses, 4)
	assert.Equal(t, "TO_BE_REVIEWED", statuses[0].(map[string]any)["name"])

	status, payload = s.do(t, fiber.MethodGet, "/api/v1/cases/users", persistence.DemoSupervisorID, "")
	require.Equal(t, fiber.StatusOK, status)
	users := payload["data"].([]any)
	require.Len(t, users, 1)
	assert.Equal(t, "Sam", users[0].(map[string]any)["name"])

	status, payload = s.do(t, fiber.MethodGet, "/api/v1/cases/status-counts", persistence.DemoAdminID, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, payload["data"].(map[string]any)["total"])

	status, payload = s.do(t, fiber.MethodGet, "/api/v1/cases/stats/"+persistence.DemoSupervisorID, persistence.DemoAgentID, "")
	require.Equal(t, fiber.StatusOK, status)
	stats := payload["data"].(map[string]any)
	assert.Equal(t, "Bob", stats["userName"])
	assert.EqualValues(t, 1, stats["totalAssigned"])
	assert.Len(t, stats["byStatus"], 4)
}

func TestLoginIssuesBearerToken(t *testing.T) {
	s := newTestServer(t)

	status, payload := s.do(t, fiber.MethodPost, "/api/v1/auth/login", "", `{"userId":"`+persistence.DemoAgentID+`"}`)
	require.Equal(t, fiber.StatusOK, status)
	token := payload["data"].(map[string]any)["auth"].(map[string]any)["token"].(string)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var me map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.Equal(t, "AGENT", me["data"].(map[string]any)["role"])

	status, payload = s.do(t, fiber.MethodPost, "/api/v1/auth/login", "", `{"userId":"00000000-0000-4000-8000-000000000000"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(payload))
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	status, payload := s.do(t, fiber.MethodGet, "/health/ready", "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "disabled", payload["dependencies"].(map[string]any)["postgres"])

	s.do(t, fiber.MethodGet, "/api/v1/cases/"+s.seedCase, persistence.DemoAgentID, "")

	req := httptest.NewRequest(fiber.MethodGet, "/metrics", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "authorization_denials_total")
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	status, payload := s.do(t, fiber.MethodGet, "/nope", "", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(payload))
}
