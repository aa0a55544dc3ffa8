package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/case-service/internal/api/http/handlers"
	"github.com/spec-kit/case-service/internal/auth"
	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Cases          *handlers.CasesHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	cases := api.Group("/cases", cfg.AuthMiddleware.Handle)
	managers := auth.RequireRole(domain.RoleAdmin, domain.RoleSupervisor)
	assignees := auth.RequireRole(domain.RoleSupervisor, domain.RoleAgent)

	cases.Post("/", managers, cfg.Cases.CreateCase)
	cases.Get("/", cfg.Cases.ListCases)
	cases.Get("/statuses", cfg.Cases.ListStatuses)
	cases.Get("/status-counts", cfg.Cases.StatusCounts)
	cases.Get("/users", cfg.Cases.AssignableUsers)
	cases.Get("/stats/:userId", cfg.Cases.UserStats)
	cases.Get("/:id", cfg.Cases.GetCase)
	cases.Get("/:id/history", cfg.Cases.ListHistory)
	cases.Patch("/:id/assign", managers, cfg.Cases.AssignCase)
	cases.Patch("/:id/status", assignees, cfg.Cases.UpdateStatus)
}
