package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/tripfriend/auth-service/internal/api/http/handlers"
	"github.com/tripfriend/auth-service/internal/auth"
	"github.com/tripfriend/auth-service/internal/domain"
	"github.com/tripfriend/auth-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Member         *handlers.MemberHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. The auth gateway runs for every route;
// its allow-list decides which ones skip authentication.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.AuthMiddleware.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/restore", cfg.Auth.Restore)
	authGroup.Get("/me", auth.RequireAuthenticated(), cfg.Auth.Me)

	memberGroup := app.Group("/member", auth.RequireAuthenticated())
	memberGroup.Delete("/me", cfg.Member.Withdraw)

	adminGroup := app.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	adminGroup.Get("/sessions/:username", cfg.Admin.GetSession)
	adminGroup.Delete("/sessions/:username", cfg.Admin.RevokeSession)
}
