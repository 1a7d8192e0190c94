package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/spec-kit/token-auth-service/internal/api/http/handlers"
	"github.com/spec-kit/token-auth-service/internal/auth"
	"github.com/spec-kit/token-auth-service/internal/domain"
	"github.com/spec-kit/token-auth-service/internal/observability"
)

// Paths under /api/v1 that never require a bearer token.
const (
	PathToken            = "/api/v1/oauth/token"
	PathRevoke           = "/api/v1/oauth/revoke"
	PathRegisterUser     = "/api/v1/users/register"
	PathRegisterCustomer = "/api/v1/customers/register"
)

// PublicPaths is the static allow-list handed to the auth middleware.
var PublicPaths = []string{PathToken, PathRevoke, PathRegisterUser, PathRegisterCustomer}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tokens         *handlers.TokenHandler
	Registration   *handlers.RegistrationHandler
	Subject        *handlers.SubjectHandler
	AuthMiddleware *auth.Middleware
	Metrics        *observability.Metrics
	// TokenRateLimit caps token requests per client IP within TokenRateWindow; zero disables it.
	TokenRateLimit  int
	TokenRateWindow time.Duration
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	tokenHandlers := []fiber.Handler{}
	if cfg.TokenRateLimit > 0 {
		tokenHandlers = append(tokenHandlers, limiter.New(limiter.Config{
			Max:        cfg.TokenRateLimit,
			Expiration: cfg.TokenRateWindow,
			LimitReached: func(*fiber.Ctx) error {
				return fiber.ErrTooManyRequests
			},
		}))
	}
	tokenHandlers = append(tokenHandlers, cfg.Tokens.Issue)
	api.Post("/oauth/token", tokenHandlers...)
	api.Post("/oauth/revoke", cfg.Tokens.Revoke)

	api.Post("/users/register", cfg.Registration.RegisterUser)
	api.Post("/customers/register", cfg.Registration.RegisterCustomer)

	api.Get("/subject", auth.RequireSubject(), cfg.Subject.Current)
	api.Get("/users/subject", auth.RequirePrincipalType(domain.PrincipalTypeUser), cfg.Subject.Current)
	api.Get("/customers/subject", auth.RequirePrincipalType(domain.PrincipalTypeCustomer), cfg.Subject.Current)
}
