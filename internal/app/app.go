// Package app assembles the HTTP application from already constructed
// dependencies.
package app

import (
	"context"
	"errors"
	"time"

	"astromatch/internal/handlers"
	"astromatch/internal/metrics"
	"astromatch/internal/middleware"
	"astromatch/internal/repositories"
	"astromatch/internal/services"
	"astromatch/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Dependencies are the clients the application is built from. Events and
// Health entries are optional.
type Dependencies struct {
	Store     repositories.Store
	Sessions  session.Store
	Events    services.EventPublisher
	JWTSecret string
	TokenTTL  time.Duration
	AdminKey  string
	// RequestLog enables Fiber's access log.
	RequestLog bool
	// Health lists named checks reported by GET /health.
	Health map[string]Pinger
}

var (
	errNoStore    = errors.New("app: store is required")
	errNoSessions = errors.New("app: session store is required")
)

// New wires services, handlers and middleware into a Fiber app.
func New(deps Dependencies) (*fiber.App, error) {
	if deps.Store == nil {
		return nil, errNoStore
	}
	if deps.Sessions == nil {
		return nil, errNoSessions
	}

	// --- Services ---
	authService := services.NewAuthService(deps.Store.Users(), deps.Sessions, deps.Events, deps.JWTSecret, deps.TokenTTL)
	userService := services.NewUserService(deps.Store.Users())
	calendarService := services.NewCalendarService(userService)
	messageService := services.NewMessageService(deps.Store.Users(), deps.Store.Messages(), deps.Events)
	adminService := services.NewAdminService(deps.Store, deps.Events)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	calendarHandler := handlers.NewCalendarHandler(calendarService)
	messageHandler := handlers.NewMessageHandler(messageService)
	adminHandler := handlers.NewAdminHandler(adminService)

	app := fiber.New(fiber.Config{AppName: "astromatch"})

	// --- Middleware ---
	app.Use(recover.New())
	if deps.RequestLog {
		app.Use(logger.New())
	}
	app.Use(metrics.Middleware())

	// --- API Routes ---
	authRequired := middleware.AuthRequired(authService)
	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1, authRequired)
	userHandler.RegisterRoutes(apiV1, authRequired)
	calendarHandler.RegisterRoutes(apiV1)
	messageHandler.RegisterRoutes(apiV1, authRequired)
	adminHandler.RegisterRoutes(apiV1, middleware.AdminKey(deps.AdminKey))

	app.Get("/health", healthHandler(deps.Health))
	app.Get("/metrics", metrics.Handler())

	return app, nil
}

func healthHandler(checks map[string]Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status := "healthy"
		code := fiber.StatusOK
		results := make(map[string]string, len(checks))
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				results[name] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
			"checks": results,
		})
	}
}
