package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/artem13815/bonsai/api/http/handlers"
	"github.com/artem13815/bonsai/pkg/metrics"
)

// Routes bundles everything the route table needs.
type Routes struct {
	Auth         *handlers.AuthHandler
	Tasks        *handlers.TaskHandler
	Health       *handlers.HealthHandler
	Metrics      *metrics.Metrics
	RequireAuth  fiber.Handler
	LoginLimiter fiber.Handler
}

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, r Routes) {
	// Health and readiness endpoints for probes/monitoring
	app.Get("/", r.Health.Root)
	app.Get("/health", r.Health.Health)
	app.Get("/ready", r.Health.Ready)
	if r.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(r.Metrics.Handler()))
	}

	a := app.Group("/auth")
	a.Post("/register", r.Auth.Register)
	a.Post("/login", r.LoginLimiter, r.Auth.Login)
	a.Post("/login/json", r.LoginLimiter, r.Auth.LoginJSON)
	a.Get("/me", r.RequireAuth, r.Auth.Me)
	a.Get("/verify", r.Auth.Verify)

	t := app.Group("/tasks", r.RequireAuth)
	t.Post("/", r.Tasks.Create)
	t.Get("/", r.Tasks.List)
	t.Get("/:id", r.Tasks.Get)
	t.Put("/:id", r.Tasks.Update)
	t.Delete("/:id", r.Tasks.Delete)
	t.Post("/:id/toggle", r.Tasks.Toggle)
}
