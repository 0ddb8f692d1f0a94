package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/echoclass/classboard/internal/config"
	"github.com/echoclass/classboard/internal/handler"
	"github.com/echoclass/classboard/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DashboardHandler *handler.DashboardHandler
	WorkflowHandler  *handler.WorkflowHandler
	ReviewHandler    *handler.ReviewHandler
	FeedReporter     handler.ConnStateReporter
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.FeedReporter))

	app.Get("/metrics", observability.MetricsHandler())

	if deps.DashboardHandler != nil {
		dashboard := api.Group("/dashboard")
		deps.DashboardHandler.Register(dashboard)
	}

	if deps.WorkflowHandler != nil {
		authoring := api.Group("/authoring")
		deps.WorkflowHandler.Register(authoring)
	}

	if deps.ReviewHandler != nil {
		deps.ReviewHandler.Register(api)
	}
}
