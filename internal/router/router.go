package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/algotutor-api/internal/config"
	"github.com/noah-isme/algotutor-api/internal/handler"
	"github.com/noah-isme/algotutor-api/internal/middleware"
	"github.com/noah-isme/algotutor-api/internal/models"
	"github.com/noah-isme/algotutor-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	DirectoryHandler *handler.DirectoryHandler
	LessonHandler    *handler.LessonHandler
	NewsHandler      *handler.NewsHandler
	UploadHandler    *handler.UploadHandler
	QuestionHandler  *handler.QuestionHandler
	I18nHandler      *handler.I18nHandler
	EventHandler     *handler.EventHandler
	ActivityHandler  *handler.ActivityHandler
	SeedHandler      *handler.SeedHandler
	JWTMiddleware    fiber.Handler
	HealthProbes     map[string]handler.Probe
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	// Use provided JWT middleware, or a no-op if nil
	protect := deps.JWTMiddleware
	if protect == nil {
		protect = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.I18nHandler != nil {
		deps.I18nHandler.Register(api)
	}
	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"), protect)
	}
	if deps.DirectoryHandler != nil {
		deps.DirectoryHandler.RegisterPublic(api, protect)
	}
	if deps.LessonHandler != nil {
		deps.LessonHandler.Register(api.Group("/lessons"), protect)
	}
	if deps.NewsHandler != nil {
		deps.NewsHandler.Register(api.Group("/news"), protect)
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.Register(api.Group("/uploads"), protect)
	}
	if deps.QuestionHandler != nil {
		deps.QuestionHandler.Register(api.Group("/questions"), protect)
	}
	if deps.EventHandler != nil {
		deps.EventHandler.Register(api.Group("/events"), protect)
	}

	// The seed endpoint authenticates with its own token.
	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/admin/seed"))
	}

	admin := api.Group("/admin", protect, middleware.RequireRole(models.RoleAdmin))
	if deps.DirectoryHandler != nil {
		deps.DirectoryHandler.RegisterAdmin(admin)
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(admin.Group("/activity"))
	}
}
