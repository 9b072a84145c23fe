package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tensioapp/tensio/internal/analysis"
	"github.com/tensioapp/tensio/internal/config"
	"github.com/tensioapp/tensio/internal/handlers"
	"github.com/tensioapp/tensio/internal/logging"
	"github.com/tensioapp/tensio/internal/middleware"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, analysisService *analysis.Service, cfg config.Config) *handlers.Handler {
	h := handlers.New(logger, analysisService, cfg.Analysis)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger, logging.DefaultMiddlewareConfig()))

	// Service info and health check (no auth required)
	app.Get("/", h.Root)
	app.Get("/health", h.Health)

	// API key authentication middleware
	authMiddleware := middleware.APIKeyAuth(logger, cfg.Auth.APIKeys, cfg.Auth.Enabled)

	// Analysis routes (protected by API key)
	api := app.Group("/api/v1/analysis", authMiddleware)

	api.Post("/insights", h.GetInsights)
	api.Post("/risk-assessment", h.GetRiskAssessment)
	api.Post("/predictions", h.GetPredictions)
	api.Post("/health-score", h.GetHealthScore)
	api.Post("/patterns", h.GetPatterns)
	api.Post("/correlations", h.GetCorrelations)
	api.Post("/forecast", h.GetForecast)

	// Cache management
	api.Post("/invalidate-cache/:patient_id", h.InvalidateCache)
	api.Get("/cache-stats", h.GetCacheStats)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, analysisService *analysis.Service, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Tensio Analysis",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, analysisService, cfg)

	return app
}
