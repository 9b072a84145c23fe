package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tensioapp/tensio/internal/models"
)

const serviceVersion = "1.0.0"

// Health handles GET /health
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   serviceVersion,
	})
}

// Root handles GET / and describes the service surface.
func (h *Handler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "Tensio Analysis",
		"version": serviceVersion,
		"endpoints": fiber.Map{
			"insights":         "/api/v1/analysis/insights",
			"risk_assessment":  "/api/v1/analysis/risk-assessment",
			"predictions":      "/api/v1/analysis/predictions",
			"health_score":     "/api/v1/analysis/health-score",
			"patterns":         "/api/v1/analysis/patterns",
			"correlations":     "/api/v1/analysis/correlations",
			"forecast":         "/api/v1/analysis/forecast",
			"invalidate_cache": "/api/v1/analysis/invalidate-cache/{patient_id}",
			"cache_stats":      "/api/v1/analysis/cache-stats",
			"health":           "/health",
		},
	})
}

// NotFound is the terminal handler for unmatched routes.
func (h *Handler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "NOT_FOUND",
			Message: "The requested resource was not found",
			Path:    c.Path(),
		},
	})
}
