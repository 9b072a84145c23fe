package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/tensioapp/tensio/internal/analysis"
	"github.com/tensioapp/tensio/internal/models"
)

// parseAnalysisRequest parses the shared analysis request body and resolves
// the analysis window. A nil request means the error response was already
// written.
func (h *Handler) parseAnalysisRequest(c *fiber.Ctx) (*models.AnalysisRequest, int, error) {
	var req models.AnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, 0, c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_JSON",
				Message: "Failed to parse JSON body",
				Details: map[string]interface{}{"error": err.Error()},
			},
		})
	}
	if req.PatientID == "" {
		return nil, 0, c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: "patient_id is required",
			},
		})
	}
	return &req, req.WindowDays(h.cfg.DefaultWindowDays), nil
}

// analysisError maps analysis layer errors to HTTP responses.
func (h *Handler) analysisError(c *fiber.Ctx, err error) error {
	if analysisErr, ok := err.(*analysis.Error); ok {
		status := fiber.StatusInternalServerError
		switch analysisErr.Code {
		case analysis.CodePatientNotFound:
			status = fiber.StatusNotFound
		case analysis.CodeInsufficientData:
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    analysisErr.Code,
				Message: analysisErr.Message,
				Details: analysisErr.Details,
			},
		})
	}
	h.logger.Error("Unclassified analysis error", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INTERNAL_ERROR",
			Message: "An unexpected error occurred",
		},
	})
}

// GetInsights handles POST /api/v1/analysis/insights
func (h *Handler) GetInsights(c *fiber.Ctx) error {
	req, days, err := h.parseAnalysisRequest(c)
	if req == nil {
		return err
	}

	insights, err := h.analysisService.Insights(c.UserContext(), req.PatientID, days)
	if err != nil {
		return h.analysisError(c, err)
	}
	return c.JSON(models.InsightsResponse{Insights: insights})
}

// GetRiskAssessment handles POST /api/v1/analysis/risk-assessment
func (h *Handler) GetRiskAssessment(c *fiber.Ctx) error {
	req, days, err := h.parseAnalysisRequest(c)
	if req == nil {
		return err
	}

	assessment, err := h.analysisService.RiskAssessment(c.UserContext(), req.PatientID, days)
	if err != nil {
		return h.analysisError(c, err)
	}
	return c.JSON(assessment)
}

// GetPredictions handles POST /api/v1/analysis/predictions
func (h *Handler) GetPredictions(c *fiber.Ctx) error {
	req, days, err := h.parseAnalysisRequest(c)
	if req == nil {
		return err
	}

	predictions, err := h.analysisService.Predictions(c.UserContext(), req.PatientID, days)
	if err != nil {
		return h.analysisError(c, err)
	}
	return c.JSON(models.TrendPredictionsResponse{Predictions: predictions})
}

// GetHealthScore handles POST /api/v1/analysis/health-score
func (h *Handler) GetHealthScore(c *fiber.Ctx) error {
	req, days, err := h.parseAnalysisRequest(c)
	if req == nil {
		return err
	}

	score, err := h.analysisService.HealthScore(c.UserContext(), req.PatientID, days)
	if err != nil {
		return h.analysisError(c, err)
	}
	return c.JSON(score)
}

// GetPatterns handles POST /api/v1/analysis/patterns
func (h *Handler) GetPatterns(c *fiber.Ctx) error {
	req, days, err := h.parseAnalysisRequest(c)
	if req == nil {
		return err
	}

	patterns, err := h.analysisService.Patterns(c.UserContext(), req.PatientID, days)
	if err != nil {
		return h.analysisError(c, err)
	}
	return c.JSON(patterns)
}

// GetCorrelations handles POST /api/v1/analysis/correlations
func (h *Handler) GetCorrelations(c *fiber.Ctx) error {
	req, days, err := h.parseAnalysisRequest(c)
	if req == nil {
		return err
	}

	correlations, err := h.analysisService.Correlations(c.UserContext(), req.PatientID, days)
	if err != nil {
		return h.analysisError(c, err)
	}
	return c.JSON(correlations)
}

// GetForecast handles POST /api/v1/analysis/forecast
func (h *Handler) GetForecast(c *fiber.Ctx) error {
	var req models.ForecastRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_JSON",
				Message: "Failed to parse JSON body",
				Details: map[string]interface{}{"error": err.Error()},
			},
		})
	}
	if req.PatientID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: "patient_id is required",
			},
		})
	}
	req.Normalize()

	forecast, err := h.analysisService.Forecast(c.UserContext(), req.PatientID, req.Metric, req.ForecastDays)
	if err != nil {
		return h.analysisError(c, err)
	}
	return c.JSON(forecast)
}

// InvalidateCache handles POST /api/v1/analysis/invalidate-cache/:patient_id
func (h *Handler) InvalidateCache(c *fiber.Ctx) error {
	patientID := c.Params("patient_id")
	if patientID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: "patient_id is required",
			},
		})
	}

	removed := h.analysisService.InvalidateCache(c.UserContext(), patientID)
	return c.JSON(fiber.Map{
		"message":         fmt.Sprintf("Cache invalidated for patient %s", patientID),
		"entries_removed": removed,
	})
}

// GetCacheStats handles GET /api/v1/analysis/cache-stats
func (h *Handler) GetCacheStats(c *fiber.Ctx) error {
	stats := h.analysisService.CacheStats(c.UserContext())
	return c.JSON(models.CacheStatsResponse{
		Size:     stats.Size,
		Capacity: stats.Capacity,
		TTL:      int(stats.TTL.Seconds()),
	})
}
