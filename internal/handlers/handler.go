package handlers

import (
	"github.com/tensioapp/tensio/internal/analysis"
	"github.com/tensioapp/tensio/internal/config"
	"github.com/tensioapp/tensio/internal/logging"
)

// Handler contains all HTTP handlers
type Handler struct {
	logger          *logging.Logger
	analysisService *analysis.Service
	cfg             config.AnalysisConfig
}

// New creates a new handler instance
func New(logger *logging.Logger, analysisService *analysis.Service, cfg config.AnalysisConfig) *Handler {
	return &Handler{
		logger:          logger,
		analysisService: analysisService,
		cfg:             cfg,
	}
}
