package http

import (
	"net/http"

	"golang-news-sentiment/internal/pipeline/service"
	"golang-news-sentiment/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StatusHandler exposes operational state of the pipeline.
type StatusHandler struct {
	orchestrator service.OrchestratorService
	logger       *logger.Logger
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(orchestrator service.OrchestratorService, log *logger.Logger) *StatusHandler {
	return &StatusHandler{orchestrator: orchestrator, logger: log}
}

// RegisterRoutes registers the status routes on the Echo instance.
func (h *StatusHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/api/v1/batches/latest", h.LatestBatch)
}

// Health reports liveness and the orchestrator's current state.
func (h *StatusHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
		"state":  h.orchestrator.State(),
	})
}

// LatestBatch returns the most recent batch summary.
func (h *StatusHandler) LatestBatch(c echo.Context) error {
	summary := h.orchestrator.LatestSummary()
	if summary == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no batch processed yet"})
	}
	return c.JSON(http.StatusOK, summary)
}
