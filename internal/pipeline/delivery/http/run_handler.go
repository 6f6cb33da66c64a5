package http

import (
	"net/http"
	"strconv"

	"golang-market-signal/internal/pipeline/service"
	"golang-market-signal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RunHandler handles HTTP requests for batch run history.
type RunHandler struct {
	reportService service.ReportService
	logger        *logger.Logger
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(reportService service.ReportService, logger *logger.Logger) *RunHandler {
	return &RunHandler{reportService: reportService, logger: logger}
}

// RegisterRoutes registers the run history routes to the Echo group.
func (h *RunHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/runs", h.ListRuns)
}

// ListRuns godoc
// @Summary List batch runs
// @Description Latest ingestion and verification runs, newest first
// @Tags runs
// @Produce  json
// @Param   job_type  query   string false   "NEWS_INGESTION, SOCIAL_INGESTION or VERIFICATION"
// @Param   limit     query   int    false   "Page size (default 50, max 200)"
// @Success 200 {array} dto.RunHistoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /runs [get]
func (h *RunHandler) ListRuns(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit"})
		}
		limit = n
	}

	runs, err := h.reportService.ListRuns(c.Request().Context(), c.QueryParam("job_type"), limit)
	if err != nil {
		return respondError(c, h.logger, "Failed to list runs", err)
	}
	return c.JSON(http.StatusOK, runs)
}
