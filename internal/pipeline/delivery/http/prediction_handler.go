package http

import (
	"errors"
	"net/http"
	"strconv"

	"golang-market-signal/internal/pipeline/dto"
	"golang-market-signal/internal/pipeline/service"
	"golang-market-signal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PredictionHandler handles HTTP requests for predictions and their accuracy.
type PredictionHandler struct {
	reportService service.ReportService
	logger        *logger.Logger
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(reportService service.ReportService, logger *logger.Logger) *PredictionHandler {
	return &PredictionHandler{reportService: reportService, logger: logger}
}

// RegisterRoutes registers the prediction routes to the Echo group.
func (h *PredictionHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/predictions", h.ListPredictions)
	g.GET("/predictions/:id", h.GetPredictionByID)
	g.GET("/accuracy", h.GetAccuracy)
	g.GET("/mistakes", h.GetMistakes)
}

// ListPredictions godoc
// @Summary List predictions
// @Description List recorded predictions, newest first
// @Tags predictions
// @Produce  json
// @Param   status  query   string false   "PENDING or VERIFIED"
// @Param   symbol  query   string false   "Ticker symbol"
// @Param   limit   query   int    false   "Page size (default 50, max 200)"
// @Param   offset  query   int    false   "Rows to skip"
// @Success 200 {array} dto.PredictionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /predictions [get]
func (h *PredictionHandler) ListPredictions(c echo.Context) error {
	var q dto.PredictionQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid query parameters"})
	}

	predictions, err := h.reportService.ListPredictions(c.Request().Context(), q)
	if err != nil {
		return h.respondError(c, "Failed to list predictions", err)
	}
	return c.JSON(http.StatusOK, predictions)
}

// GetPredictionByID godoc
// @Summary Get a prediction by ID
// @Tags predictions
// @Produce  json
// @Param   id  path    int true    "Prediction ID"
// @Success 200 {object} dto.PredictionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /predictions/{id} [get]
func (h *PredictionHandler) GetPredictionByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid prediction ID"})
	}

	prediction, err := h.reportService.GetPrediction(c.Request().Context(), uint(id))
	if err != nil {
		return h.respondError(c, "Failed to get prediction", err)
	}
	return c.JSON(http.StatusOK, prediction)
}

// GetAccuracy godoc
// @Summary Get running accuracy
// @Description Share of verified predictions whose direction was correct
// @Tags feedback
// @Produce  json
// @Success 200 {object} dto.AccuracyResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /accuracy [get]
func (h *PredictionHandler) GetAccuracy(c echo.Context) error {
	accuracy, err := h.reportService.GetAccuracy(c.Request().Context())
	if err != nil {
		return h.respondError(c, "Failed to get accuracy", err)
	}
	return c.JSON(http.StatusOK, accuracy)
}

// GetMistakes godoc
// @Summary List recent mistakes
// @Description Most recent wrong predictions, as fed back into prompts
// @Tags feedback
// @Produce  json
// @Param   limit  query   int false   "Number of mistakes (default 50)"
// @Success 200 {array} entity.MistakeExample
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /mistakes [get]
func (h *PredictionHandler) GetMistakes(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit"})
		}
		limit = n
	}

	mistakes, err := h.reportService.GetMistakes(c.Request().Context(), limit)
	if err != nil {
		return h.respondError(c, "Failed to get mistakes", err)
	}
	return c.JSON(http.StatusOK, mistakes)
}

func (h *PredictionHandler) respondError(c echo.Context, msg string, err error) error {
	return respondError(c, h.logger, msg, err)
}

func respondError(c echo.Context, log *logger.Logger, msg string, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidQuery):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	default:
		log.ErrorContext(c.Request().Context(), msg, logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
	}
}
