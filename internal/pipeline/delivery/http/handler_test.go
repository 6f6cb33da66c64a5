package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-market-signal/internal/entity"
	"golang-market-signal/internal/pipeline/dto"
	"golang-market-signal/internal/pipeline/service"
	"golang-market-signal/pkg/logger"
)

type stubReportService struct {
	lastQuery   dto.PredictionQuery
	lastLimit   int
	lastJobType string
	err         error
}

func (s *stubReportService) ListPredictions(_ context.Context, q dto.PredictionQuery) ([]dto.PredictionResponse, error) {
	s.lastQuery = q
	if s.err != nil {
		return nil, s.err
	}
	return []dto.PredictionResponse{{ID: 1, Symbol: "TSLA", Status: "PENDING"}}, nil
}

func (s *stubReportService) GetPrediction(_ context.Context, id uint) (*dto.PredictionResponse, error) {
	if id != 1 {
		return nil, service.ErrNotFound
	}
	return &dto.PredictionResponse{ID: 1, Symbol: "TSLA"}, nil
}

func (s *stubReportService) GetAccuracy(context.Context) (*dto.AccuracyResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AccuracyResponse{Total: 4, Correct: 3, Accuracy: 75}, nil
}

func (s *stubReportService) GetMistakes(_ context.Context, limit int) ([]entity.MistakeExample, error) {
	s.lastLimit = limit
	return []entity.MistakeExample{{Symbol: "AAPL", PredictedDirection: entity.DirectionUp}}, nil
}

func (s *stubReportService) ListRuns(_ context.Context, jobType string, limit int) ([]dto.RunHistoryResponse, error) {
	s.lastJobType = jobType
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return []dto.RunHistoryResponse{{ID: 9, JobType: jobType, Status: "COMPLETED"}}, nil
}

func newServer(svc service.ReportService) *echo.Echo {
	e := echo.New()
	g := e.Group("/api/v1")
	NewPredictionHandler(svc, logger.NewNop()).RegisterRoutes(g)
	NewRunHandler(svc, logger.NewNop()).RegisterRoutes(g)
	return e
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestListPredictions(t *testing.T) {
	svc := &stubReportService{}
	rec := get(newServer(svc), "/api/v1/predictions?status=PENDING&symbol=TSLA&limit=5")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.PredictionQuery{Status: "PENDING", Symbol: "TSLA", Limit: 5}, svc.lastQuery)

	var body []dto.PredictionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "TSLA", body[0].Symbol)
}

func TestListPredictions_InvalidStatus(t *testing.T) {
	svc := &stubReportService{err: service.ErrInvalidQuery}
	rec := get(newServer(svc), "/api/v1/predictions?status=LOST")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPredictionByID(t *testing.T) {
	e := newServer(&stubReportService{})

	assert.Equal(t, http.StatusOK, get(e, "/api/v1/predictions/1").Code)
	assert.Equal(t, http.StatusNotFound, get(e, "/api/v1/predictions/2").Code)
	assert.Equal(t, http.StatusBadRequest, get(e, "/api/v1/predictions/abc").Code)
}

func TestGetAccuracy(t *testing.T) {
	rec := get(newServer(&stubReportService{}), "/api/v1/accuracy")
	require.Equal(t, http.StatusOK, rec.Code)

	var body dto.AccuracyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, dto.AccuracyResponse{Total: 4, Correct: 3, Accuracy: 75}, body)

	rec = get(newServer(&stubReportService{err: errors.New("db down")}), "/api/v1/accuracy")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestGetMistakes(t *testing.T) {
	svc := &stubReportService{}
	e := newServer(svc)

	rec := get(e, "/api/v1/mistakes?limit=3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, svc.lastLimit)
	assert.Contains(t, rec.Body.String(), `"symbol":"AAPL"`)

	assert.Equal(t, http.StatusBadRequest, get(e, "/api/v1/mistakes?limit=many").Code)
}

func TestListRuns(t *testing.T) {
	svc := &stubReportService{}
	rec := get(newServer(svc), "/api/v1/runs?job_type=VERIFICATION&limit=2")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "VERIFICATION", svc.lastJobType)
	assert.Equal(t, 2, svc.lastLimit)
}
