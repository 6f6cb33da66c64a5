package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"golang-market-signal/internal/entity"
	"golang-market-signal/internal/pipeline/dto"
	"golang-market-signal/internal/pipeline/repository"
	"golang-market-signal/pkg/utils"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidQuery is returned for malformed listing filters.
	ErrInvalidQuery = errors.New("invalid query")
)

// ReportService exposes read-only views over predictions and runs.
type ReportService interface {
	ListPredictions(ctx context.Context, q dto.PredictionQuery) ([]dto.PredictionResponse, error)
	GetPrediction(ctx context.Context, id uint) (*dto.PredictionResponse, error)
	GetAccuracy(ctx context.Context) (*dto.AccuracyResponse, error)
	GetMistakes(ctx context.Context, limit int) ([]entity.MistakeExample, error)
	ListRuns(ctx context.Context, jobType string, limit int) ([]dto.RunHistoryResponse, error)
}

type reportService struct {
	predictionRepo repository.PredictionRepository
	historyRepo    repository.RunHistoryRepository
	feedback       FeedbackStore
}

// NewReportService creates a new ReportService.
func NewReportService(predictionRepo repository.PredictionRepository, historyRepo repository.RunHistoryRepository, feedback FeedbackStore) ReportService {
	return &reportService{
		predictionRepo: predictionRepo,
		historyRepo:    historyRepo,
		feedback:       feedback,
	}
}

func pageSize(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

func (s *reportService) ListPredictions(ctx context.Context, q dto.PredictionQuery) ([]dto.PredictionResponse, error) {
	status := entity.PredictionStatus(strings.ToUpper(q.Status))
	switch status {
	case "", entity.PredictionStatusPending, entity.PredictionStatusVerified:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidQuery, q.Status)
	}
	if q.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrInvalidQuery)
	}

	predictions, err := s.predictionRepo.List(ctx, repository.PredictionFilter{
		Status: status,
		Symbol: strings.ToUpper(strings.TrimSpace(q.Symbol)),
		Limit:  pageSize(q.Limit),
		Offset: q.Offset,
	})
	if err != nil {
		return nil, err
	}

	responses := make([]dto.PredictionResponse, 0, len(predictions))
	for i := range predictions {
		responses = append(responses, toPredictionResponse(&predictions[i]))
	}
	return responses, nil
}

func (s *reportService) GetPrediction(ctx context.Context, id uint) (*dto.PredictionResponse, error) {
	prediction, err := s.predictionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	resp := toPredictionResponse(prediction)
	return &resp, nil
}

func (s *reportService) GetAccuracy(ctx context.Context) (*dto.AccuracyResponse, error) {
	snapshot, err := s.feedback.Accuracy(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.AccuracyResponse{
		Total:    snapshot.Total,
		Correct:  snapshot.Correct,
		Accuracy: snapshot.Percent(),
	}, nil
}

func (s *reportService) GetMistakes(ctx context.Context, limit int) ([]entity.MistakeExample, error) {
	mistakes, err := s.feedback.Mistakes(ctx, pageSize(limit))
	if err != nil {
		return nil, err
	}
	if mistakes == nil {
		mistakes = []entity.MistakeExample{}
	}
	return mistakes, nil
}

func (s *reportService) ListRuns(ctx context.Context, jobType string, limit int) ([]dto.RunHistoryResponse, error) {
	jt := entity.JobType(strings.ToUpper(jobType))
	switch jt {
	case "", entity.JobTypeNewsIngestion, entity.JobTypeSocialIngestion, entity.JobTypeVerification:
	default:
		return nil, fmt.Errorf("%w: unknown job type %q", ErrInvalidQuery, jobType)
	}

	histories, err := s.historyRepo.FindRecent(ctx, jt, pageSize(limit))
	if err != nil {
		return nil, err
	}

	responses := make([]dto.RunHistoryResponse, 0, len(histories))
	for _, h := range histories {
		resp := dto.RunHistoryResponse{
			ID:        h.ID,
			JobType:   string(h.JobType),
			Status:    string(h.Status),
			Symbols:   []string(h.Symbols),
			Output:    h.Output.String,
			Error:     h.ErrorMessage.String,
			StartedAt: h.StartedAt,
		}
		if h.CompletedAt.Valid {
			resp.CompletedAt = utils.ToPointer(h.CompletedAt.Time)
			resp.DurationMs = h.CompletedAt.Time.Sub(h.StartedAt).Milliseconds()
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func toPredictionResponse(p *entity.Prediction) dto.PredictionResponse {
	resp := dto.PredictionResponse{
		ID:                 p.ID,
		Symbol:             p.Symbol,
		SourceType:         string(p.SourceType),
		Summary:            p.Summary,
		PredictedDirection: string(p.PredictedDirection),
		ConfidenceScore:    p.ConfidenceScore,
		StartPrice:         p.StartPrice,
		IsCorrect:          p.IsCorrect,
		Status:             string(p.Status),
		CreatedAt:          p.CreatedAt,
		VerifiedAt:         p.VerifiedAt,
	}
	if p.EndPrice.Valid {
		resp.EndPrice = utils.ToPointer(p.EndPrice.Decimal)
	}
	return resp
}
