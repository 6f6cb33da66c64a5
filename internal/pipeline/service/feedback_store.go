package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"golang-market-signal/internal/entity"
	"golang-market-signal/internal/pipeline/repository"
	"golang-market-signal/pkg/logger"
)

// RecordInput holds the fields of a new prediction.
type RecordInput struct {
	Symbol     string
	SourceType entity.SourceType
	Summary    string
	Direction  entity.Direction
	Score      int
	StartPrice decimal.Decimal
	Context    datatypes.JSON
}

// FeedbackStore owns prediction state. Record and Verify never return errors:
// a failed write is logged and dropped.
type FeedbackStore interface {
	Record(ctx context.Context, in RecordInput) (*entity.Prediction, bool)
	Pending(ctx context.Context) ([]entity.Prediction, error)
	Verify(ctx context.Context, id uint, endPrice decimal.Decimal, isCorrect bool) bool
	Accuracy(ctx context.Context) (entity.AccuracySnapshot, error)
	Mistakes(ctx context.Context, limit int) ([]entity.MistakeExample, error)
}

type feedbackStore struct {
	repo   repository.PredictionRepository
	logger *logger.Logger
	now    func() time.Time
}

// NewFeedbackStore creates a FeedbackStore over a prediction repository.
func NewFeedbackStore(repo repository.PredictionRepository, log *logger.Logger) FeedbackStore {
	return &feedbackStore{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

func (s *feedbackStore) Record(ctx context.Context, in RecordInput) (*entity.Prediction, bool) {
	prediction := &entity.Prediction{
		Symbol:             in.Symbol,
		SourceType:         in.SourceType,
		Summary:            in.Summary,
		PredictedDirection: in.Direction,
		ConfidenceScore:    in.Score,
		StartPrice:         in.StartPrice,
		Status:             entity.PredictionStatusPending,
		Context:            in.Context,
	}
	if err := s.repo.Create(ctx, prediction); err != nil {
		s.logger.ErrorContext(ctx, "Failed to record prediction",
			logger.StringField("symbol", in.Symbol),
			logger.StringField("source_type", string(in.SourceType)),
			logger.ErrorField(err),
		)
		return nil, false
	}
	s.logger.InfoContext(ctx, "Prediction recorded",
		logger.Field("id", prediction.ID),
		logger.StringField("symbol", in.Symbol),
		logger.StringField("direction", string(in.Direction)),
		logger.IntField("score", in.Score),
	)
	return prediction, true
}

func (s *feedbackStore) Pending(ctx context.Context) ([]entity.Prediction, error) {
	predictions, err := s.repo.FindPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending predictions: %w", err)
	}
	return predictions, nil
}

// Verify reports whether the prediction moved from PENDING to VERIFIED. An
// unknown or already verified id is a no-op.
func (s *feedbackStore) Verify(ctx context.Context, id uint, endPrice decimal.Decimal, isCorrect bool) bool {
	err := s.repo.MarkVerified(ctx, id, endPrice, isCorrect, s.now())
	switch {
	case err == nil:
		return true
	case errors.Is(err, repository.ErrPredictionNotPending):
		s.logger.WarnContext(ctx, "Prediction already verified or missing", logger.Field("id", id))
	default:
		s.logger.ErrorContext(ctx, "Failed to verify prediction", logger.Field("id", id), logger.ErrorField(err))
	}
	return false
}

// Accuracy runs the two counts independently, they are not one snapshot.
func (s *feedbackStore) Accuracy(ctx context.Context) (entity.AccuracySnapshot, error) {
	total, err := s.repo.CountVerified(ctx)
	if err != nil {
		return entity.AccuracySnapshot{}, fmt.Errorf("failed to count verified predictions: %w", err)
	}
	correct, err := s.repo.CountCorrect(ctx)
	if err != nil {
		return entity.AccuracySnapshot{}, fmt.Errorf("failed to count correct predictions: %w", err)
	}
	return entity.AccuracySnapshot{Total: total, Correct: correct}, nil
}

func (s *feedbackStore) Mistakes(ctx context.Context, limit int) ([]entity.MistakeExample, error) {
	predictions, err := s.repo.FindMistakes(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get mistakes: %w", err)
	}
	mistakes := make([]entity.MistakeExample, 0, len(predictions))
	for _, p := range predictions {
		mistakes = append(mistakes, entity.MistakeExample{
			Symbol:             p.Symbol,
			Summary:            p.Summary,
			PredictedDirection: p.PredictedDirection,
			StartPrice:         p.StartPrice,
			EndPrice:           p.EndPrice.Decimal,
		})
	}
	return mistakes, nil
}
