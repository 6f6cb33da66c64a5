package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"golang-market-signal/internal/entity"
)

// ErrPredictionNotPending is returned by MarkVerified when the prediction does
// not exist or has already been verified.
var ErrPredictionNotPending = errors.New("prediction not found or not pending")

// PredictionFilter narrows List queries.
type PredictionFilter struct {
	Status entity.PredictionStatus
	Symbol string
	Limit  int
	Offset int
}

// PredictionRepository defines the persistence operations on predictions.
type PredictionRepository interface {
	Create(ctx context.Context, prediction *entity.Prediction) error
	FindByID(ctx context.Context, id uint) (*entity.Prediction, error)
	FindPending(ctx context.Context) ([]entity.Prediction, error)
	List(ctx context.Context, filter PredictionFilter) ([]entity.Prediction, error)
	MarkVerified(ctx context.Context, id uint, endPrice decimal.Decimal, isCorrect bool, verifiedAt time.Time) error
	CountVerified(ctx context.Context) (int64, error)
	CountCorrect(ctx context.Context) (int64, error)
	FindMistakes(ctx context.Context, limit int) ([]entity.Prediction, error)
}

type predictionRepository struct {
	db *gorm.DB
}

// NewPredictionRepository creates a new GORM-based prediction repository.
func NewPredictionRepository(db *gorm.DB) PredictionRepository {
	return &predictionRepository{db: db}
}

func (r *predictionRepository) Create(ctx context.Context, prediction *entity.Prediction) error {
	return r.db.WithContext(ctx).Create(prediction).Error
}

func (r *predictionRepository) FindByID(ctx context.Context, id uint) (*entity.Prediction, error) {
	var prediction entity.Prediction
	if err := r.db.WithContext(ctx).First(&prediction, id).Error; err != nil {
		return nil, err
	}
	return &prediction, nil
}

func (r *predictionRepository) FindPending(ctx context.Context) ([]entity.Prediction, error) {
	var predictions []entity.Prediction
	err := r.db.WithContext(ctx).
		Where("status = ?", entity.PredictionStatusPending).
		Order("id ASC").
		Find(&predictions).Error
	if err != nil {
		return nil, err
	}
	return predictions, nil
}

func (r *predictionRepository) List(ctx context.Context, filter PredictionFilter) ([]entity.Prediction, error) {
	query := r.db.WithContext(ctx).Model(&entity.Prediction{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Symbol != "" {
		query = query.Where("symbol = ?", filter.Symbol)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var predictions []entity.Prediction
	if err := query.Order("id DESC").Find(&predictions).Error; err != nil {
		return nil, err
	}
	return predictions, nil
}

// MarkVerified closes out a pending prediction in a single conditional
// UPDATE, so status and outcome fields change together or not at all.
func (r *predictionRepository) MarkVerified(ctx context.Context, id uint, endPrice decimal.Decimal, isCorrect bool, verifiedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Prediction{}).
		Where("id = ? AND status = ?", id, entity.PredictionStatusPending).
		Updates(map[string]interface{}{
			"status":      entity.PredictionStatusVerified,
			"end_price":   endPrice,
			"is_correct":  isCorrect,
			"verified_at": verifiedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPredictionNotPending
	}
	return nil
}

func (r *predictionRepository) CountVerified(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Prediction{}).
		Where("status = ?", entity.PredictionStatusVerified).
		Count(&count).Error
	return count, err
}

// CountCorrect counts verified predictions marked correct. is_correct is only
// ever written together with VERIFIED, the status filter keeps it that way.
func (r *predictionRepository) CountCorrect(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Prediction{}).
		Where("status = ? AND is_correct = ?", entity.PredictionStatusVerified, true).
		Count(&count).Error
	return count, err
}

func (r *predictionRepository) FindMistakes(ctx context.Context, limit int) ([]entity.Prediction, error) {
	if limit <= 0 {
		return nil, nil
	}
	var predictions []entity.Prediction
	err := r.db.WithContext(ctx).
		Where("status = ? AND is_correct = ?", entity.PredictionStatusVerified, false).
		Order("id DESC").
		Limit(limit).
		Find(&predictions).Error
	if err != nil {
		return nil, err
	}
	return predictions, nil
}
