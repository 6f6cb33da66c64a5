package repository

import (
	"context"

	"gorm.io/gorm"

	"golang-market-signal/internal/entity"
)

// RunHistoryRepository defines the interface for batch run history data operations.
type RunHistoryRepository interface {
	Create(ctx context.Context, history *entity.RunHistory) error
	Update(ctx context.Context, history *entity.RunHistory) error
	FindRecent(ctx context.Context, jobType entity.JobType, limit int) ([]entity.RunHistory, error)
}

// NewRunHistoryRepository creates a new GORM-based run history repository.
func NewRunHistoryRepository(db *gorm.DB) RunHistoryRepository {
	return &runHistoryRepository{db: db}
}

type runHistoryRepository struct {
	db *gorm.DB
}

// Create inserts a new run history record.
func (r *runHistoryRepository) Create(ctx context.Context, history *entity.RunHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

// Update updates an existing run history record.
func (r *runHistoryRepository) Update(ctx context.Context, history *entity.RunHistory) error {
	return r.db.WithContext(ctx).Save(history).Error
}

// FindRecent returns the latest runs, optionally of a single job type.
func (r *runHistoryRepository) FindRecent(ctx context.Context, jobType entity.JobType, limit int) ([]entity.RunHistory, error) {
	query := r.db.WithContext(ctx).Order("id DESC")
	if jobType != "" {
		query = query.Where("job_type = ?", jobType)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var histories []entity.RunHistory
	if err := query.Find(&histories).Error; err != nil {
		return nil, err
	}
	return histories, nil
}
