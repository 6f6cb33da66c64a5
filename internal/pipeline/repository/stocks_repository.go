package repository

import (
	"context"

	"gorm.io/gorm"

	"golang-market-signal/internal/entity"
)

type StocksRepository interface {
	GetActiveStocks(ctx context.Context) ([]entity.Stock, error)
}

type stocksRepository struct {
	db *gorm.DB
}

func NewStocksRepository(db *gorm.DB) StocksRepository {
	return &stocksRepository{db: db}
}

func (s *stocksRepository) GetActiveStocks(ctx context.Context) ([]entity.Stock, error) {
	var stocks []entity.Stock
	if err := s.db.WithContext(ctx).Where("active = ?", true).Order("code ASC").Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}
