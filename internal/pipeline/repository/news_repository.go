package repository

import (
	"context"
	"fmt"
	"strings"

	"golang-market-signal/internal/pipeline/config"
	"golang-market-signal/internal/pipeline/dto"
	"golang-market-signal/pkg/logger"
)

// Supported news providers.
const (
	NewsProviderAlphaVantage = "alphavantage"
	NewsProviderGoogleNews   = "googlenews"
)

// NewsRepository fetches recent news items for a symbol.
type NewsRepository interface {
	FetchNews(ctx context.Context, symbol string) ([]dto.ContentItem, error)
}

// NewNewsRepository returns the news source selected by news.provider.
func NewNewsRepository(cfg *config.Config, log *logger.Logger) (NewsRepository, error) {
	switch strings.ToLower(cfg.News.Provider) {
	case NewsProviderAlphaVantage, "":
		if cfg.AlphaVantage.APIKey == "" {
			return nil, fmt.Errorf("alpha_vantage.api_key is required for news provider %q", NewsProviderAlphaVantage)
		}
		return NewAlphaVantageRepository(cfg, log), nil
	case NewsProviderGoogleNews:
		return NewGoogleNewsRepository(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown news provider: %s", cfg.News.Provider)
	}
}
