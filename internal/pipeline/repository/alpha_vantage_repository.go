package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"golang-market-signal/internal/pipeline/config"
	"golang-market-signal/internal/pipeline/dto"
	"golang-market-signal/pkg/logger"
)

const alphaVantageTimeLayout = "20060102T150405"

type alphaVantageRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	client         *resty.Client
	requestLimiter *rate.Limiter
}

// NewAlphaVantageRepository creates a NewsRepository backed by the Alpha
// Vantage NEWS_SENTIMENT endpoint.
func NewAlphaVantageRepository(cfg *config.Config, log *logger.Logger) NewsRepository {
	limit := rate.Inf
	if cfg.AlphaVantage.MaxRequestPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.AlphaVantage.MaxRequestPerMinute))
	}
	return &alphaVantageRepository{
		cfg: cfg,
		log: log,
		client: resty.New().
			SetBaseURL(cfg.AlphaVantage.BaseURL).
			SetTimeout(15 * time.Second),
		requestLimiter: rate.NewLimiter(limit, 1),
	}
}

func (r *alphaVantageRepository) FetchNews(ctx context.Context, symbol string) ([]dto.ContentItem, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	var body dto.AlphaVantageNewsResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"function": "NEWS_SENTIMENT",
			"tickers":  symbol,
			"sort":     "LATEST",
			"limit":    strconv.Itoa(r.cfg.News.Limit),
			"apikey":   r.cfg.AlphaVantage.APIKey,
		}).
		SetResult(&body).
		Get("/query")
	if err != nil {
		return nil, fmt.Errorf("failed to request alpha vantage news: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("alpha vantage returned status %d", resp.StatusCode())
	}

	// Quota and key problems come back as 200 with a message and no feed.
	if msg := firstNonEmpty(body.ErrorMsg, body.Note, body.Information); msg != "" && len(body.Feed) == 0 {
		return nil, fmt.Errorf("alpha vantage: %s", msg)
	}

	items := make([]dto.ContentItem, 0, len(body.Feed))
	for _, a := range body.Feed {
		item := dto.ContentItem{
			Title:     a.Title,
			Body:      a.Summary,
			Source:    a.Source,
			URL:       a.URL,
			Sentiment: a.OverallSentimentLabel,
		}
		if t, err := time.Parse(alphaVantageTimeLayout, a.TimePublished); err == nil {
			item.PublishedAt = &t
		}
		for _, ts := range a.TickerSentiment {
			score, err := strconv.ParseFloat(ts.RelevanceScore, 64)
			if err != nil {
				continue
			}
			if item.Relevance == nil {
				item.Relevance = make(map[string]float64, len(a.TickerSentiment))
			}
			item.Relevance[ts.Ticker] = score
		}
		items = append(items, item)
	}

	r.log.DebugContext(ctx, "Fetched alpha vantage news",
		logger.StringField("symbol", symbol),
		logger.IntField("count", len(items)),
	)
	return items, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
