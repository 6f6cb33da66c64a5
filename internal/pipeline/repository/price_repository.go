package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"

	"golang-market-signal/internal/pipeline/config"
	"golang-market-signal/internal/pipeline/dto"
	"golang-market-signal/pkg/logger"
)

// PriceRepository provides current and historical prices.
type PriceRepository interface {
	GetCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	GetDailyCloses(ctx context.Context, symbol string, days int) ([]dto.PriceBar, error)
}

type yahooFinanceRepository struct {
	log   *logger.Logger
	cache *cache.Cache
}

// NewYahooFinanceRepository creates a PriceRepository backed by Yahoo Finance.
// Results are cached for cacheTTL so one run does not refetch a symbol.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) PriceRepository {
	ttl := cfg.YahooFinance.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &yahooFinanceRepository{
		log:   log,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (r *yahooFinanceRepository) GetCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	key := "quote:" + symbol
	if v, ok := r.cache.Get(key); ok {
		return v.(decimal.Decimal), nil
	}

	q, err := quote.Get(symbol)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get quote for %s: %w", symbol, err)
	}
	if q == nil {
		return decimal.Zero, fmt.Errorf("no quote for %s", symbol)
	}

	price := decimal.NewFromFloat(q.RegularMarketPrice)
	if price.IsPositive() {
		r.cache.SetDefault(key, price)
	}
	r.log.DebugContext(ctx, "Fetched quote",
		logger.StringField("symbol", symbol),
		logger.StringField("price", price.String()),
	)
	return price, nil
}

func (r *yahooFinanceRepository) GetDailyCloses(ctx context.Context, symbol string, days int) ([]dto.PriceBar, error) {
	key := fmt.Sprintf("chart:%s:%d", symbol, days)
	if v, ok := r.cache.Get(key); ok {
		return v.([]dto.PriceBar), nil
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)
	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	var bars []dto.PriceBar
	for iter.Next() {
		bar := iter.Bar()
		if bar.Close.IsZero() {
			continue
		}
		bars = append(bars, dto.PriceBar{
			Date:  time.Unix(int64(bar.Timestamp), 0),
			Close: bar.Close.InexactFloat64(),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get historical data for %s: %w", symbol, err)
	}

	r.cache.SetDefault(key, bars)
	r.log.DebugContext(ctx, "Fetched daily closes",
		logger.StringField("symbol", symbol),
		logger.IntField("count", len(bars)),
	)
	return bars, nil
}
