package service

import (
	"context"
	"fmt"
	"strings"

	"golang-market-signal/internal/pipeline/config"
	"golang-market-signal/internal/pipeline/repository"
	"golang-market-signal/pkg/common"
	"golang-market-signal/pkg/logger"
)

// marketContextWindowDays covers weekends and holidays so two closes exist.
const marketContextWindowDays = 7

// MarketContextProvider summarizes the broad market trend.
type MarketContextProvider interface {
	Digest(ctx context.Context) string
}

type marketContextProvider struct {
	prices      repository.PriceRepository
	instruments []config.Instrument
	logger      *logger.Logger
}

// NewMarketContextProvider creates a MarketContextProvider over the given
// reference instruments.
func NewMarketContextProvider(prices repository.PriceRepository, instruments []config.Instrument, log *logger.Logger) MarketContextProvider {
	return &marketContextProvider{
		prices:      prices,
		instruments: instruments,
		logger:      log,
	}
}

// Digest returns one line per instrument, or common.MarketContextUnavailable
// when no instrument could be read.
func (p *marketContextProvider) Digest(ctx context.Context) string {
	var lines []string
	for _, inst := range p.instruments {
		line, err := p.line(ctx, inst)
		if err != nil {
			p.logger.WarnContext(ctx, "Failed to get market context",
				logger.StringField("symbol", inst.Symbol),
				logger.ErrorField(err),
			)
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return common.MarketContextUnavailable
	}
	return strings.Join(lines, "\n")
}

func (p *marketContextProvider) line(ctx context.Context, inst config.Instrument) (string, error) {
	bars, err := p.prices.GetDailyCloses(ctx, inst.Symbol, marketContextWindowDays)
	if err != nil {
		return "", err
	}
	if len(bars) < 2 {
		return "", fmt.Errorf("need 2 closes, got %d", len(bars))
	}
	prev := bars[len(bars)-2].Close
	last := bars[len(bars)-1].Close
	if prev == 0 {
		return "", fmt.Errorf("previous close is zero")
	}

	change := (last - prev) / prev * 100
	trend := "DOWN"
	if change > 0 {
		trend = "UP"
	}
	return fmt.Sprintf("%s: %s (%+.2f%%)", inst.Name, trend, change), nil
}
