package service

import (
	"context"
	"fmt"

	"golang-market-signal/internal/pipeline/dto"
	"golang-market-signal/internal/pipeline/repository"
	"golang-market-signal/pkg/common"
	"golang-market-signal/pkg/logger"
)

const (
	smaPeriod = 50
	rsiPeriod = 14
)

// TechnicalSignalProvider summarizes trend and momentum of one symbol.
type TechnicalSignalProvider interface {
	Digest(ctx context.Context, symbol string) string
}

type technicalSignalProvider struct {
	prices      repository.PriceRepository
	historyDays int
	logger      *logger.Logger
}

// NewTechnicalSignalProvider creates a TechnicalSignalProvider reading
// historyDays calendar days of closes.
func NewTechnicalSignalProvider(prices repository.PriceRepository, historyDays int, log *logger.Logger) TechnicalSignalProvider {
	if historyDays <= 0 {
		historyDays = 120
	}
	return &technicalSignalProvider{
		prices:      prices,
		historyDays: historyDays,
		logger:      log,
	}
}

// Digest never fails: missing data gives common.TechnicalNotEnoughData and
// errors come back as an "error: ..." line.
func (p *technicalSignalProvider) Digest(ctx context.Context, symbol string) string {
	bars, err := p.prices.GetDailyCloses(ctx, symbol, p.historyDays)
	if err != nil {
		p.logger.WarnContext(ctx, "Failed to get price history", logger.StringField("symbol", symbol), logger.ErrorField(err))
		return fmt.Sprintf("error: %v", err)
	}
	return TechnicalDigest(bars)
}

// TechnicalDigest formats SMA50 and RSI14 of the given closes.
func TechnicalDigest(bars []dto.PriceBar) string {
	if len(bars) < smaPeriod {
		return common.TechnicalNotEnoughData
	}
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	price := closes[len(closes)-1]
	sma := SMA(closes, smaPeriod)
	rsi := RSI(closes, rsiPeriod)

	trend := "BEARISH"
	if price > sma {
		trend = "BULLISH"
	}
	return fmt.Sprintf("Price: %.2f | SMA50: %.2f (%s) | RSI14: %.2f (%s)", price, sma, trend, rsi, RSILabel(rsi))
}

// SMA is the mean of the last period values.
func SMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}
	var sum float64
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// RSI averages the gains and losses of the last period deltas. With no
// losses it returns 100.
func RSI(values []float64, period int) float64 {
	if period <= 0 || len(values) < period+1 {
		return 50
	}
	var gains, losses float64
	start := len(values) - period
	for i := start; i < len(values); i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// RSILabel classifies an RSI value.
func RSILabel(rsi float64) string {
	switch {
	case rsi > 70:
		return "Overbought"
	case rsi < 30:
		return "Oversold"
	default:
		return "Neutral"
	}
}
