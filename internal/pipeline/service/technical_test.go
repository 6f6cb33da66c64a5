package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"golang-market-signal/pkg/common"
	"golang-market-signal/pkg/logger"
)

func rising(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestSMA(t *testing.T) {
	assert.InDelta(t, 4.0, SMA([]float64{1, 2, 3, 4, 5}, 3), 1e-9)
	assert.Zero(t, SMA([]float64{1, 2}, 3))
}

func TestRSI(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "only gains", values: rising(20, 10, 1), want: 100},
		{name: "only losses", values: rising(20, 100, -1), want: 0},
		{name: "flat", values: rising(20, 50, 0), want: 50},
		{name: "balanced", values: []float64{10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10}, want: 50},
		{name: "not enough values", values: rising(5, 1, 1), want: 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RSI(tt.values, 14), 1e-9)
		})
	}
}

func TestRSILabel(t *testing.T) {
	assert.Equal(t, "Overbought", RSILabel(70.01))
	assert.Equal(t, "Neutral", RSILabel(70))
	assert.Equal(t, "Neutral", RSILabel(30))
	assert.Equal(t, "Oversold", RSILabel(29.99))
}

func TestTechnicalDigest(t *testing.T) {
	assert.Equal(t, common.TechnicalNotEnoughData, TechnicalDigest(closes(rising(49, 1, 1)...)))

	// 60 rising closes: last=60, SMA50 = mean(11..60) = 35.5
	digest := TechnicalDigest(closes(rising(60, 1, 1)...))
	assert.Equal(t, "Price: 60.00 | SMA50: 35.50 (BULLISH) | RSI14: 100.00 (Overbought)", digest)

	digest = TechnicalDigest(closes(rising(60, 100, -1)...))
	assert.Contains(t, digest, "(BEARISH)")
	assert.Contains(t, digest, "(Oversold)")
}

func TestTechnicalSignalProvider_Digest(t *testing.T) {
	prices := new(mockPriceRepository)
	prices.On("GetDailyCloses", mock.Anything, "TSLA", 120).Return(closes(rising(60, 1, 1)...), nil)
	prices.On("GetDailyCloses", mock.Anything, "BAD", 120).Return(nil, errors.New("symbol not found"))

	p := NewTechnicalSignalProvider(prices, 0, logger.NewNop())

	assert.Contains(t, p.Digest(context.Background(), "TSLA"), "SMA50: 35.50")
	assert.Equal(t, "error: symbol not found", p.Digest(context.Background(), "BAD"))
}
