package strategy

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"golang-market-signal/internal/pipeline/dto"
	"golang-market-signal/internal/pipeline/repository"
	"golang-market-signal/pkg/logger"
	"golang-market-signal/pkg/telegram"
)

type itemOutcome int

const (
	outcomeSkipped itemOutcome = iota
	outcomeAnalyzed
	outcomeAlerted
	outcomeFailed
)

// Thresholds holds the gate shared by ingestion strategies.
type Thresholds struct {
	// ImpactThreshold must be strictly exceeded to record and alert.
	ImpactThreshold int
	RelevanceTopK   int
}

// exceeds reports whether score is strictly above the alert threshold.
func (t Thresholds) exceeds(score int) bool {
	return score > t.ImpactThreshold
}

// startPrice returns the current price of symbol, or zero when unavailable.
func startPrice(ctx context.Context, prices repository.PriceRepository, symbol string, log *logger.Logger) decimal.Decimal {
	price, err := prices.GetCurrentPrice(ctx, symbol)
	if err != nil {
		log.WarnContext(ctx, "Start price unavailable, recording 0", logger.StringField("symbol", symbol), logger.ErrorField(err))
		return decimal.Zero
	}
	return price
}

func promptContextJSON(pc *dto.PromptContext) datatypes.JSON {
	if pc == nil {
		return nil
	}
	b, err := json.Marshal(pc)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

func notify(ctx context.Context, notifier telegram.Notifier, text string, log *logger.Logger) {
	if err := notifier.SendMessage(text); err != nil {
		log.WarnContext(ctx, "Failed to send notification", logger.ErrorField(err))
	}
}

func tally(summary *dto.IngestionSummary, outcome itemOutcome) {
	switch outcome {
	case outcomeAlerted:
		summary.Alerts++
		summary.Processed++
	case outcomeAnalyzed:
		summary.Processed++
	case outcomeFailed:
		summary.Failed++
	default:
		summary.Skipped++
	}
}

func marshalOutput(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
