package strategy

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"golang-market-signal/internal/entity"
	"golang-market-signal/internal/pipeline/dto"
	"golang-market-signal/internal/pipeline/repository"
	"golang-market-signal/internal/pipeline/service"
	"golang-market-signal/pkg/logger"
	"golang-market-signal/pkg/ratelimit"
	"golang-market-signal/pkg/telegram"
	"golang-market-signal/pkg/tracing"
	"golang-market-signal/pkg/utils"
)

// NewsIngestionStrategy pulls news for every watched symbol, asks the
// prediction engine for a call and records the ones above the threshold.
type NewsIngestionStrategy struct {
	thresholds Thresholds
	watchlist  repository.WatchlistRepository
	news       repository.NewsRepository
	prices     repository.PriceRepository
	engine     service.PredictionEngine
	feedback   service.FeedbackStore
	notifier   telegram.Notifier
	pacer      *ratelimit.Pacer
	logger     *logger.Logger
}

// NewNewsIngestionStrategy creates a new instance of NewsIngestionStrategy.
func NewNewsIngestionStrategy(
	thresholds Thresholds,
	watchlist repository.WatchlistRepository,
	news repository.NewsRepository,
	prices repository.PriceRepository,
	engine service.PredictionEngine,
	feedback service.FeedbackStore,
	notifier telegram.Notifier,
	pacer *ratelimit.Pacer,
	log *logger.Logger,
) *NewsIngestionStrategy {
	return &NewsIngestionStrategy{
		thresholds: thresholds,
		watchlist:  watchlist,
		news:       news,
		prices:     prices,
		engine:     engine,
		feedback:   feedback,
		notifier:   notifier,
		pacer:      pacer,
		logger:     log,
	}
}

// GetType returns the job type this strategy handles.
func (s *NewsIngestionStrategy) GetType() entity.JobType {
	return entity.JobTypeNewsIngestion
}

// Execute runs one ingestion pass over the watch list.
func (s *NewsIngestionStrategy) Execute(ctx context.Context) (service.RunOutput, error) {
	symbols, err := s.watchlist.GetSymbols(ctx)
	if err != nil {
		return service.RunOutput{}, fmt.Errorf("failed to load watch list: %w", err)
	}

	summary := dto.IngestionSummary{Symbols: symbols}
	s.logger.InfoContext(ctx, "News ingestion started", logger.IntField("symbols", len(symbols)))

	for _, symbol := range symbols {
		if err := s.pacer.Wait(ctx); err != nil {
			return service.RunOutput{Symbols: symbols, Output: marshalOutput(summary)}, fmt.Errorf("news ingestion interrupted: %w", err)
		}

		var outcome itemOutcome
		err := utils.SafeRun(func() error {
			outcome = s.processSymbol(ctx, symbol)
			return nil
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "Symbol processing panicked", logger.StringField("symbol", symbol), logger.ErrorField(err))
			outcome = outcomeFailed
		}
		s.pacer.Done()
		tally(&summary, outcome)
	}

	s.logger.InfoContext(ctx, "News ingestion finished",
		logger.IntField("processed", summary.Processed),
		logger.IntField("alerts", summary.Alerts),
		logger.IntField("skipped", summary.Skipped),
		logger.IntField("failed", summary.Failed),
	)
	return service.RunOutput{Symbols: symbols, Output: marshalOutput(summary)}, nil
}

func (s *NewsIngestionStrategy) processSymbol(ctx context.Context, symbol string) itemOutcome {
	ctx, span := tracing.StartSpan(ctx, "ingest.news", attribute.String("symbol", symbol))
	defer span.End()

	items, err := s.news.FetchNews(ctx, symbol)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to fetch news, no data this cycle", logger.StringField("symbol", symbol), logger.ErrorField(err))
		return outcomeSkipped
	}

	items = service.FilterByRelevance(items, symbol, s.thresholds.RelevanceTopK)
	if len(items) == 0 {
		s.logger.InfoContext(ctx, "No news, skipping analysis", logger.StringField("symbol", symbol))
		return outcomeSkipped
	}

	result, promptCtx, err := s.engine.Analyze(ctx, dto.AnalysisRequest{
		SourceType: entity.SourceTypeNews,
		Topic:      symbol,
		Symbol:     symbol,
		Items:      items,
	})
	if err != nil {
		if errors.Is(err, service.ErrNoActionableSignal) {
			return outcomeSkipped
		}
		tracing.RecordError(span, err)
		s.logger.ErrorContext(ctx, "Analysis failed", logger.StringField("symbol", symbol), logger.ErrorField(err))
		return outcomeFailed
	}

	if !s.thresholds.exceeds(result.ImpactScore) {
		s.logger.InfoContext(ctx, "Impact below threshold, not alerting",
			logger.StringField("symbol", symbol),
			logger.IntField("impact_score", result.ImpactScore),
			logger.IntField("threshold", s.thresholds.ImpactThreshold),
		)
		return outcomeAnalyzed
	}

	s.feedback.Record(ctx, service.RecordInput{
		Symbol:     symbol,
		SourceType: entity.SourceTypeNews,
		Summary:    result.SummaryMessage,
		Direction:  result.PredictedDirection,
		Score:      result.ImpactScore,
		StartPrice: startPrice(ctx, s.prices, symbol, s.logger),
		Context:    promptContextJSON(promptCtx),
	})

	notify(ctx, s.notifier, telegram.FormatNewsAlert(telegram.NewsAlert{
		Symbol:    symbol,
		Score:     result.ImpactScore,
		Direction: result.PredictedDirection,
		Summary:   result.SummaryMessage,
		Reason:    result.Reason,
	}), s.logger)
	return outcomeAlerted
}
