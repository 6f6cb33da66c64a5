package strategy

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"golang-market-signal/internal/entity"
	"golang-market-signal/internal/pipeline/config"
	"golang-market-signal/internal/pipeline/dto"
	"golang-market-signal/internal/pipeline/repository"
	"golang-market-signal/internal/pipeline/service"
	"golang-market-signal/pkg/common"
	"golang-market-signal/pkg/logger"
	"golang-market-signal/pkg/ratelimit"
	"golang-market-signal/pkg/telegram"
	"golang-market-signal/pkg/tracing"
	"golang-market-signal/pkg/utils"
)

// SocialIngestionStrategy analyses the latest posts of tracked accounts.
type SocialIngestionStrategy struct {
	thresholds Thresholds
	accounts   []config.SocialAccount
	social     repository.SocialRepository
	prices     repository.PriceRepository
	engine     service.PredictionEngine
	feedback   service.FeedbackStore
	notifier   telegram.Notifier
	pacer      *ratelimit.Pacer
	logger     *logger.Logger
}

// NewSocialIngestionStrategy creates a new instance of SocialIngestionStrategy.
func NewSocialIngestionStrategy(
	thresholds Thresholds,
	accounts []config.SocialAccount,
	social repository.SocialRepository,
	prices repository.PriceRepository,
	engine service.PredictionEngine,
	feedback service.FeedbackStore,
	notifier telegram.Notifier,
	pacer *ratelimit.Pacer,
	log *logger.Logger,
) *SocialIngestionStrategy {
	return &SocialIngestionStrategy{
		thresholds: thresholds,
		accounts:   accounts,
		social:     social,
		prices:     prices,
		engine:     engine,
		feedback:   feedback,
		notifier:   notifier,
		pacer:      pacer,
		logger:     log,
	}
}

// GetType returns the job type this strategy handles.
func (s *SocialIngestionStrategy) GetType() entity.JobType {
	return entity.JobTypeSocialIngestion
}

// Execute runs one pass over the configured accounts.
func (s *SocialIngestionStrategy) Execute(ctx context.Context) (service.RunOutput, error) {
	summary := dto.IngestionSummary{}
	var handles []string
	for _, a := range s.accounts {
		handles = append(handles, a.Handle)
	}
	summary.Symbols = handles

	for _, account := range s.accounts {
		if err := s.pacer.Wait(ctx); err != nil {
			return service.RunOutput{Symbols: handles, Output: marshalOutput(summary)}, err
		}

		var outcome itemOutcome
		err := utils.SafeRun(func() error {
			outcome = s.processAccount(ctx, account)
			return nil
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "Account processing panicked", logger.StringField("handle", account.Handle), logger.ErrorField(err))
			outcome = outcomeFailed
		}
		s.pacer.Done()
		tally(&summary, outcome)
	}

	s.logger.InfoContext(ctx, "Social ingestion finished",
		logger.IntField("processed", summary.Processed),
		logger.IntField("alerts", summary.Alerts),
		logger.IntField("skipped", summary.Skipped),
		logger.IntField("failed", summary.Failed),
	)
	return service.RunOutput{Symbols: handles, Output: marshalOutput(summary)}, nil
}

// ResolveSymbol maps the model's stock guess to a tradable symbol. GENERAL or
// an empty guess falls back to the account default.
func ResolveSymbol(specificStock, defaultSymbol string) string {
	guess := strings.ToUpper(strings.TrimSpace(specificStock))
	if guess == "" || guess == common.GeneralSymbol {
		return strings.ToUpper(strings.TrimSpace(defaultSymbol))
	}
	return guess
}

func (s *SocialIngestionStrategy) processAccount(ctx context.Context, account config.SocialAccount) itemOutcome {
	ctx, span := tracing.StartSpan(ctx, "ingest.social", attribute.String("handle", account.Handle))
	defer span.End()

	posts, err := s.social.FetchPosts(ctx, account.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to fetch posts, no data this cycle", logger.StringField("handle", account.Handle), logger.ErrorField(err))
		return outcomeSkipped
	}

	posts = service.FilterByRelevance(posts, account.DefaultSymbol, s.thresholds.RelevanceTopK)
	if len(posts) == 0 {
		s.logger.InfoContext(ctx, "No posts, skipping analysis", logger.StringField("handle", account.Handle))
		return outcomeSkipped
	}

	result, promptCtx, err := s.engine.Analyze(ctx, dto.AnalysisRequest{
		SourceType: entity.SourceTypeSocial,
		Topic:      account.Handle,
		Items:      posts,
	})
	if err != nil {
		if errors.Is(err, service.ErrNoActionableSignal) {
			return outcomeSkipped
		}
		tracing.RecordError(span, err)
		s.logger.ErrorContext(ctx, "Analysis failed", logger.StringField("handle", account.Handle), logger.ErrorField(err))
		return outcomeFailed
	}

	if !s.thresholds.exceeds(result.ImpactScore) {
		s.logger.InfoContext(ctx, "Impact below threshold, not alerting",
			logger.StringField("handle", account.Handle),
			logger.IntField("impact_score", result.ImpactScore),
		)
		return outcomeAnalyzed
	}

	symbol := ResolveSymbol(result.SpecificStock, account.DefaultSymbol)
	displaySymbol := symbol
	if symbol == "" {
		displaySymbol = common.GeneralSymbol
		s.logger.WarnContext(ctx, "No tradable symbol for post, alert only", logger.StringField("handle", account.Handle))
	} else {
		s.feedback.Record(ctx, service.RecordInput{
			Symbol:     symbol,
			SourceType: entity.SourceTypeSocial,
			Summary:    result.SummaryMessage,
			Direction:  result.PredictedDirection,
			Score:      result.ImpactScore,
			StartPrice: startPrice(ctx, s.prices, symbol, s.logger),
			Context:    promptContextJSON(promptCtx),
		})
	}

	notify(ctx, s.notifier, telegram.FormatSocialAlert(telegram.SocialAlert{
		Handle:    account.Handle,
		Symbol:    displaySymbol,
		Sector:    result.AffectedSector,
		Score:     result.ImpactScore,
		Direction: result.PredictedDirection,
		Summary:   result.SummaryMessage,
		Reason:    result.Reason,
	}), s.logger)
	return outcomeAlerted
}
