package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"golang-market-signal/internal/entity"
	"golang-market-signal/internal/pipeline/dto"
	"golang-market-signal/internal/pipeline/repository"
	"golang-market-signal/pkg/logger"
	"golang-market-signal/pkg/ratelimit"
	"golang-market-signal/pkg/telegram"
	"golang-market-signal/pkg/tracing"
	"golang-market-signal/pkg/utils"
)

// VerificationEngine closes out pending predictions against current prices.
type VerificationEngine interface {
	Run(ctx context.Context) (*dto.VerificationSummary, error)
}

type verificationEngine struct {
	feedback FeedbackStore
	prices   repository.PriceRepository
	notifier telegram.Notifier
	pacer    *ratelimit.Pacer
	logger   *logger.Logger
}

// NewVerificationEngine creates a VerificationEngine.
func NewVerificationEngine(
	feedback FeedbackStore,
	prices repository.PriceRepository,
	notifier telegram.Notifier,
	pacer *ratelimit.Pacer,
	log *logger.Logger,
) VerificationEngine {
	return &verificationEngine{
		feedback: feedback,
		prices:   prices,
		notifier: notifier,
		pacer:    pacer,
		logger:   log,
	}
}

func (e *verificationEngine) Run(ctx context.Context) (*dto.VerificationSummary, error) {
	pending, err := e.feedback.Pending(ctx)
	if err != nil {
		return nil, err
	}

	summary := &dto.VerificationSummary{Pending: len(pending)}
	e.logger.InfoContext(ctx, "Verification started", logger.IntField("pending", len(pending)))

	for i := range pending {
		if err := e.pacer.Wait(ctx); err != nil {
			return summary, fmt.Errorf("verification interrupted: %w", err)
		}

		p := pending[i]
		var outcome verifyOutcome
		err := utils.SafeRun(func() error {
			outcome = e.verifyOne(ctx, &p)
			return nil
		})
		if err != nil {
			e.logger.ErrorContext(ctx, "Verification of prediction panicked",
				logger.Field("id", p.ID),
				logger.ErrorField(err),
			)
			outcome = outcomeFailed
		}
		e.pacer.Done()

		switch outcome {
		case outcomeVerified:
			summary.Verified++
		case outcomeSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}

	acc, err := e.feedback.Accuracy(ctx)
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to get accuracy", logger.ErrorField(err))
		return summary, nil
	}
	summary.Total = acc.Total
	summary.Correct = acc.Correct
	summary.Accuracy = acc.Percent()

	e.logger.InfoContext(ctx, "Verification finished",
		logger.IntField("verified", summary.Verified),
		logger.IntField("skipped", summary.Skipped),
		logger.IntField("failed", summary.Failed),
		logger.Float64Field("accuracy", summary.Accuracy),
		logger.Field("total", acc.Total),
		logger.Field("correct", acc.Correct),
	)
	if acc.Total > 0 {
		e.notify(ctx, telegram.FormatAccuracySummary(acc))
	}
	return summary, nil
}

type verifyOutcome int

const (
	outcomeFailed verifyOutcome = iota
	outcomeVerified
	outcomeSkipped
)

func (e *verificationEngine) verifyOne(ctx context.Context, p *entity.Prediction) verifyOutcome {
	ctx, span := tracing.StartSpan(ctx, "verification.item",
		attribute.String("symbol", p.Symbol),
		attribute.Int64("prediction_id", int64(p.ID)),
	)
	defer span.End()

	endPrice, err := e.prices.GetCurrentPrice(ctx, p.Symbol)
	if err != nil {
		e.logger.WarnContext(ctx, "Price unavailable, prediction stays pending",
			logger.StringField("symbol", p.Symbol),
			logger.ErrorField(err),
		)
		return outcomeSkipped
	}
	if !endPrice.IsPositive() {
		e.logger.WarnContext(ctx, "Price is zero, prediction stays pending", logger.StringField("symbol", p.Symbol))
		return outcomeSkipped
	}

	actual := entity.ActualDirection(p.StartPrice, endPrice)
	isCorrect := p.PredictedDirection == actual

	if !e.feedback.Verify(ctx, p.ID, endPrice, isCorrect) {
		return outcomeFailed
	}

	e.logger.InfoContext(ctx, "Prediction verified",
		logger.Field("id", p.ID),
		logger.StringField("symbol", p.Symbol),
		logger.StringField("predicted", string(p.PredictedDirection)),
		logger.StringField("actual", string(actual)),
		logger.Field("is_correct", isCorrect),
	)

	e.notify(ctx, telegram.FormatVerificationResult(telegram.VerificationResult{
		Symbol:     p.Symbol,
		StartPrice: p.StartPrice,
		EndPrice:   endPrice,
		Predicted:  p.PredictedDirection,
		Actual:     actual,
		IsCorrect:  isCorrect,
	}))
	return outcomeVerified
}

func (e *verificationEngine) notify(ctx context.Context, text string) {
	if err := e.notifier.SendMessage(text); err != nil {
		e.logger.WarnContext(ctx, "Failed to send notification", logger.ErrorField(err))
	}
}
