package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"golang-market-signal/internal/entity"
	"golang-market-signal/internal/pipeline/dto"
	"golang-market-signal/internal/pipeline/repository"
	"golang-market-signal/pkg/logger"
	"golang-market-signal/pkg/tracing"
)

var (
	// ErrAllBackendsFailed is returned when no backend produced a usable answer.
	ErrAllBackendsFailed = errors.New("all model backends failed")
	// ErrNoActionableSignal is returned when there is nothing to analyse.
	ErrNoActionableSignal = errors.New("no actionable signal")
	// ErrEmptyResponse is returned for an empty answer or an empty JSON array.
	ErrEmptyResponse = errors.New("empty model response")
)

// PredictionEngine turns content for one topic into a normalized analysis.
type PredictionEngine interface {
	Analyze(ctx context.Context, req dto.AnalysisRequest) (*dto.AnalysisResult, *dto.PromptContext, error)
}

// PredictionEngineConfig tunes the engine.
type PredictionEngineConfig struct {
	MistakeLimit int
	Language     string
	// Timeout bounds a single backend attempt. Zero means no limit.
	Timeout time.Duration
}

type predictionEngine struct {
	cfg       PredictionEngineConfig
	backends  []repository.ModelBackend
	feedback  FeedbackStore
	market    MarketContextProvider
	technical TechnicalSignalProvider
	logger    *logger.Logger
}

// NewPredictionEngine creates a PredictionEngine that tries backends in the
// given order.
func NewPredictionEngine(
	cfg PredictionEngineConfig,
	backends []repository.ModelBackend,
	feedback FeedbackStore,
	market MarketContextProvider,
	technical TechnicalSignalProvider,
	log *logger.Logger,
) PredictionEngine {
	return &predictionEngine{
		cfg:       cfg,
		backends:  backends,
		feedback:  feedback,
		market:    market,
		technical: technical,
		logger:    log,
	}
}

func (e *predictionEngine) Analyze(ctx context.Context, req dto.AnalysisRequest) (*dto.AnalysisResult, *dto.PromptContext, error) {
	if len(req.Items) == 0 {
		return nil, nil, ErrNoActionableSignal
	}

	accuracy, err := e.feedback.Accuracy(ctx)
	if err != nil {
		e.logger.WarnContext(ctx, "Failed to get accuracy, continuing without it", logger.ErrorField(err))
	}
	mistakes, err := e.feedback.Mistakes(ctx, e.cfg.MistakeLimit)
	if err != nil {
		e.logger.WarnContext(ctx, "Failed to get mistakes, continuing without them", logger.ErrorField(err))
		mistakes = nil
	}

	in := PromptInput{
		SourceType:    req.SourceType,
		Topic:         req.Topic,
		Language:      e.cfg.Language,
		MarketContext: e.market.Digest(ctx),
		Accuracy:      accuracy,
		Mistakes:      mistakes,
		Items:         req.Items,
	}
	if req.SourceType == entity.SourceTypeNews && req.Symbol != "" {
		in.Technical = e.technical.Digest(ctx, req.Symbol)
	}
	prompt := BuildPrompt(in)

	result, err := e.complete(ctx, prompt, req.SourceType)
	if err != nil {
		return nil, nil, err
	}

	promptCtx := &dto.PromptContext{
		MarketContext: in.MarketContext,
		Technical:     in.Technical,
		Accuracy:      accuracy.Percent(),
		Mistakes:      len(mistakes),
		ItemCount:     len(req.Items),
		Backend:       result.Backend,
	}
	return result, promptCtx, nil
}

// complete walks the failover sequence. The first backend whose answer parses
// wins, later backends are not called.
func (e *predictionEngine) complete(ctx context.Context, prompt string, sourceType entity.SourceType) (*dto.AnalysisResult, error) {
	for _, backend := range e.backends {
		result, err := e.attempt(ctx, backend, prompt, sourceType)
		if err == nil {
			e.logger.InfoContext(ctx, "Model analysis completed",
				logger.StringField("backend", backend.Name()),
				logger.IntField("impact_score", result.ImpactScore),
				logger.StringField("direction", string(result.PredictedDirection)),
			)
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrAllBackendsFailed, ctx.Err())
		}
		e.logger.WarnContext(ctx, "Model backend failed, trying next",
			logger.StringField("backend", backend.Name()),
			logger.ErrorField(err),
		)
	}
	return nil, ErrAllBackendsFailed
}

// attempt runs one backend under the per-attempt timeout.
func (e *predictionEngine) attempt(ctx context.Context, backend repository.ModelBackend, prompt string, sourceType entity.SourceType) (*dto.AnalysisResult, error) {
	spanCtx, span := tracing.StartSpan(ctx, "model.complete", attribute.String("backend", backend.Name()))
	defer span.End()

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		spanCtx, cancel = context.WithTimeout(spanCtx, e.cfg.Timeout)
		defer cancel()
	}

	raw, err := backend.Complete(spanCtx, prompt)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	result, err := ParseAnalysis(raw, sourceType)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	result.Backend = backend.Name()
	return result, nil
}

// ParseAnalysis decodes a model answer. A JSON array is reduced to its first
// element. Missing or out of range required fields are errors.
func ParseAnalysis(raw string, sourceType entity.SourceType) (*dto.AnalysisResult, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return nil, ErrEmptyResponse
	}

	body := []byte(cleaned)
	if bytes.HasPrefix(body, []byte("[")) {
		var list []json.RawMessage
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response array: %w", err)
		}
		if len(list) == 0 {
			return nil, ErrEmptyResponse
		}
		body = list[0]
	}

	var ra dto.RawAnalysis
	if err := json.Unmarshal(body, &ra); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis JSON: %w", err)
	}

	if ra.ImpactScore == nil {
		return nil, errors.New("missing impact_score")
	}
	if *ra.ImpactScore < 1 || *ra.ImpactScore > 10 {
		return nil, fmt.Errorf("impact_score %d out of range", *ra.ImpactScore)
	}
	if ra.PredictedDirection == nil {
		return nil, errors.New("missing predicted_direction")
	}
	direction, ok := entity.ParseDirection(*ra.PredictedDirection)
	if !ok {
		return nil, fmt.Errorf("invalid predicted_direction %q", *ra.PredictedDirection)
	}
	if ra.SummaryMessage == nil {
		return nil, errors.New("missing summary_message")
	}
	if ra.Reason == nil {
		return nil, errors.New("missing reason")
	}

	result := &dto.AnalysisResult{
		ImpactScore:        *ra.ImpactScore,
		PredictedDirection: direction,
		SummaryMessage:     *ra.SummaryMessage,
		Reason:             *ra.Reason,
	}

	if sourceType == entity.SourceTypeSocial {
		if ra.AffectedSector == nil {
			return nil, errors.New("missing affected_sector")
		}
		if ra.SpecificStock == nil {
			return nil, errors.New("missing specific_stock")
		}
		result.AffectedSector = *ra.AffectedSector
		result.SpecificStock = strings.ToUpper(strings.TrimSpace(*ra.SpecificStock))
	}
	return result, nil
}
