package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-market-signal/internal/entity"
	"golang-market-signal/internal/pipeline/dto"
	"golang-market-signal/internal/pipeline/repository"
	"golang-market-signal/pkg/logger"
)

const validNewsJSON = `{"impact_score": 7, "predicted_direction": "UP", "summary_message": "deliveries beat", "reason": "strong demand"}`

type stubFeedback struct {
	FeedbackStore
	accuracy    entity.AccuracySnapshot
	mistakes    []entity.MistakeExample
	accuracyErr error
	mistakeErr  error
	gotLimit    int
}

func (s *stubFeedback) Accuracy(context.Context) (entity.AccuracySnapshot, error) {
	return s.accuracy, s.accuracyErr
}

func (s *stubFeedback) Mistakes(_ context.Context, limit int) ([]entity.MistakeExample, error) {
	s.gotLimit = limit
	return s.mistakes, s.mistakeErr
}

type stubMarket string

func (s stubMarket) Digest(context.Context) string { return string(s) }

type stubTechnical struct {
	calls int
}

func (s *stubTechnical) Digest(context.Context, string) string {
	s.calls++
	return "Price: 1.00 | SMA50: 1.00 (BEARISH) | RSI14: 50.00 (Neutral)"
}

func newTestEngine(feedback FeedbackStore, technical TechnicalSignalProvider, backends ...repository.ModelBackend) PredictionEngine {
	return NewPredictionEngine(
		PredictionEngineConfig{MistakeLimit: 3},
		backends,
		feedback,
		stubMarket("S&P 500: UP (+0.10%)"),
		technical,
		logger.NewNop(),
	)
}

func newsRequest() dto.AnalysisRequest {
	return dto.AnalysisRequest{
		SourceType: entity.SourceTypeNews,
		Topic:      "TSLA",
		Symbol:     "TSLA",
		Items:      []dto.ContentItem{{Title: "Tesla deliveries beat"}},
	}
}

func TestPredictionEngine_FailoverOrder(t *testing.T) {
	a := &fakeBackend{name: "a", err: errors.New("quota exceeded")}
	b := &fakeBackend{name: "b", response: validNewsJSON}
	c := &fakeBackend{name: "c", response: validNewsJSON}

	engine := newTestEngine(&stubFeedback{}, &stubTechnical{}, a, b, c)
	result, promptCtx, err := engine.Analyze(context.Background(), newsRequest())

	require.NoError(t, err)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, 0, c.calls)
	assert.Equal(t, "b", result.Backend)
	assert.Equal(t, 7, result.ImpactScore)
	assert.Equal(t, entity.DirectionUp, result.PredictedDirection)
	assert.Equal(t, "b", promptCtx.Backend)
	assert.Equal(t, a.prompts[0], b.prompts[0])
}

func TestPredictionEngine_MalformedOutputFailsOver(t *testing.T) {
	a := &fakeBackend{name: "a", response: "I think the stock will go up"}
	b := &fakeBackend{name: "b", response: `{"impact_score": 11, "predicted_direction": "UP", "summary_message": "", "reason": ""}`}
	c := &fakeBackend{name: "c", response: "```json\n" + validNewsJSON + "\n```"}

	result, _, err := newTestEngine(&stubFeedback{}, &stubTechnical{}, a, b, c).Analyze(context.Background(), newsRequest())

	require.NoError(t, err)
	assert.Equal(t, "c", result.Backend)
}

func TestPredictionEngine_AllFail(t *testing.T) {
	a := &fakeBackend{name: "a", err: errors.New("timeout")}
	b := &fakeBackend{name: "b", response: "[]"}

	result, _, err := newTestEngine(&stubFeedback{}, &stubTechnical{}, a, b).Analyze(context.Background(), newsRequest())

	assert.ErrorIs(t, err, ErrAllBackendsFailed)
	assert.Nil(t, result)
	assert.Equal(t, 1, b.calls)
}

func TestPredictionEngine_HungBackendTimesOut(t *testing.T) {
	a := &hangingBackend{}
	b := &fakeBackend{name: "b", response: validNewsJSON}

	engine := NewPredictionEngine(
		PredictionEngineConfig{MistakeLimit: 3, Timeout: 50 * time.Millisecond},
		[]repository.ModelBackend{a, b},
		&stubFeedback{},
		stubMarket(""),
		&stubTechnical{},
		logger.NewNop(),
	)

	start := time.Now()
	result, _, err := engine.Analyze(context.Background(), newsRequest())

	require.NoError(t, err)
	assert.Equal(t, "b", result.Backend)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestPredictionEngine_CancelledRunStopsFailover(t *testing.T) {
	a := &hangingBackend{}
	b := &fakeBackend{name: "b", response: validNewsJSON}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, _, err := newTestEngine(&stubFeedback{}, &stubTechnical{}, a, b).Analyze(ctx, newsRequest())

	assert.ErrorIs(t, err, ErrAllBackendsFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, b.calls)
}

func TestPredictionEngine_NoItems(t *testing.T) {
	a := &fakeBackend{name: "a", response: validNewsJSON}
	req := newsRequest()
	req.Items = nil

	_, _, err := newTestEngine(&stubFeedback{}, &stubTechnical{}, a).Analyze(context.Background(), req)

	assert.ErrorIs(t, err, ErrNoActionableSignal)
	assert.Zero(t, a.calls)
}

func TestPredictionEngine_PromptCarriesFeedback(t *testing.T) {
	feedback := &stubFeedback{
		accuracy: entity.AccuracySnapshot{Total: 2, Correct: 1},
		mistakes: []entity.MistakeExample{{
			Symbol:             "TSLA",
			PredictedDirection: entity.DirectionUp,
			StartPrice:         decimal.NewFromInt(100),
			EndPrice:           decimal.NewFromInt(90),
		}},
	}
	technical := &stubTechnical{}
	a := &fakeBackend{name: "a", response: validNewsJSON}

	_, promptCtx, err := newTestEngine(feedback, technical, a).Analyze(context.Background(), newsRequest())

	require.NoError(t, err)
	assert.Equal(t, 3, feedback.gotLimit)
	assert.Equal(t, 1, technical.calls)
	assert.Contains(t, a.prompts[0], "Your Current Accuracy: 50.0%")
	assert.Contains(t, a.prompts[0], "S&P 500: UP (+0.10%)")
	assert.Contains(t, a.prompts[0], "RSI14: 50.00")
	assert.Equal(t, 1, promptCtx.Mistakes)
	assert.InDelta(t, 50.0, promptCtx.Accuracy, 1e-9)
}

func TestPredictionEngine_FeedbackErrorsAreNotFatal(t *testing.T) {
	feedback := &stubFeedback{accuracyErr: errors.New("db down"), mistakeErr: errors.New("db down")}
	a := &fakeBackend{name: "a", response: validNewsJSON}

	result, _, err := newTestEngine(feedback, &stubTechnical{}, a).Analyze(context.Background(), newsRequest())

	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.NotContains(t, a.prompts[0], "MISTAKES")
}

func TestPredictionEngine_SocialSkipsTechnical(t *testing.T) {
	technical := &stubTechnical{}
	a := &fakeBackend{name: "a", response: `{"impact_score": 9, "predicted_direction": "up", "affected_sector": "EV", "specific_stock": "tsla", "summary_message": "s", "reason": "r"}`}

	result, _, err := newTestEngine(&stubFeedback{}, technical, a).Analyze(context.Background(), dto.AnalysisRequest{
		SourceType: entity.SourceTypeSocial,
		Topic:      "@elonmusk",
		Items:      []dto.ContentItem{{Body: "post"}},
	})

	require.NoError(t, err)
	assert.Zero(t, technical.calls)
	assert.Equal(t, "TSLA", result.SpecificStock)
	assert.Equal(t, "EV", result.AffectedSector)
	assert.Equal(t, entity.DirectionUp, result.PredictedDirection)
}

func TestParseAnalysis_ListShaped(t *testing.T) {
	object, err := ParseAnalysis(validNewsJSON, entity.SourceTypeNews)
	require.NoError(t, err)

	list, err := ParseAnalysis("["+validNewsJSON+"]", entity.SourceTypeNews)
	require.NoError(t, err)

	assert.Equal(t, object, list)

	_, err = ParseAnalysis("[]", entity.SourceTypeNews)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestParseAnalysis_Validation(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		sourceType entity.SourceType
	}{
		{name: "empty", raw: "  ", sourceType: entity.SourceTypeNews},
		{name: "not json", raw: "hello", sourceType: entity.SourceTypeNews},
		{name: "missing score", raw: `{"predicted_direction":"UP","summary_message":"s","reason":"r"}`, sourceType: entity.SourceTypeNews},
		{name: "score zero", raw: `{"impact_score":0,"predicted_direction":"UP","summary_message":"s","reason":"r"}`, sourceType: entity.SourceTypeNews},
		{name: "score as string", raw: `{"impact_score":"7","predicted_direction":"UP","summary_message":"s","reason":"r"}`, sourceType: entity.SourceTypeNews},
		{name: "bad direction", raw: `{"impact_score":7,"predicted_direction":"SIDEWAYS","summary_message":"s","reason":"r"}`, sourceType: entity.SourceTypeNews},
		{name: "missing reason", raw: `{"impact_score":7,"predicted_direction":"UP","summary_message":"s"}`, sourceType: entity.SourceTypeNews},
		{name: "social missing stock", raw: `{"impact_score":7,"predicted_direction":"UP","affected_sector":"EV","summary_message":"s","reason":"r"}`, sourceType: entity.SourceTypeSocial},
		{name: "social missing sector", raw: `{"impact_score":7,"predicted_direction":"UP","specific_stock":"TSLA","summary_message":"s","reason":"r"}`, sourceType: entity.SourceTypeSocial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAnalysis(tt.raw, tt.sourceType)
			assert.Error(t, err)
		})
	}
}
