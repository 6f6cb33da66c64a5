package strategy

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-market-signal/internal/entity"
	"golang-market-signal/internal/pipeline/config"
	"golang-market-signal/internal/pipeline/dto"
	"golang-market-signal/internal/pipeline/service"
	"golang-market-signal/pkg/logger"
	"golang-market-signal/pkg/ratelimit"
)

type stubWatchlist struct {
	symbols []string
	err     error
}

func (s stubWatchlist) GetSymbols(context.Context) ([]string, error) { return s.symbols, s.err }

type stubNews struct {
	items map[string][]dto.ContentItem
	errs  map[string]error
}

func (s stubNews) FetchNews(_ context.Context, symbol string) ([]dto.ContentItem, error) {
	return s.items[symbol], s.errs[symbol]
}

type stubSocial struct {
	posts map[string][]dto.ContentItem
}

func (s stubSocial) FetchPosts(_ context.Context, id string) ([]dto.ContentItem, error) {
	return s.posts[id], nil
}

type stubPrices struct {
	price decimal.Decimal
	err   error
}

func (s stubPrices) GetCurrentPrice(context.Context, string) (decimal.Decimal, error) {
	return s.price, s.err
}

func (s stubPrices) GetDailyCloses(context.Context, string, int) ([]dto.PriceBar, error) {
	return nil, nil
}

type stubEngine struct {
	results map[string]*dto.AnalysisResult
	panicOn string
	calls   []string
}

func (s *stubEngine) Analyze(_ context.Context, req dto.AnalysisRequest) (*dto.AnalysisResult, *dto.PromptContext, error) {
	s.calls = append(s.calls, req.Topic)
	if req.Topic == s.panicOn {
		panic("unexpected response shape")
	}
	r, ok := s.results[req.Topic]
	if !ok {
		return nil, nil, service.ErrAllBackendsFailed
	}
	return r, &dto.PromptContext{Backend: "fake"}, nil
}

type recordingFeedback struct {
	service.FeedbackStore
	records []service.RecordInput
}

func (r *recordingFeedback) Record(_ context.Context, in service.RecordInput) (*entity.Prediction, bool) {
	r.records = append(r.records, in)
	return &entity.Prediction{ID: uint(len(r.records))}, true
}

type recordingNotifier struct {
	messages []string
	err      error
}

func (r *recordingNotifier) SendMessage(text string) error {
	r.messages = append(r.messages, text)
	return r.err
}

func news(title string) []dto.ContentItem {
	return []dto.ContentItem{{Title: title}}
}

func newNewsStrategy(threshold int, watch []string, src stubNews, engine *stubEngine, fb *recordingFeedback, n *recordingNotifier, prices stubPrices) *NewsIngestionStrategy {
	return NewNewsIngestionStrategy(
		Thresholds{ImpactThreshold: threshold, RelevanceTopK: 10},
		stubWatchlist{symbols: watch},
		src,
		prices,
		engine,
		fb,
		n,
		ratelimit.NewPacer(0),
		logger.NewNop(),
	)
}

func TestNewsIngestion_ThresholdBoundary(t *testing.T) {
	engine := &stubEngine{results: map[string]*dto.AnalysisResult{
		"AAPL": {ImpactScore: 5, PredictedDirection: entity.DirectionUp, SummaryMessage: "at threshold"},
		"TSLA": {ImpactScore: 6, PredictedDirection: entity.DirectionUp, SummaryMessage: "above threshold", Reason: "r"},
	}}
	src := stubNews{items: map[string][]dto.ContentItem{"AAPL": news("a"), "TSLA": news("t")}}
	fb := &recordingFeedback{}
	n := &recordingNotifier{}

	s := newNewsStrategy(5, []string{"AAPL", "TSLA"}, src, engine, fb, n, stubPrices{price: decimal.NewFromInt(100)})
	out, err := s.Execute(context.Background())

	require.NoError(t, err)
	require.Len(t, fb.records, 1)
	assert.Equal(t, "TSLA", fb.records[0].Symbol)
	assert.Equal(t, entity.SourceTypeNews, fb.records[0].SourceType)
	assert.True(t, fb.records[0].StartPrice.Equal(decimal.NewFromInt(100)))
	assert.NotEmpty(t, fb.records[0].Context)
	require.Len(t, n.messages, 1)
	assert.Contains(t, n.messages[0], "TSLA")
	assert.Contains(t, out.Output, `"alerts":1`)
	assert.Equal(t, []string{"AAPL", "TSLA"}, out.Symbols)
}

func TestNewsIngestion_EmptyItemsSkipEngine(t *testing.T) {
	engine := &stubEngine{}
	src := stubNews{items: map[string][]dto.ContentItem{}, errs: map[string]error{"NVDA": errors.New("quota")}}

	s := newNewsStrategy(5, []string{"TSLA", "NVDA"}, src, engine, &recordingFeedback{}, &recordingNotifier{}, stubPrices{})
	out, err := s.Execute(context.Background())

	require.NoError(t, err)
	assert.Empty(t, engine.calls)
	assert.Contains(t, out.Output, `"skipped":2`)
}

func TestNewsIngestion_PerSymbolIsolation(t *testing.T) {
	engine := &stubEngine{
		panicOn: "AAPL",
		results: map[string]*dto.AnalysisResult{
			"TSLA": {ImpactScore: 9, PredictedDirection: entity.DirectionDown},
		},
	}
	src := stubNews{items: map[string][]dto.ContentItem{"AAPL": news("a"), "MSFT": news("m"), "TSLA": news("t")}}
	fb := &recordingFeedback{}

	s := newNewsStrategy(5, []string{"AAPL", "MSFT", "TSLA"}, src, engine, fb, &recordingNotifier{err: errors.New("chat down")}, stubPrices{err: errors.New("no quote")})
	out, err := s.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, engine.calls)
	require.Len(t, fb.records, 1)
	assert.Equal(t, "TSLA", fb.records[0].Symbol)
	assert.True(t, fb.records[0].StartPrice.IsZero())
	assert.Contains(t, out.Output, `"failed":2`)
}

func TestNewsIngestion_WatchlistError(t *testing.T) {
	s := NewNewsIngestionStrategy(
		Thresholds{ImpactThreshold: 5, RelevanceTopK: 10},
		stubWatchlist{err: errors.New("missing file")},
		stubNews{}, stubPrices{}, &stubEngine{}, &recordingFeedback{}, &recordingNotifier{},
		ratelimit.NewPacer(0), logger.NewNop(),
	)
	_, err := s.Execute(context.Background())
	assert.Error(t, err)
}

func TestResolveSymbol(t *testing.T) {
	assert.Equal(t, "NVDA", ResolveSymbol("nvda", "TSLA"))
	assert.Equal(t, "TSLA", ResolveSymbol("GENERAL", "tsla"))
	assert.Equal(t, "TSLA", ResolveSymbol(" ", "TSLA"))
	assert.Equal(t, "", ResolveSymbol("general", ""))
}

func TestSocialIngestion_GeneralFallsBackToDefault(t *testing.T) {
	engine := &stubEngine{results: map[string]*dto.AnalysisResult{
		"@elonmusk": {ImpactScore: 8, PredictedDirection: entity.DirectionUp, SpecificStock: "GENERAL", AffectedSector: "EV"},
		"@saylor":   {ImpactScore: 3, PredictedDirection: entity.DirectionUp, SpecificStock: "BTC-USD"},
		"@nobody":   {ImpactScore: 9, PredictedDirection: entity.DirectionDown, SpecificStock: "GENERAL"},
	}}
	social := stubSocial{posts: map[string][]dto.ContentItem{
		"1": {{Body: "big news soon"}},
		"2": {{Body: "bitcoin"}},
		"3": {{Body: "markets"}},
	}}
	fb := &recordingFeedback{}
	n := &recordingNotifier{}

	s := NewSocialIngestionStrategy(
		Thresholds{ImpactThreshold: 5, RelevanceTopK: 10},
		[]config.SocialAccount{
			{ID: "1", Handle: "@elonmusk", DefaultSymbol: "TSLA"},
			{ID: "2", Handle: "@saylor", DefaultSymbol: "MSTR"},
			{ID: "3", Handle: "@nobody"},
		},
		social,
		stubPrices{price: decimal.NewFromInt(250)},
		engine,
		fb,
		n,
		ratelimit.NewPacer(0),
		logger.NewNop(),
	)
	out, err := s.Execute(context.Background())

	require.NoError(t, err)
	require.Len(t, fb.records, 1)
	assert.Equal(t, "TSLA", fb.records[0].Symbol)
	assert.Equal(t, entity.SourceTypeSocial, fb.records[0].SourceType)
	require.Len(t, n.messages, 2)
	assert.Contains(t, n.messages[0], "TSLA (EV)")
	assert.Contains(t, n.messages[1], "GENERAL")
	assert.Equal(t, []string{"@elonmusk", "@saylor", "@nobody"}, out.Symbols)
}

type stubVerification struct {
	summary *dto.VerificationSummary
	err     error
}

func (s stubVerification) Run(context.Context) (*dto.VerificationSummary, error) {
	return s.summary, s.err
}

func TestVerificationStrategy(t *testing.T) {
	s := NewVerificationStrategy(stubVerification{summary: &dto.VerificationSummary{Pending: 2, Verified: 1, Skipped: 1}})
	assert.Equal(t, entity.JobTypeVerification, s.GetType())

	out, err := s.Execute(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.Output, `"verified":1`)

	_, err = NewVerificationStrategy(stubVerification{err: errors.New("db down")}).Execute(context.Background())
	assert.Error(t, err)
}
