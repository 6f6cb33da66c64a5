package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"golang-market-signal/internal/entity"
	"golang-market-signal/internal/pipeline/dto"
	"golang-market-signal/internal/pipeline/repository"
)

type mockPriceRepository struct {
	mock.Mock
}

func (m *mockPriceRepository) GetCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockPriceRepository) GetDailyCloses(ctx context.Context, symbol string, days int) ([]dto.PriceBar, error) {
	args := m.Called(ctx, symbol, days)
	bars, _ := args.Get(0).([]dto.PriceBar)
	return bars, args.Error(1)
}

type mockPredictionRepository struct {
	mock.Mock
}

func (m *mockPredictionRepository) Create(ctx context.Context, p *entity.Prediction) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPredictionRepository) FindByID(ctx context.Context, id uint) (*entity.Prediction, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*entity.Prediction)
	return p, args.Error(1)
}

func (m *mockPredictionRepository) FindPending(ctx context.Context) ([]entity.Prediction, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]entity.Prediction)
	return ps, args.Error(1)
}

func (m *mockPredictionRepository) List(ctx context.Context, filter repository.PredictionFilter) ([]entity.Prediction, error) {
	args := m.Called(ctx, filter)
	ps, _ := args.Get(0).([]entity.Prediction)
	return ps, args.Error(1)
}

func (m *mockPredictionRepository) MarkVerified(ctx context.Context, id uint, endPrice decimal.Decimal, isCorrect bool, verifiedAt time.Time) error {
	args := m.Called(ctx, id, endPrice, isCorrect, verifiedAt)
	return args.Error(0)
}

func (m *mockPredictionRepository) CountVerified(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPredictionRepository) CountCorrect(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPredictionRepository) FindMistakes(ctx context.Context, limit int) ([]entity.Prediction, error) {
	args := m.Called(ctx, limit)
	ps, _ := args.Get(0).([]entity.Prediction)
	return ps, args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendMessage(text string) error {
	args := m.Called(text)
	return args.Error(0)
}

// fakeBackend returns canned responses and records how often it was called.
type fakeBackend struct {
	name     string
	response string
	err      error
	calls    int
	prompts  []string
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Complete(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

// hangingBackend blocks until its context is done.
type hangingBackend struct {
	calls int
}

func (h *hangingBackend) Name() string { return "hanging" }

func (h *hangingBackend) Complete(ctx context.Context, _ string) (string, error) {
	h.calls++
	<-ctx.Done()
	return "", ctx.Err()
}

func closes(values ...float64) []dto.PriceBar {
	bars := make([]dto.PriceBar, len(values))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		bars[i] = dto.PriceBar{Date: start.AddDate(0, 0, i), Close: v}
	}
	return bars
}
