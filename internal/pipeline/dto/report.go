package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PredictionQuery filters the prediction listing.
type PredictionQuery struct {
	Status string `query:"status"`
	Symbol string `query:"symbol"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

// PredictionResponse is the DTO for API responses containing a prediction.
type PredictionResponse struct {
	ID                 uint             `json:"id"`
	Symbol             string           `json:"symbol"`
	SourceType         string           `json:"source_type"`
	Summary            string           `json:"summary"`
	PredictedDirection string           `json:"predicted_direction"`
	ConfidenceScore    int              `json:"confidence_score"`
	StartPrice         decimal.Decimal  `json:"start_price"`
	EndPrice           *decimal.Decimal `json:"end_price,omitempty"`
	IsCorrect          *bool            `json:"is_correct,omitempty"`
	Status             string           `json:"status"`
	CreatedAt          time.Time        `json:"created_at"`
	VerifiedAt         *time.Time       `json:"verified_at,omitempty"`
}

// AccuracyResponse is the running accuracy of verified predictions.
type AccuracyResponse struct {
	Total    int64   `json:"total"`
	Correct  int64   `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// RunHistoryResponse is the DTO for API responses containing a batch run.
type RunHistoryResponse struct {
	ID          uint       `json:"id"`
	JobType     string     `json:"job_type"`
	Status      string     `json:"status"`
	Symbols     []string   `json:"symbols"`
	Output      string     `json:"output,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DurationMs  int64      `json:"duration_ms,omitempty"`
}
