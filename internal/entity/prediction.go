package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SourceType identifies where the analysed content came from.
type SourceType string

const (
	SourceTypeNews   SourceType = "NEWS"
	SourceTypeSocial SourceType = "SOCIAL"
)

// Direction is a predicted or observed price movement.
type Direction string

const (
	DirectionUp      Direction = "UP"
	DirectionDown    Direction = "DOWN"
	DirectionNeutral Direction = "NEUTRAL"
)

// ParseDirection normalizes a model-supplied direction. ok is false for
// anything outside UP/DOWN/NEUTRAL.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(strings.ToUpper(strings.TrimSpace(s))) {
	case DirectionUp:
		return DirectionUp, true
	case DirectionDown:
		return DirectionDown, true
	case DirectionNeutral:
		return DirectionNeutral, true
	}
	return "", false
}

// ActualDirection classifies the move from start to end.
func ActualDirection(start, end decimal.Decimal) Direction {
	switch end.Cmp(start) {
	case 1:
		return DirectionUp
	case -1:
		return DirectionDown
	default:
		return DirectionNeutral
	}
}

// PredictionStatus is the lifecycle state of a prediction.
type PredictionStatus string

const (
	PredictionStatusPending  PredictionStatus = "PENDING"
	PredictionStatusVerified PredictionStatus = "VERIFIED"
)

// Prediction is a scored market call waiting for, or closed by, verification.
// EndPrice, IsCorrect and VerifiedAt are only set together with
// Status=VERIFIED.
type Prediction struct {
	ID                 uint                `gorm:"primaryKey" json:"id"`
	Symbol             string              `gorm:"type:varchar(50);not null;index" json:"symbol"`
	SourceType         SourceType          `gorm:"type:varchar(10);not null" json:"source_type"`
	Summary            string              `gorm:"column:news_summary;type:text" json:"summary"`
	PredictedDirection Direction           `gorm:"type:varchar(10);not null" json:"predicted_direction"`
	ConfidenceScore    int                 `gorm:"not null" json:"confidence_score"`
	StartPrice         decimal.Decimal     `gorm:"type:numeric(20,8);not null" json:"start_price"`
	EndPrice           decimal.NullDecimal `gorm:"type:numeric(20,8)" json:"end_price"`
	IsCorrect          *bool               `json:"is_correct"`
	Status             PredictionStatus    `gorm:"type:varchar(10);not null;index" json:"status"`
	Context            datatypes.JSON      `gorm:"type:jsonb" json:"context,omitempty"`
	CreatedAt          time.Time           `gorm:"autoCreateTime" json:"created_at"`
	VerifiedAt         *time.Time          `json:"verified_at,omitempty"`
}

// TableName specifies the table name for the Prediction model.
func (Prediction) TableName() string {
	return "predictions"
}

// MistakeExample is the prompt-facing projection of a wrong prediction.
type MistakeExample struct {
	Symbol             string          `json:"symbol"`
	Summary            string          `json:"summary"`
	PredictedDirection Direction       `json:"predicted_direction"`
	StartPrice         decimal.Decimal `json:"start_price"`
	EndPrice           decimal.Decimal `json:"end_price"`
}

// AccuracySnapshot aggregates verified predictions.
type AccuracySnapshot struct {
	Total   int64 `json:"total"`
	Correct int64 `json:"correct"`
}

// Percent returns correct/total as a percentage, 0 when nothing is verified.
func (a AccuracySnapshot) Percent() float64 {
	if a.Total == 0 {
		return 0
	}
	return float64(a.Correct) / float64(a.Total) * 100
}
