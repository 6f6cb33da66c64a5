package dto

import (
	"golang-market-signal/internal/entity"
)

// AnalysisResult is the normalized model answer.
type AnalysisResult struct {
	ImpactScore        int              `json:"impact_score"`
	PredictedDirection entity.Direction `json:"predicted_direction"`
	SummaryMessage     string           `json:"summary_message"`
	Reason             string           `json:"reason"`
	AffectedSector     string           `json:"affected_sector,omitempty"`
	SpecificStock      string           `json:"specific_stock,omitempty"`
	Backend            string           `json:"backend"`
}

// RawAnalysis is the shape decoded from a model response. Pointer fields
// distinguish missing keys from zero values.
type RawAnalysis struct {
	ImpactScore        *int    `json:"impact_score"`
	PredictedDirection *string `json:"predicted_direction"`
	SummaryMessage     *string `json:"summary_message"`
	Reason             *string `json:"reason"`
	AffectedSector     *string `json:"affected_sector"`
	SpecificStock      *string `json:"specific_stock"`
}

// AnalysisRequest is what a strategy hands to the prediction engine.
type AnalysisRequest struct {
	SourceType entity.SourceType
	// Topic is the symbol for news, or the account handle for social posts.
	Topic string
	// Symbol selects the technical digest. Empty for social posts.
	Symbol string
	Items  []ContentItem
}

// PromptContext captures what was fed into the prompt. It is stored on the
// prediction as JSON.
type PromptContext struct {
	MarketContext string  `json:"market_context"`
	Technical     string  `json:"technical,omitempty"`
	Accuracy      float64 `json:"accuracy"`
	Mistakes      int     `json:"mistakes"`
	ItemCount     int     `json:"item_count"`
	Backend       string  `json:"backend"`
}
