package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang-market-signal/internal/entity"
	"golang-market-signal/internal/pipeline/dto"
)

// PromptInput is everything rendered into one analysis prompt.
type PromptInput struct {
	SourceType    entity.SourceType
	Topic         string
	Language      string
	MarketContext string
	Accuracy      entity.AccuracySnapshot
	Mistakes      []entity.MistakeExample
	Technical     string
	Items         []dto.ContentItem
}

// BuildPrompt renders the NEWS or SOCIAL analysis prompt.
func BuildPrompt(in PromptInput) string {
	language := in.Language
	if language == "" {
		language = "English"
	}

	var sb strings.Builder
	if in.SourceType == entity.SourceTypeSocial {
		sb.WriteString("Role: Senior Market Sentiment Analyst.\n")
		sb.WriteString(fmt.Sprintf("Task: Analyze the latest posts from influencer %s and find the hidden market signal.\n\n", in.Topic))
	} else {
		sb.WriteString("Role: Professional Stock Analyst.\n")
		sb.WriteString(fmt.Sprintf("Task: Analyze the latest news related to %s and predict the price direction over the next 24 hours.\n\n", in.Topic))
	}

	sb.WriteString("[MARKET CONTEXT]\n")
	sb.WriteString(in.MarketContext)
	sb.WriteString("\n\n")

	if len(in.Mistakes) > 0 {
		sb.WriteString(renderFeedback(in.Accuracy, in.Mistakes))
		sb.WriteString("\n")
	}

	if in.SourceType != entity.SourceTypeSocial && in.Technical != "" {
		sb.WriteString("[TECHNICAL SIGNALS]\n")
		sb.WriteString(in.Technical)
		sb.WriteString("\n\n")
	}

	label := "DATA"
	if in.SourceType == entity.SourceTypeSocial {
		label = "POSTS"
	}
	sb.WriteString(fmt.Sprintf("[%s START]\n%s\n[%s END]\n\n", label, renderItems(in.Items), label))

	if in.SourceType == entity.SourceTypeSocial {
		sb.WriteString(fmt.Sprintf(`1. Impact Score (1-10): urgency and market moving potential.
2. Predicted Direction: UP, DOWN or NEUTRAL for the affected asset over the next 24 hours.
3. Affected Sector: which industry is affected (e.g. EV, AI, Crypto, Banking).
4. Specific Stock: the ticker most affected (e.g. TSLA, BTC-USD, NVDA). If unsure, use "GENERAL".
5. Summary (%s): short, punchy, informal tone.

Respond with JSON ONLY:
{
  "impact_score": <int 1-10>,
  "predicted_direction": "UP | DOWN | NEUTRAL",
  "affected_sector": "<sector>",
  "specific_stock": "<ticker or GENERAL>",
  "summary_message": "<summary>",
  "reason": "<short reason>"
}`, language))
	} else {
		sb.WriteString(fmt.Sprintf(`1. Impact Score (1-10): how much does this move the stock price? (1 = noise, 10 = earnings shock, M&A, CEO change)
2. Predicted Direction: UP, DOWN or NEUTRAL over the next 24 hours.
3. Summary (%s): 3-4 lines with the sentiment trend.

Respond with JSON ONLY:
{
  "impact_score": <int 1-10>,
  "predicted_direction": "UP | DOWN | NEUTRAL",
  "summary_message": "<summary>",
  "reason": "<short reason>"
}`, language))
	}
	return sb.String()
}

func renderFeedback(acc entity.AccuracySnapshot, mistakes []entity.MistakeExample) string {
	var sb strings.Builder
	sb.WriteString("[LEARN FROM YOUR PAST]\n")
	sb.WriteString(fmt.Sprintf("Your Current Accuracy: %.1f%%\n", acc.Percent()))
	sb.WriteString("Here are your past MISTAKES. Do not repeat them:\n")
	for i, m := range mistakes {
		sb.WriteString(fmt.Sprintf("%d. %s: you predicted %s, price went %s -> %s (actual %s). Summary was: %s\n",
			i+1,
			m.Symbol,
			m.PredictedDirection,
			m.StartPrice.StringFixed(2),
			m.EndPrice.StringFixed(2),
			entity.ActualDirection(m.StartPrice, m.EndPrice),
			m.Summary,
		))
	}
	return sb.String()
}

func renderItems(items []dto.ContentItem) string {
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}
