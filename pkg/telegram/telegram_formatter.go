package telegram

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"golang-market-signal/internal/entity"
)

const separator = "────────────────"

// NewsAlert holds the fields of a news alert message.
type NewsAlert struct {
	Symbol    string
	Score     int
	Direction entity.Direction
	Summary   string
	Reason    string
}

// SocialAlert holds the fields of a social flash update message.
type SocialAlert struct {
	Handle    string
	Symbol    string
	Sector    string
	Score     int
	Direction entity.Direction
	Summary   string
	Reason    string
}

// VerificationResult holds the fields of a verification report.
type VerificationResult struct {
	Symbol     string
	StartPrice decimal.Decimal
	EndPrice   decimal.Decimal
	Predicted  entity.Direction
	Actual     entity.Direction
	IsCorrect  bool
}

// Verdict returns "correct" or "wrong".
func (v VerificationResult) Verdict() string {
	if v.IsCorrect {
		return "correct"
	}
	return "wrong"
}

// FormatNewsAlert formats a news alert.
func FormatNewsAlert(a NewsAlert) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🚨 Stock alert %s\n", a.Symbol))
	sb.WriteString(fmt.Sprintf("🔥 Impact: %d/10\n", a.Score))
	sb.WriteString(fmt.Sprintf("%s Direction: %s\n", directionIcon(a.Direction), a.Direction))
	sb.WriteString(separator + "\n")
	sb.WriteString(a.Summary + "\n")
	sb.WriteString(separator + "\n")
	sb.WriteString(fmt.Sprintf("💡 Reason: %s", a.Reason))
	return sb.String()
}

// FormatSocialAlert formats a social flash update.
func FormatSocialAlert(a SocialAlert) string {
	bar := a.Score
	if bar < 0 {
		bar = 0
	}
	if bar > 10 {
		bar = 10
	}

	var sb strings.Builder
	sb.WriteString("⚡ FLASH UPDATE 🐦\n")
	sb.WriteString(fmt.Sprintf("🗣️ Source: %s\n", a.Handle))
	sb.WriteString(fmt.Sprintf("🎯 Affects: %s (%s)\n", a.Symbol, a.Sector))
	sb.WriteString(fmt.Sprintf("🌊 Impact: %s (%d/10)\n", strings.Repeat("🔴", bar), a.Score))
	sb.WriteString(fmt.Sprintf("%s Direction: %s\n", directionIcon(a.Direction), a.Direction))
	sb.WriteString(separator + "\n")
	sb.WriteString(a.Summary + "\n")
	sb.WriteString(separator + "\n")
	sb.WriteString(fmt.Sprintf("💡 AI view: %s", a.Reason))
	return sb.String()
}

// FormatVerificationResult formats the outcome of one verified prediction.
func FormatVerificationResult(v VerificationResult) string {
	icon := "❌"
	if v.IsCorrect {
		icon = "✅"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📝 Prediction check (%s)\n", v.Symbol))
	sb.WriteString(fmt.Sprintf("Price: $%s -> $%s\n", v.StartPrice.StringFixed(2), v.EndPrice.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("Predicted: %s | Actual: %s\n", v.Predicted, v.Actual))
	sb.WriteString(fmt.Sprintf("Result: %s %s", icon, v.Verdict()))
	return sb.String()
}

// FormatAccuracySummary formats the accuracy line pushed after a verification run.
func FormatAccuracySummary(s entity.AccuracySnapshot) string {
	return fmt.Sprintf("🎯 accuracy %.2f%% (%d/%d)", s.Percent(), s.Correct, s.Total)
}

// FormatErrorAlertMessage formats a failed run for the operator.
func FormatErrorAlertMessage(t time.Time, jobType string, errMsg string) string {
	return fmt.Sprintf("📛 [ERROR ALERT]\n%s\n🔧 %s\n⚠️ %s", t.Format("02 Jan 2006 15:04 MST"), jobType, errMsg)
}

func directionIcon(d entity.Direction) string {
	switch d {
	case entity.DirectionUp:
		return "📈"
	case entity.DirectionDown:
		return "📉"
	default:
		return "➖"
	}
}
