package repository

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"golang-market-signal/pkg/logger"
	"golang-market-signal/pkg/ratelimit"
)

type geminiBackend struct {
	client         *genai.Client
	model          string
	maxTokens      int
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
}

// NewGeminiBackend creates a ModelBackend for one Gemini model. The limiters
// belong to the API key and are shared by every model using it.
func NewGeminiBackend(
	client *genai.Client,
	model string,
	maxTokens int,
	tokenLimiter *ratelimit.TokenLimiter,
	requestLimiter *rate.Limiter,
	log *logger.Logger,
) ModelBackend {
	return &geminiBackend{
		client:         client,
		model:          model,
		maxTokens:      maxTokens,
		logger:         log,
		tokenLimiter:   tokenLimiter,
		requestLimiter: requestLimiter,
	}
}

func (g *geminiBackend) Name() string {
	return ProviderGemini + "/" + g.model
}

func (g *geminiBackend) Complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}

	tokenResp, err := g.client.Models.CountTokens(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to count tokens: %w", err)
	}
	g.logger.DebugContext(ctx, "Gemini token count",
		logger.StringField("model", g.model),
		logger.IntField("total_tokens", int(tokenResp.TotalTokens)),
		logger.IntField("remaining", g.tokenLimiter.GetRemaining()),
	)

	if err := g.tokenLimiter.Wait(ctx, int(tokenResp.TotalTokens)); err != nil {
		return "", fmt.Errorf("failed to wait for token limit: %w", err)
	}
	if err := g.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}
	if g.maxTokens > 0 && int(tokenResp.TotalTokens) > g.maxTokens/2 {
		g.logger.WarnContext(ctx, "Token has exceeded 50% of the limit", logger.IntField("remaining", g.tokenLimiter.GetRemaining()))
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("gemini returned empty content")
	}
	return sb.String(), nil
}
