package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"golang-market-signal/internal/pipeline/config"
)

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type claudeError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type claudeBackend struct {
	model          string
	maxTokens      int
	client         *resty.Client
	requestLimiter *rate.Limiter
}

// NewClaudeBackend creates a ModelBackend for the Anthropic messages API.
func NewClaudeBackend(cfg config.Claude, model string, requestLimiter *rate.Limiter) ModelBackend {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &claudeBackend{
		model:     model,
		maxTokens: maxTokens,
		client: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(90*time.Second).
			SetHeader("x-api-key", cfg.APIKey).
			SetHeader("anthropic-version", cfg.Version),
		requestLimiter: requestLimiter,
	}
}

func (c *claudeBackend) Name() string {
	return ProviderClaude + "/" + c.model
}

func (c *claudeBackend) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	var (
		result  claudeResponse
		failure claudeError
	)
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(claudeRequest{
			Model:     c.model,
			MaxTokens: c.maxTokens,
			Messages:  []claudeMessage{{Role: "user", Content: prompt}},
		}).
		SetResult(&result).
		SetError(&failure).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("failed to send request to claude: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("claude http %d: %s", resp.StatusCode(), failure.Error.Message)
	}

	var sb strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("claude returned empty content")
	}
	return sb.String(), nil
}
