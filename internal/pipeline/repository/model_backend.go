package repository

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"golang-market-signal/internal/pipeline/config"
	"golang-market-signal/pkg/logger"
	"golang-market-signal/pkg/ratelimit"
)

// Supported backend providers.
const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderClaude     = "claude"
)

// ModelBackend is one model identity in the failover sequence. Complete
// returns the raw text of the model answer.
type ModelBackend interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewModelBackends builds the configured backends in priority order. Backends
// whose provider has no credentials are left out with a warning. Models of the
// same provider share one API key, so they also share its rate limiters.
func NewModelBackends(ctx context.Context, cfg *config.Config, log *logger.Logger) ([]ModelBackend, error) {
	var (
		backends      []ModelBackend
		genAiClient   *genai.Client
		geminiTokens  *ratelimit.TokenLimiter
		requestLimits = make(map[string]*rate.Limiter)
	)

	limiterFor := func(provider string, maxPerMinute int) *rate.Limiter {
		if l, ok := requestLimits[provider]; ok {
			return l
		}
		l := newRequestLimiter(maxPerMinute)
		requestLimits[provider] = l
		return l
	}

	for _, b := range cfg.AI.Backends {
		switch b.Provider {
		case ProviderGemini:
			if cfg.Gemini.APIKey == "" {
				log.Warn("Gemini backend disabled, api key missing", logger.StringField("model", b.Model))
				continue
			}
			if genAiClient == nil {
				client, err := genai.NewClient(ctx, &genai.ClientConfig{
					APIKey:  cfg.Gemini.APIKey,
					Backend: genai.BackendGeminiAPI,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
				}
				genAiClient = client
				geminiTokens = ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute)
			}
			backends = append(backends, NewGeminiBackend(
				genAiClient, b.Model, cfg.Gemini.MaxTokenPerMinute,
				geminiTokens, limiterFor(ProviderGemini, cfg.Gemini.MaxRequestPerMinute), log,
			))
		case ProviderOpenAI:
			if cfg.OpenAI.APIKey == "" {
				log.Warn("OpenAI backend disabled, api key missing", logger.StringField("model", b.Model))
				continue
			}
			backends = append(backends, NewOpenAIBackend(ProviderOpenAI, cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, b.Model,
				limiterFor(ProviderOpenAI, cfg.OpenAI.MaxRequestPerMinute)))
		case ProviderOpenRouter:
			if cfg.OpenRouter.APIKey == "" {
				log.Warn("OpenRouter backend disabled, api key missing", logger.StringField("model", b.Model))
				continue
			}
			backends = append(backends, NewOpenAIBackend(ProviderOpenRouter, cfg.OpenRouter.APIKey, cfg.OpenRouter.BaseURL, b.Model,
				limiterFor(ProviderOpenRouter, cfg.OpenRouter.MaxRequestPerMinute)))
		case ProviderClaude:
			if cfg.Claude.APIKey == "" {
				log.Warn("Claude backend disabled, api key missing", logger.StringField("model", b.Model))
				continue
			}
			backends = append(backends, NewClaudeBackend(cfg.Claude, b.Model,
				limiterFor(ProviderClaude, cfg.Claude.MaxRequestPerMinute)))
		default:
			return nil, fmt.Errorf("unknown ai backend provider %q", b.Provider)
		}
	}

	if len(backends) == 0 {
		return nil, fmt.Errorf("no ai backend has credentials configured")
	}
	return backends, nil
}

func newRequestLimiter(maxPerMinute int) *rate.Limiter {
	if maxPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(maxPerMinute)), 1)
}
