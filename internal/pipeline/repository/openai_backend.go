package repository

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// openAIBackend talks to any OpenAI-compatible chat completion endpoint.
type openAIBackend struct {
	provider       string
	model          string
	client         *openai.Client
	requestLimiter *rate.Limiter
}

// NewOpenAIBackend creates a ModelBackend for OpenAI or an OpenAI-compatible
// gateway such as OpenRouter. An empty baseURL uses the OpenAI default.
func NewOpenAIBackend(provider, apiKey, baseURL, model string, requestLimiter *rate.Limiter) ModelBackend {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	return &openAIBackend{
		provider:       provider,
		model:          model,
		client:         openai.NewClientWithConfig(clientCfg),
		requestLimiter: requestLimiter,
	}
}

func (o *openAIBackend) Name() string {
	return o.provider + "/" + o.model
}

func (o *openAIBackend) Complete(ctx context.Context, prompt string) (string, error) {
	if err := o.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a market analyst. Reply with a single JSON object and nothing else.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("received empty choices from %s", o.provider)
	}
	return resp.Choices[0].Message.Content, nil
}
