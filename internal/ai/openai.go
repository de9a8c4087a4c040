package ai

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	DefaultModel = openai.GPT4oMini

	defaultRateLimit = 2
	defaultRateBurst = 5
)

// OpenAIConfig configures OpenAICompleter. Zero values fall back to defaults.
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	RateLimit float64 // requests per second
	RateBurst int
}

// OpenAICompleter calls the chat completions API in JSON-object mode.
// Calls beyond the local rate limit are refused with ErrRateLimited instead of queueing.
type OpenAICompleter struct {
	client      *openai.Client
	model       string
	rateLimiter *rate.Limiter
}

func NewOpenAICompleter(cfg OpenAIConfig) *OpenAICompleter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	limit, burst := cfg.RateLimit, cfg.RateBurst
	if limit <= 0 {
		limit = defaultRateLimit
	}
	if burst < 1 {
		burst = defaultRateBurst
	}

	return &OpenAICompleter{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		rateLimiter: rate.NewLimiter(rate.Limit(limit), burst),
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.rateLimiter.Allow() {
		return "", ErrRateLimited
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", translateOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "{}", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// translateOpenAIError keeps the status code and message of API failures so the
// generator can classify them; transport errors pass through unchanged.
func translateOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return err
}
