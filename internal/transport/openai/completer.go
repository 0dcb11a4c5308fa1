package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/cidade-aberta/urbanq/internal/domain"
	"github.com/cidade-aberta/urbanq/internal/metrics"
)

// Completer generates text via an OpenAI-compatible chat completions API.
// It serves both classifier fallback and response synthesis.
type Completer struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	retry       retryPolicy
	logger      *zap.Logger
}

// CompleterConfig holds the completion provider settings.
type CompleterConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	MaxRetries  int
	Logger      *zap.Logger
}

// NewCompleter creates an OpenAI-compatible completion provider.
func NewCompleter(cfg *CompleterConfig) *Completer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Completer{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
		timeout:     orDefault(cfg.Timeout, 30*time.Second),
		retry:       newRetryPolicy(cfg.MaxRetries),
		logger:      cfg.Logger,
	}
}

// Complete sends a system+user prompt pair and returns the generated
// text. purpose labels the call for metrics ("classify", "synthesize").
// Rate-limit errors are retried with capped exponential backoff.
func (c *Completer) Complete(ctx context.Context, purpose, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	var resp openai.ChatCompletionResponse
	start := time.Now()
	err := c.retry.do(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		var callErr error
		resp, callErr = c.client.CreateChatCompletion(callCtx, req)
		if callErr != nil {
			return parseAPIError("completion", callErr, domain.ErrCompletionProviderError)
		}
		return nil
	})
	duration := time.Since(start)

	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues(c.model, purpose, "error").Inc()
		return "", err
	}
	if len(resp.Choices) == 0 {
		metrics.CompletionRequestsTotal.WithLabelValues(c.model, purpose, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrCompletionProviderError)
	}

	metrics.CompletionRequestsTotal.WithLabelValues(c.model, purpose, "success").Inc()
	metrics.CompletionRequestDuration.WithLabelValues(c.model, purpose).Observe(duration.Seconds())
	metrics.CompletionTokensTotal.WithLabelValues(c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.CompletionTokensTotal.WithLabelValues(c.model, "completion").Add(float64(resp.Usage.CompletionTokens))
	metrics.CompletionTokensTotal.WithLabelValues(c.model, "total").Add(float64(resp.Usage.TotalTokens))

	return resp.Choices[0].Message.Content, nil
}
