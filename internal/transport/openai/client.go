// Package openai implements the LLM collaborator contracts (completion,
// embedding, moderation) over an OpenAI-compatible API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/lumenlearn/lumen/internal/domain"
	"github.com/lumenlearn/lumen/internal/metrics"
)

// Client wraps the OpenAI-compatible API for completions, embeddings and
// moderation.
type Client struct {
	api             *openai.Client
	completionModel string
	embeddingModel  openai.EmbeddingModel
	dimensions      int
	logger          *zap.Logger
}

// Config holds the provider settings.
type Config struct {
	APIKey          string
	BaseURL         string
	CompletionModel string
	EmbeddingModel  string
	Dimensions      int
	RequestTimeout  time.Duration
	Logger          *zap.Logger
}

// NewClient creates an OpenAI-compatible provider client. RequestTimeout
// bounds every provider call; a stalled provider fails the call instead
// of hanging the run.
func NewClient(cfg *Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.RequestTimeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}
	}

	return &Client{
		api:             openai.NewClientWithConfig(clientCfg),
		completionModel: cfg.CompletionModel,
		embeddingModel:  openai.EmbeddingModel(cfg.EmbeddingModel),
		dimensions:      cfg.Dimensions,
		logger:          cfg.Logger,
	}
}

// Complete implements domain.Completer via the chat completions endpoint.
func (c *Client) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.completionModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues("completion", c.completionModel, "error").Inc()
		return "", parseAPIError("completion", err, domain.ErrCompletionProviderError)
	}
	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues("completion", c.completionModel, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrCompletionProviderError)
	}

	metrics.LLMRequestsTotal.WithLabelValues("completion", c.completionModel, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues("completion", c.completionModel).Observe(duration.Seconds())
	metrics.LLMTokensTotal.WithLabelValues("completion", c.completionModel, "prompt").
		Add(float64(resp.Usage.PromptTokens))
	metrics.LLMTokensTotal.WithLabelValues("completion", c.completionModel, "completion").
		Add(float64(resp.Usage.CompletionTokens))
	metrics.LLMTokensTotal.WithLabelValues("completion", c.completionModel, "total").
		Add(float64(resp.Usage.TotalTokens))

	return resp.Choices[0].Message.Content, nil
}

// Embed implements domain.Embedder. Returns the vector and token usage.
func (c *Client) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          c.embeddingModel,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if c.dimensions > 0 {
		req.Dimensions = c.dimensions
	}

	start := time.Now()
	resp, err := c.api.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	model := string(c.embeddingModel)
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues("embedding", model, "error").Inc()
		return domain.EmbeddingResult{}, parseAPIError("embedding", err, domain.ErrRetrievalUnavailable)
	}
	if len(resp.Data) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues("embedding", model, "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrRetrievalUnavailable)
	}

	metrics.LLMRequestsTotal.WithLabelValues("embedding", model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues("embedding", model).Observe(duration.Seconds())
	metrics.LLMTokensTotal.WithLabelValues("embedding", model, "prompt").
		Add(float64(resp.Usage.PromptTokens))
	metrics.LLMTokensTotal.WithLabelValues("embedding", model, "total").
		Add(float64(resp.Usage.TotalTokens))

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// Moderate implements domain.Moderator via the moderations endpoint.
// Errors are surfaced as-is; the safety pipeline fails closed on them.
func (c *Client) Moderate(ctx context.Context, text string) (domain.ModerationResult, error) {
	start := time.Now()
	resp, err := c.api.Moderations(ctx, openai.ModerationRequest{Input: text})
	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues("moderation", "default", "error").Inc()
		return domain.ModerationResult{}, parseAPIError("moderation", err, domain.ErrModerationProviderError)
	}
	if len(resp.Results) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues("moderation", "default", "error").Inc()
		return domain.ModerationResult{}, fmt.Errorf("empty moderation response: %w", domain.ErrModerationProviderError)
	}

	metrics.LLMRequestsTotal.WithLabelValues("moderation", "default", "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues("moderation", "default").Observe(duration.Seconds())

	r := resp.Results[0]
	return domain.ModerationResult{
		Flagged:    r.Flagged,
		Categories: flaggedCategories(r.Categories),
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func flaggedCategories(c openai.ResultCategories) []string {
	var out []string
	for name, flagged := range map[string]bool{
		"hate":                   c.Hate,
		"hate/threatening":       c.HateThreatening,
		"harassment":             c.Harassment,
		"harassment/threatening": c.HarassmentThreatening,
		"self-harm":              c.SelfHarm,
		"self-harm/intent":       c.SelfHarmIntent,
		"self-harm/instructions": c.SelfHarmInstructions,
		"sexual":                 c.Sexual,
		"sexual/minors":          c.SexualMinors,
		"violence":               c.Violence,
		"violence/graphic":       c.ViolenceGraphic,
	} {
		if flagged {
			out = append(out, name)
		}
	}
	return out
}

// parseAPIError extracts a human-readable error from the API response and
// wraps it with the matching domain sentinel.
func parseAPIError(kind string, err error, wrap error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%s API error %d: %s: %w",
			kind, reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s: %w",
			kind, apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("%s request failed: %v: %w", kind, err, wrap)
}
