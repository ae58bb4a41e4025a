package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"yt-stock-insight/internal/executor/config"
	"yt-stock-insight/internal/executor/dto"
	"yt-stock-insight/internal/insight"
	"yt-stock-insight/pkg/logger"
	"yt-stock-insight/pkg/ratelimit"

	"golang.org/x/time/rate"
)

const chatCompletionsPath = "/chat/completions"

// ErrEmptyChoices is returned when the completion envelope has no choices.
var ErrEmptyChoices = errors.New("chat completion response has no choices")

// HTTPStatusError is returned for non-2xx responses of the LLM endpoint.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("received non-OK response from LLM API: %d - %s", e.StatusCode, e.Body)
}

// InsightExtractorRepository extracts a structured insight from transcript text.
type InsightExtractorRepository interface {
	ExtractInsight(ctx context.Context, title, transcript string) (insight.Envelope, error)
}

type chatCompletionRepository struct {
	client         *http.Client
	cfg            config.LLM
	endpoint       string
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
}

// NewChatCompletionRepository talks to any OpenAI-compatible chat-completions
// endpoint (LM Studio, OpenAI, OpenRouter).
func NewChatCompletionRepository(cfg config.LLM, log *logger.Logger) InsightExtractorRepository {
	requestLimiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.MaxRequestPerMinute > 0 {
		secondsPerRequest := time.Minute / time.Duration(cfg.MaxRequestPerMinute)
		requestLimiter = rate.NewLimiter(rate.Every(secondsPerRequest), 1)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	return &chatCompletionRepository{
		client: &http.Client{
			Timeout: timeout,
		},
		cfg:            cfg,
		endpoint:       chatCompletionsURL(cfg.BaseURL),
		logger:         log,
		requestLimiter: requestLimiter,
		tokenLimiter:   ratelimit.NewTokenLimiter(cfg.MaxTokenPerMinute),
	}
}

// chatCompletionsURL accepts either an API root ("https://api.mistral.ai/v1")
// or the full endpoint.
func chatCompletionsURL(baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	if strings.HasSuffix(baseURL, chatCompletionsPath) {
		return baseURL
	}
	return baseURL + chatCompletionsPath
}

// ExtractInsight sends the prompt and returns the parsed message envelope.
// Transport failures, *HTTPStatusError and ErrEmptyChoices are returned as
// errors; a message without a JSON object is a KindMalformed envelope.
func (r *chatCompletionRepository) ExtractInsight(ctx context.Context, title, transcript string) (insight.Envelope, error) {
	resp, err := r.SendRequest(ctx, BuildInsightPrompt(title, transcript))
	if err != nil {
		return insight.Envelope{}, err
	}
	if len(resp.Choices) == 0 {
		return insight.Envelope{}, ErrEmptyChoices
	}
	return insight.ParseEnvelope(resp.Choices[0].Message.Content), nil
}

func (r *chatCompletionRepository) SendRequest(ctx context.Context, prompt string) (*dto.ChatCompletionResponse, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		r.logger.Error("failed to wait for request limit", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	payload := dto.ChatCompletionRequest{
		Model: r.cfg.Model,
		Messages: []dto.Message{
			{
				Role:    "user",
				Content: prompt,
			},
		},
		Temperature: r.cfg.Temperature,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.APIKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", r.cfg.APIKey))
	}

	r.logger.Debug("Sending request to LLM API", logger.StringField("url", r.endpoint), logger.StringField("model", r.cfg.Model))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to LLM API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		r.logger.Error("Received non-OK response from LLM API", logger.IntField("status_code", resp.StatusCode), logger.StringField("url", r.endpoint), logger.StringField("model", r.cfg.Model))
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var completion dto.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	if r.cfg.MaxTokenPerMinute > 0 && completion.Usage.TotalTokens > r.cfg.MaxTokenPerMinute/2 {
		r.logger.Warn("Token has exceeded 50% of the limit", logger.IntField("remaining", r.tokenLimiter.GetRemaining()))
	}

	if err := r.tokenLimiter.Wait(ctx, completion.Usage.TotalTokens); err != nil {
		r.logger.Error("failed to wait for token limit", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to wait for token limit: %w", err)
	}

	return &completion, nil
}
