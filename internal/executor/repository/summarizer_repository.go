package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"yt-stock-insight/internal/executor/config"
	"yt-stock-insight/pkg/logger"
	"yt-stock-insight/pkg/ratelimit"
	"yt-stock-insight/pkg/utils"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const (
	defaultSummaryInputChars  = 16000
	defaultSummaryOutputChars = 4000
)

// SummarizerRepository shortens transcript text within a length budget.
type SummarizerRepository interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// NewTruncateSummarizer keeps the first MaxOutputChars runes of the text.
func NewTruncateSummarizer(cfg config.Summarizer) SummarizerRepository {
	return &truncateSummarizer{maxChars: outputBudget(cfg)}
}

type truncateSummarizer struct {
	maxChars int
}

func (s *truncateSummarizer) Summarize(_ context.Context, text string) (string, error) {
	return utils.TruncateRunes(strings.TrimSpace(text), s.maxChars), nil
}

// contentGenerator is the part of genai.Models the summarizer uses.
type contentGenerator interface {
	CountTokens(ctx context.Context, model string, contents []*genai.Content, cfg *genai.CountTokensConfig) (*genai.CountTokensResponse, error)
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type geminiSummarizer struct {
	cfg            config.Summarizer
	gemini         config.Gemini
	logger         *logger.Logger
	models         contentGenerator
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
}

// NewGeminiSummarizer summarizes with a Gemini model.
func NewGeminiSummarizer(cfg config.Summarizer, gemini config.Gemini, log *logger.Logger, genAiClient *genai.Client) SummarizerRepository {
	return newGeminiSummarizer(cfg, gemini, log, genAiClient.Models)
}

func newGeminiSummarizer(cfg config.Summarizer, gemini config.Gemini, log *logger.Logger, models contentGenerator) *geminiSummarizer {
	requestLimiter := rate.NewLimiter(rate.Inf, 1)
	if gemini.MaxRequestPerMinute > 0 {
		requestLimiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(gemini.MaxRequestPerMinute)), 1)
	}
	return &geminiSummarizer{
		cfg:            cfg,
		gemini:         gemini,
		logger:         log,
		models:         models,
		tokenLimiter:   ratelimit.NewTokenLimiter(gemini.MaxTokenPerMinute),
		requestLimiter: requestLimiter,
	}
}

func (s *geminiSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	inputBudget := s.cfg.MaxInputChars
	if inputBudget <= 0 {
		inputBudget = defaultSummaryInputChars
	}
	outChars := outputBudget(s.cfg)
	prompt := BuildSummaryPrompt(utils.TruncateRunes(text, inputBudget), outChars)

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}
	tokenResp, err := s.models.CountTokens(ctx, s.gemini.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to count tokens: %w", err)
	}
	if err := s.tokenLimiter.Wait(ctx, int(tokenResp.TotalTokens)); err != nil {
		return "", fmt.Errorf("failed to wait for token limit: %w", err)
	}
	if err := s.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	temperature := float32(0.2)
	genCfg := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}
	if s.cfg.MaxOutputTokens > 0 {
		genCfg.MaxOutputTokens = s.cfg.MaxOutputTokens
	}

	s.logger.Debug("Requesting Gemini summary",
		logger.StringField("model", s.gemini.Model),
		logger.IntField("prompt_tokens", int(tokenResp.TotalTokens)),
	)

	resp, err := s.models.GenerateContent(ctx, s.gemini.Model, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}
	summary := strings.TrimSpace(resp.Text())
	if summary == "" {
		return "", fmt.Errorf("gemini returned an empty summary")
	}
	return utils.TruncateRunes(summary, outChars), nil
}

func outputBudget(cfg config.Summarizer) int {
	if cfg.MaxOutputChars > 0 {
		return cfg.MaxOutputChars
	}
	return defaultSummaryOutputChars
}
