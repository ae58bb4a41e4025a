package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"yt-stock-insight/internal/executor/config"
	"yt-stock-insight/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestTruncateSummarizer_Summarize(t *testing.T) {
	tests := []struct {
		name     string
		maxChars int
		text     string
		want     string
	}{
		{name: "under the limit", maxChars: 10, text: "tesla 180", want: "tesla 180"},
		{name: "exactly at the limit", maxChars: 9, text: "tesla 180", want: "tesla 180"},
		{name: "over the limit", maxChars: 5, text: "tesla 180", want: "tesla"},
		{name: "multibyte runes", maxChars: 4, text: "€€€€€€", want: "€€€€"},
		{name: "trims whitespace first", maxChars: 5, text: "  tesla  ", want: "tesla"},
		{name: "default budget", maxChars: 0, text: strings.Repeat("a", defaultSummaryOutputChars+10), want: strings.Repeat("a", defaultSummaryOutputChars)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewTruncateSummarizer(config.Summarizer{MaxOutputChars: tt.maxChars})
			got, err := s.Summarize(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

type fakeGenerator struct {
	prompt    string
	genConfig *genai.GenerateContentConfig
	reply     string
	countErr  error
	genErr    error
}

func (f *fakeGenerator) CountTokens(_ context.Context, _ string, contents []*genai.Content, _ *genai.CountTokensConfig) (*genai.CountTokensResponse, error) {
	if f.countErr != nil {
		return nil, f.countErr
	}
	f.prompt = contents[0].Parts[0].Text
	return &genai.CountTokensResponse{TotalTokens: int32(len(f.prompt) / 4)}, nil
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ string, _ []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.genConfig = cfg
	if f.genErr != nil {
		return nil, f.genErr
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.reply}}},
		}},
	}, nil
}

func TestGeminiSummarizer_Summarize(t *testing.T) {
	t.Run("bounds input and output", func(t *testing.T) {
		gen := &fakeGenerator{reply: "  ÄÖÜ support at 180, resistance at 200  "}
		cfg := config.Summarizer{MaxInputChars: 6, MaxOutputChars: 3, MaxOutputTokens: 64}
		s := newGeminiSummarizer(cfg, config.Gemini{Model: "gemini-2.0-flash"}, logger.NewNop(), gen)

		got, err := s.Summarize(context.Background(), "ÄÖÜäöü and the rest is dropped")
		require.NoError(t, err)

		assert.Equal(t, "ÄÖÜ", got)
		assert.Contains(t, gen.prompt, "ÄÖÜäöü")
		assert.NotContains(t, gen.prompt, "and the rest is dropped")
		assert.Contains(t, gen.prompt, "at most 3 characters")
		require.NotNil(t, gen.genConfig)
		assert.Equal(t, int32(64), gen.genConfig.MaxOutputTokens)
	})

	t.Run("empty summary", func(t *testing.T) {
		s := newGeminiSummarizer(config.Summarizer{}, config.Gemini{Model: "m"}, logger.NewNop(), &fakeGenerator{reply: "   "})
		_, err := s.Summarize(context.Background(), "text")
		assert.Error(t, err)
	})

	t.Run("count tokens fails", func(t *testing.T) {
		s := newGeminiSummarizer(config.Summarizer{}, config.Gemini{Model: "m"}, logger.NewNop(), &fakeGenerator{countErr: errors.New("quota")})
		_, err := s.Summarize(context.Background(), "text")
		assert.ErrorContains(t, err, "quota")
	})

	t.Run("generate fails", func(t *testing.T) {
		s := newGeminiSummarizer(config.Summarizer{}, config.Gemini{Model: "m"}, logger.NewNop(), &fakeGenerator{genErr: errors.New("unavailable")})
		_, err := s.Summarize(context.Background(), "text")
		assert.ErrorContains(t, err, "unavailable")
	})
}
