package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// TokenLimiter bounds the number of LLM tokens consumed per minute.
type TokenLimiter struct {
	limiter *rate.Limiter
	limit   int
}

// NewTokenLimiter allows tokensPerMinute tokens per minute with a full burst.
// A non-positive value disables limiting.
func NewTokenLimiter(tokensPerMinute int) *TokenLimiter {
	if tokensPerMinute <= 0 {
		return &TokenLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	perToken := time.Minute / time.Duration(tokensPerMinute)
	return &TokenLimiter{
		limiter: rate.NewLimiter(rate.Every(perToken), tokensPerMinute),
		limit:   tokensPerMinute,
	}
}

// Wait blocks until n tokens are available. Requests larger than the burst are
// clamped so a single oversized call cannot deadlock.
func (t *TokenLimiter) Wait(ctx context.Context, n int) error {
	if t.limit == 0 || n <= 0 {
		return nil
	}
	if n > t.limit {
		n = t.limit
	}
	if err := t.limiter.WaitN(ctx, n); err != nil {
		return fmt.Errorf("token limiter: %w", err)
	}
	return nil
}

// GetRemaining reports the tokens currently available.
func (t *TokenLimiter) GetRemaining() int {
	if t.limit == 0 {
		return -1
	}
	return int(t.limiter.Tokens())
}
