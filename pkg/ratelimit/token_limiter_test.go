package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenLimiter_WaitWithinBurst(t *testing.T) {
	l := NewTokenLimiter(600)
	require.NoError(t, l.Wait(context.Background(), 100))
	assert.InDelta(t, 500, l.GetRemaining(), 2)
}

func TestTokenLimiter_ClampsOversizedRequest(t *testing.T) {
	l := NewTokenLimiter(10)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, l.Wait(ctx, 1000))
}

func TestTokenLimiter_Disabled(t *testing.T) {
	l := NewTokenLimiter(0)
	require.NoError(t, l.Wait(context.Background(), 1_000_000))
	assert.Equal(t, -1, l.GetRemaining())
}

func TestTokenLimiter_ContextCancelled(t *testing.T) {
	l := NewTokenLimiter(60)
	require.NoError(t, l.Wait(context.Background(), 60))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, l.Wait(ctx, 30))
}
