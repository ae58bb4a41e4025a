package service

import (
	"context"
	"encoding/json"
	"fmt"

	"yt-stock-insight/internal/executor/dto"
	"yt-stock-insight/pkg/common"

	"github.com/redis/go-redis/v9"
)

// InsightPublisher announces persisted insights.
type InsightPublisher interface {
	Publish(ctx context.Context, event dto.InsightEvent) error
}

// NewRedisInsightPublisher appends events to the persisted-insight stream.
func NewRedisInsightPublisher(redisClient *redis.Client, maxLen int64) InsightPublisher {
	return &redisInsightPublisher{redisClient: redisClient, maxLen: maxLen}
}

type redisInsightPublisher struct {
	redisClient *redis.Client
	maxLen      int64
}

func (p *redisInsightPublisher) Publish(ctx context.Context, event dto.InsightEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal insight event: %w", err)
	}
	args := &redis.XAddArgs{
		Stream: common.RedisStreamInsightPersisted,
		Values: map[string]interface{}{"payload": string(payload)},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	if err := p.redisClient.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish insight event: %w", err)
	}
	return nil
}

// NoopInsightPublisher drops every event.
type NoopInsightPublisher struct{}

func (NoopInsightPublisher) Publish(context.Context, dto.InsightEvent) error { return nil }
