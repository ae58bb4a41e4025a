package consumer

import (
	"context"
	"sync"
	"time"

	"yt-stock-insight/internal/executor/config"
	"yt-stock-insight/internal/executor/service"
	"yt-stock-insight/pkg/common"
	"yt-stock-insight/pkg/logger"
	pkgredis "yt-stock-insight/pkg/redis"
	"yt-stock-insight/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// RedisConsumer manages the consumption of insight events from a Redis stream.
type RedisConsumer struct {
	cfg                 *config.Config
	redisClient         *redis.Client
	notificationService service.NotificationService
	logger              *logger.Logger
	stopChan            chan struct{}
	stopOnce            sync.Once
	wg                  sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(
	cfg *config.Config,
	redisClient *redis.Client,
	notificationService service.NotificationService,
	log *logger.Logger,
) *RedisConsumer {
	return &RedisConsumer{
		cfg:                 cfg,
		redisClient:         redisClient,
		notificationService: notificationService,
		logger:              log,
		stopChan:            make(chan struct{}),
	}
}

// Start creates the consumer group if needed and begins processing.
func (c *RedisConsumer) Start(ctx context.Context) error {
	if err := pkgredis.EnsureGroup(ctx, c.redisClient, common.RedisStreamInsightPersisted, common.RedisStreamGroup); err != nil {
		return err
	}
	timeout := c.cfg.Notification.StreamTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retryInterval := c.cfg.Notification.RetryInterval
	if retryInterval <= 0 {
		retryInterval = time.Minute
	}
	c.logger.Info("Redis consumer started")
	c.RegisterStreamHandler(ctx, c.notificationService.ProcessInsight, common.RedisStreamInsightPersisted, timeout)
	c.RegisterTickerHandler(ctx, c.notificationService.ProcessRetries, retryInterval, timeout, common.RedisStreamInsightPersisted+"-retry")
	return nil
}

func (c *RedisConsumer) RegisterStreamHandler(ctx context.Context, fn func(ctx context.Context), streamName string, timeout time.Duration) {
	c.logger.Info("Registering stream handler", logger.StringField("stream", streamName))
	c.wg.Add(1)
	utils.GoSafe(c.logger, func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Redis consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Redis consumer stopping")
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			}
		}
	})
}

// RegisterTickerHandler runs fn every interval until the consumer stops.
func (c *RedisConsumer) RegisterTickerHandler(ctx context.Context, fn func(ctx context.Context), interval time.Duration, timeout time.Duration, name string) {
	c.logger.Info("Registering ticker handler",
		logger.StringField("name", name),
		logger.DurationField("interval", interval),
		logger.DurationField("timeout", timeout))
	c.wg.Add(1)
	utils.GoSafe(c.logger, func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			case <-ctx.Done():
				c.logger.Info("Ticker handler stopping due to context cancellation", logger.StringField("name", name))
				return
			case <-c.stopChan:
				c.logger.Info("Ticker handler stopping", logger.StringField("name", name))
				return
			}
		}
	})
}

// Stop gracefully shuts down the consumer.
func (c *RedisConsumer) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
