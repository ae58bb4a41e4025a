package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"yt-stock-insight/internal/executor/config"
	"yt-stock-insight/internal/executor/dto"
	"yt-stock-insight/pkg/common"
	"yt-stock-insight/pkg/logger"
	"yt-stock-insight/pkg/telegram"

	"github.com/redis/go-redis/v9"
)

var errMalformedEvent = errors.New("malformed insight event")

// NotificationService forwards persisted insights from the stream to Telegram.
type NotificationService interface {
	ProcessInsight(ctx context.Context)
	ProcessRetries(ctx context.Context)
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(redisClient *redis.Client, notifier telegram.Notifier, cfg config.Notification, log *logger.Logger) NotificationService {
	if cfg.MaxIdle < 0 {
		cfg.MaxIdle = 0
	}
	if cfg.MaxDeliveries <= 0 {
		cfg.MaxDeliveries = 5
	}
	return &notificationService{
		redisClient: redisClient,
		notifier:    notifier,
		cfg:         cfg,
		logger:      log,
	}
}

type notificationService struct {
	redisClient *redis.Client
	notifier    telegram.Notifier
	cfg         config.Notification
	logger      *logger.Logger
}

// ProcessInsight reads one new event and sends it. A message is acknowledged
// once sent, or when its payload cannot be decoded. A failed send stays
// pending for ProcessRetries.
func (s *notificationService) ProcessInsight(ctx context.Context) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamInsightPersisted, ">"},
		Count:    1,
		Block:    2 * time.Second,
	}).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return
		}
		s.logger.Error("Failed to read from stream", logger.ErrorField(err))
		return
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]
	if err := s.deliver(message); err != nil {
		if errors.Is(err, errMalformedEvent) {
			s.ackNDel(ctx, message.ID)
		}
		return
	}
	s.ackNDel(ctx, message.ID)
}

// ProcessRetries claims one entry that has been pending longer than MaxIdle
// and sends it again. Entries delivered more than MaxDeliveries times are
// moved to the dead-letter stream.
func (s *notificationService) ProcessRetries(ctx context.Context) {
	msgs, _, err := s.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   common.RedisStreamInsightPersisted,
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer + "-retry",
		MinIdle:  s.cfg.MaxIdle,
		Start:    "0",
		Count:    1,
	}).Result()
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("Failed to claim pending insight event", logger.ErrorField(err))
		}
		return
	}
	if len(msgs) == 0 {
		s.logger.Debug("Retry no pending messages found", logger.StringField("stream", common.RedisStreamInsightPersisted))
		return
	}

	msg := msgs[0]
	pendingInfo, err := s.redisClient.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: common.RedisStreamInsightPersisted,
		Group:  common.RedisStreamGroup,
		Start:  msg.ID,
		End:    msg.ID,
		Count:  1,
	}).Result()
	if err != nil {
		s.logger.Error("Failed to get pending info", logger.ErrorField(err), logger.StringField("message_id", msg.ID))
		return
	}
	if len(pendingInfo) == 0 {
		s.logger.Warn("pending msg not found, but exist on xautoclaim", logger.StringField("message_id", msg.ID))
		return
	}

	deliveries := pendingInfo[0].RetryCount
	if deliveries > int64(s.cfg.MaxDeliveries) {
		s.logger.Error("pending msg delivery count exceeded",
			logger.StringField("message_id", msg.ID),
			logger.IntField("deliveries", int(deliveries)),
			logger.IntField("max_deliveries", s.cfg.MaxDeliveries),
		)
		if err := s.deadLetter(ctx, msg, deliveries); err != nil {
			s.logger.Error("Failed to dead-letter insight event", logger.ErrorField(err), logger.StringField("message_id", msg.ID))
			return
		}
		s.ackNDel(ctx, msg.ID)
		return
	}

	if err := s.deliver(msg); err != nil {
		if errors.Is(err, errMalformedEvent) {
			s.ackNDel(ctx, msg.ID)
		}
		return
	}
	s.ackNDel(ctx, msg.ID)
	s.logger.Info("Retry insight notification sent", logger.StringField("message_id", msg.ID), logger.IntField("deliveries", int(deliveries)))
}

func (s *notificationService) deliver(message redis.XMessage) error {
	payload, ok := message.Values["payload"].(string)
	if !ok {
		s.logger.Error("field 'payload' not found or not a string in stream message", logger.StringField("message_id", message.ID))
		return errMalformedEvent
	}

	var event dto.InsightEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		s.logger.Error("Failed to unmarshal insight event", logger.ErrorField(err), logger.StringField("message_id", message.ID))
		return fmt.Errorf("%w: %v", errMalformedEvent, err)
	}

	if err := s.notifier.SendMessage(telegram.FormatInsightEventForTelegram(event)); err != nil {
		s.logger.Error("Failed to send insight notification", logger.ErrorField(err), logger.StringField("video_url", event.VideoURL))
		return err
	}
	s.logger.Info("Insight notification sent", logger.StringField("video_url", event.VideoURL))
	return nil
}

func (s *notificationService) deadLetter(ctx context.Context, msg redis.XMessage, deliveries int64) error {
	payload, _ := msg.Values["payload"].(string)
	return s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamInsightDeadLetter,
		Values: map[string]interface{}{
			"payload":    payload,
			"message_id": msg.ID,
			"deliveries": deliveries,
		},
	}).Err()
}

func (s *notificationService) ackNDel(ctx context.Context, id string) {
	if err := s.redisClient.XAck(ctx, common.RedisStreamInsightPersisted, common.RedisStreamGroup, id).Err(); err != nil {
		s.logger.Error("Failed to acknowledge message", logger.ErrorField(err), logger.StringField("message_id", id))
		return
	}
	if err := s.redisClient.XDel(ctx, common.RedisStreamInsightPersisted, id).Err(); err != nil {
		s.logger.Error("Failed to delete message", logger.ErrorField(err), logger.StringField("message_id", id))
	}
}
