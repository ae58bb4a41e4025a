package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"yt-stock-insight/internal/entity"
	"yt-stock-insight/internal/executor/dto"
	"yt-stock-insight/pkg/logger"
	"yt-stock-insight/pkg/telegram"
	"yt-stock-insight/pkg/utils"
)

// ChannelProcessor runs the extraction pipeline over channels and single videos.
type ChannelProcessor interface {
	ProcessChannel(ctx context.Context, channel string) (*dto.ChannelExtractionResult, error)
	ProcessVideo(ctx context.Context, videoURL string) dto.VideoOutcome
}

// ChannelInsightExtractionPayload is the job payload.
type ChannelInsightExtractionPayload struct {
	Channels []string `json:"channels"`
	Videos   []string `json:"videos"`
	Notify   bool     `json:"notify"`
}

type channelInsightResult struct {
	Channel string                       `json:"channel"`
	Status  string                       `json:"status"`
	Error   string                       `json:"error,omitempty"`
	Result  *dto.ChannelExtractionResult `json:"result,omitempty"`
}

type channelInsightOutput struct {
	Channels []channelInsightResult `json:"channels"`
	Videos   []dto.VideoOutcome     `json:"videos"`
}

// ChannelInsightExtractionStrategy extracts financial insights from channel videos.
type ChannelInsightExtractionStrategy struct {
	processor ChannelProcessor
	notifier  telegram.Notifier
	logger    *logger.Logger
}

// NewChannelInsightExtractionStrategy creates a new ChannelInsightExtractionStrategy.
// notifier may be nil.
func NewChannelInsightExtractionStrategy(processor ChannelProcessor, notifier telegram.Notifier, log *logger.Logger) JobExecutionStrategy {
	return &ChannelInsightExtractionStrategy{
		processor: processor,
		notifier:  notifier,
		logger:    log,
	}
}

// GetType returns the job type this strategy handles.
func (s *ChannelInsightExtractionStrategy) GetType() entity.JobType {
	return entity.JobTypeChannelInsightExtraction
}

// Execute processes every channel then every standalone video. A channel that
// cannot be listed is reported and the job moves on.
func (s *ChannelInsightExtractionStrategy) Execute(ctx context.Context, job *entity.Job) (string, error) {
	var payload ChannelInsightExtractionPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return "", fmt.Errorf("failed to unmarshal job payload: %w", err)
	}
	if len(payload.Channels) == 0 && len(payload.Videos) == 0 {
		return "", fmt.Errorf("payload must contain at least one channel or video")
	}

	output := channelInsightOutput{
		Channels: []channelInsightResult{},
		Videos:   []dto.VideoOutcome{},
	}

	for _, channel := range payload.Channels {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		res, err := s.processor.ProcessChannel(ctx, channel)
		if err != nil {
			s.logger.Error("Failed to process channel", logger.StringField("channel", channel), logger.ErrorField(err))
			output.Channels = append(output.Channels, channelInsightResult{
				Channel: channel,
				Status:  StatusFailed,
				Error:   err.Error(),
			})
			if payload.Notify {
				s.notifyFailure(channel, err)
			}
			continue
		}
		output.Channels = append(output.Channels, channelInsightResult{
			Channel: channel,
			Status:  StatusSuccess,
			Result:  res,
		})
		if payload.Notify {
			s.notifyRun(res)
		}
	}

	for _, videoURL := range payload.Videos {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		output.Videos = append(output.Videos, s.processor.ProcessVideo(ctx, videoURL))
	}

	b, err := json.Marshal(output)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(b), nil
}

func (s *ChannelInsightExtractionStrategy) notifyRun(res *dto.ChannelExtractionResult) {
	if s.notifier == nil {
		return
	}
	for _, msg := range telegram.FormatChannelRunForTelegram(res) {
		if err := s.notifier.SendMessage(msg); err != nil {
			s.logger.Warn("Failed to send channel run summary", logger.StringField("channel", res.Channel), logger.ErrorField(err))
			return
		}
	}
}

func (s *ChannelInsightExtractionStrategy) notifyFailure(channel string, cause error) {
	if s.notifier == nil {
		return
	}
	msg := telegram.FormatErrorAlertMessage(time.Now(), string(s.GetType()), cause.Error(), channel)
	if err := s.notifier.SendMessage(msg); err != nil {
		s.logger.Warn("Failed to send error alert", logger.StringField("channel", channel), logger.ErrorField(err))
	}
}
