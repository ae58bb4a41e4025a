package strategy

import (
	"context"
	"encoding/json"
	"fmt"

	"yt-stock-insight/internal/entity"
	"yt-stock-insight/internal/executor/dto"
	"yt-stock-insight/pkg/logger"
	"yt-stock-insight/pkg/utils"
)

// ChannelScraper writes channel snapshot CSVs.
type ChannelScraper interface {
	ScrapeChannel(ctx context.Context, channel string) (*dto.ScrapeResult, error)
}

// ChannelScrapePayload is the job payload.
type ChannelScrapePayload struct {
	Channels []string `json:"channels"`
}

type channelScrapeResult struct {
	Channel string            `json:"channel"`
	Status  string            `json:"status"`
	Error   string            `json:"error,omitempty"`
	Result  *dto.ScrapeResult `json:"result,omitempty"`
}

// ChannelScrapeStrategy snapshots channel video metadata to CSV.
type ChannelScrapeStrategy struct {
	scraper ChannelScraper
	logger  *logger.Logger
}

// NewChannelScrapeStrategy creates a new ChannelScrapeStrategy.
func NewChannelScrapeStrategy(scraper ChannelScraper, log *logger.Logger) JobExecutionStrategy {
	return &ChannelScrapeStrategy{scraper: scraper, logger: log}
}

// GetType returns the job type this strategy handles.
func (s *ChannelScrapeStrategy) GetType() entity.JobType {
	return entity.JobTypeChannelScrape
}

// Execute scrapes each channel in turn.
func (s *ChannelScrapeStrategy) Execute(ctx context.Context, job *entity.Job) (string, error) {
	var payload ChannelScrapePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return "", fmt.Errorf("failed to unmarshal job payload: %w", err)
	}
	if len(payload.Channels) == 0 {
		return "", fmt.Errorf("payload must contain at least one channel")
	}

	results := make([]channelScrapeResult, 0, len(payload.Channels))
	for _, channel := range payload.Channels {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		res, err := s.scraper.ScrapeChannel(ctx, channel)
		if err != nil {
			s.logger.Error("Failed to scrape channel", logger.StringField("channel", channel), logger.ErrorField(err))
			results = append(results, channelScrapeResult{Channel: channel, Status: StatusFailed, Error: err.Error()})
			continue
		}
		status := StatusSuccess
		if res.Written == 0 {
			status = StatusSkipped
		}
		results = append(results, channelScrapeResult{Channel: channel, Status: status, Result: res})
	}

	b, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(b), nil
}
