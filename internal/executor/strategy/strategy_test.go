package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"yt-stock-insight/internal/entity"
	"yt-stock-insight/internal/executor/dto"
	"yt-stock-insight/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessor struct {
	channels []string
	videos   []string
	failOn   string
}

func (f *fakeProcessor) ProcessChannel(ctx context.Context, channel string) (*dto.ChannelExtractionResult, error) {
	f.channels = append(f.channels, channel)
	if channel == f.failOn {
		return nil, errors.New("channel not found")
	}
	return &dto.ChannelExtractionResult{
		Channel:   channel,
		Total:     2,
		Persisted: 1,
		Failed:    1,
		Outcomes: []dto.VideoOutcome{
			{Title: "Tesla levels", Status: "PERSISTED"},
			{Title: "Tesla broken", Status: "FAILED", Reason: "malformed LLM response"},
		},
	}, nil
}

func (f *fakeProcessor) ProcessVideo(ctx context.Context, videoURL string) dto.VideoOutcome {
	f.videos = append(f.videos, videoURL)
	return dto.VideoOutcome{VideoURL: videoURL, Status: "SKIPPED"}
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) SendMessage(text string) error {
	f.messages = append(f.messages, text)
	return nil
}

func job(t entity.JobType, payload string) *entity.Job {
	return &entity.Job{Name: "test", Type: t, Payload: json.RawMessage(payload)}
}

func TestChannelInsightExtractionStrategy_Execute(t *testing.T) {
	processor := &fakeProcessor{failOn: "UCbad"}
	notifier := &fakeNotifier{}
	s := NewChannelInsightExtractionStrategy(processor, notifier, logger.NewNop())
	assert.Equal(t, entity.JobTypeChannelInsightExtraction, s.GetType())

	out, err := s.Execute(context.Background(), job(s.GetType(),
		`{"channels":["UCgood","UCbad"],"videos":["https://youtu.be/x1"],"notify":true}`))
	require.NoError(t, err)

	var result channelInsightOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Channels, 2)
	assert.Equal(t, StatusSuccess, result.Channels[0].Status)
	assert.Equal(t, StatusFailed, result.Channels[1].Status)
	assert.Equal(t, "channel not found", result.Channels[1].Error)
	require.Len(t, result.Videos, 1)
	assert.Equal(t, []string{"https://youtu.be/x1"}, processor.videos)

	require.Len(t, notifier.messages, 2)
	assert.Contains(t, notifier.messages[0], "UCgood")
	assert.Contains(t, notifier.messages[0], "malformed LLM response")
	assert.Contains(t, notifier.messages[1], "[ERROR ALERT]")
	assert.Contains(t, notifier.messages[1], "channel not found")
	assert.Contains(t, notifier.messages[1], "UCbad")
}

func TestChannelInsightExtractionStrategy_InvalidPayload(t *testing.T) {
	s := NewChannelInsightExtractionStrategy(&fakeProcessor{}, nil, logger.NewNop())

	_, err := s.Execute(context.Background(), job(s.GetType(), `{"channels":`))
	assert.Error(t, err)

	_, err = s.Execute(context.Background(), job(s.GetType(), `{}`))
	assert.Error(t, err)
}

type fakeScraper struct {
	written int
	err     error
}

func (f *fakeScraper) ScrapeChannel(ctx context.Context, channel string) (*dto.ScrapeResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ScrapeResult{Channel: channel, Written: f.written}, nil
}

func TestChannelScrapeStrategy_Execute(t *testing.T) {
	tests := []struct {
		name       string
		scraper    *fakeScraper
		wantStatus string
	}{
		{name: "new videos", scraper: &fakeScraper{written: 3}, wantStatus: StatusSuccess},
		{name: "nothing new", scraper: &fakeScraper{}, wantStatus: StatusSkipped},
		{name: "listing fails", scraper: &fakeScraper{err: errors.New("boom")}, wantStatus: StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewChannelScrapeStrategy(tt.scraper, logger.NewNop())
			out, err := s.Execute(context.Background(), job(entity.JobTypeChannelScrape, `{"channels":["UC1"]}`))
			require.NoError(t, err)

			var results []channelScrapeResult
			require.NoError(t, json.Unmarshal([]byte(out), &results))
			require.Len(t, results, 1)
			assert.Equal(t, tt.wantStatus, results[0].Status)
		})
	}
}

type fakeClusterer struct {
	outputDirs []string
}

func (f *fakeClusterer) ClusterFile(ctx context.Context, csvPath, channel, outputDir string) (*dto.ClusteringResult, error) {
	f.outputDirs = append(f.outputDirs, outputDir)
	if csvPath == "missing.csv" {
		return nil, errors.New("no such file")
	}
	return &dto.ClusteringResult{Channel: channel, Rows: 4}, nil
}

func TestVideoClusteringStrategy_Execute(t *testing.T) {
	clusterer := &fakeClusterer{}
	s := NewVideoClusteringStrategy(clusterer, "clusters", logger.NewNop())

	out, err := s.Execute(context.Background(), job(entity.JobTypeVideoClustering, `{"files":["a.csv","missing.csv"],"channel":"stockmoe"}`))
	require.NoError(t, err)

	var results []videoClusteringResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, StatusFailed, results[1].Status)
	assert.Equal(t, []string{"clusters", "clusters"}, clusterer.outputDirs)

	_, err = s.Execute(context.Background(), job(entity.JobTypeVideoClustering, `{"files":[]}`))
	assert.Error(t, err)
}
