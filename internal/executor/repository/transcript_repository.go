package repository

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"yt-stock-insight/internal/entity"
	"yt-stock-insight/internal/executor/config"
	"yt-stock-insight/internal/executor/dto"
	"yt-stock-insight/pkg/logger"

	"github.com/go-resty/resty/v2"
)

// TranscriptStatus is the availability of a video transcript.
type TranscriptStatus string

const (
	TranscriptAvailable      TranscriptStatus = "AVAILABLE"
	TranscriptDisabled       TranscriptStatus = "DISABLED"
	TranscriptNotFound       TranscriptStatus = "NOT_FOUND"
	TranscriptTransportError TranscriptStatus = "TRANSPORT_ERROR"
)

// TranscriptResult carries the segments when Status is TranscriptAvailable,
// and the cause otherwise.
type TranscriptResult struct {
	Status   TranscriptStatus
	Segments []entity.TranscriptSegment
	Err      error
}

// TranscriptRepository fetches timed captions of a video.
type TranscriptRepository interface {
	GetTranscript(ctx context.Context, videoID string) TranscriptResult
}

type transcriptRepository struct {
	client    *resty.Client
	baseURL   string
	languages []string
	logger    *logger.Logger
}

// NewTranscriptRepository builds a transcript source. Requests are not retried.
func NewTranscriptRepository(cfg config.YouTube, log *logger.Logger) TranscriptRepository {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultYouTubeBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	languages := cfg.Languages
	if len(languages) == 0 {
		languages = []string{"en"}
	}

	return &transcriptRepository{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", userAgent).
			SetHeader("Accept-Language", "en-US,en;q=0.9"),
		baseURL:   baseURL,
		languages: languages,
		logger:    log,
	}
}

func (r *transcriptRepository) GetTranscript(ctx context.Context, videoID string) TranscriptResult {
	watchURL := fmt.Sprintf("%s/watch?v=%s", r.baseURL, url.QueryEscape(videoID))
	resp, err := r.client.R().SetContext(ctx).Get(watchURL)
	if err != nil {
		return TranscriptResult{Status: TranscriptTransportError, Err: fmt.Errorf("watch page: %w", err)}
	}
	if resp.StatusCode() == http.StatusNotFound {
		return TranscriptResult{Status: TranscriptNotFound, Err: errors.New("video not found")}
	}
	if resp.IsError() {
		return TranscriptResult{Status: TranscriptTransportError, Err: fmt.Errorf("watch page: status %d", resp.StatusCode())}
	}

	player, err := extractPlayerResponse(resp.Body())
	if err != nil {
		return TranscriptResult{Status: TranscriptNotFound, Err: err}
	}
	if ps := player.PlayabilityStatus; ps != nil && ps.Status != "" && ps.Status != "OK" {
		return TranscriptResult{Status: TranscriptNotFound, Err: fmt.Errorf("video unplayable: %s %s", ps.Status, ps.Reason)}
	}
	if player.Captions == nil || len(player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks) == 0 {
		return TranscriptResult{Status: TranscriptDisabled, Err: errors.New("transcripts are disabled for this video")}
	}

	track, ok := pickBestTrack(player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks, r.languages)
	if !ok {
		return TranscriptResult{Status: TranscriptNotFound, Err: errors.New("no caption track can be fetched server-side")}
	}

	segments, err := r.fetchTimedText(ctx, track.BaseURL)
	if err != nil {
		return TranscriptResult{Status: TranscriptTransportError, Err: err}
	}
	if len(segments) == 0 {
		return TranscriptResult{Status: TranscriptNotFound, Err: errors.New("caption track is empty")}
	}

	r.logger.Debug("Fetched transcript",
		logger.StringField("video_id", videoID),
		logger.StringField("language", track.LanguageCode),
		logger.IntField("segments", len(segments)),
	)
	return TranscriptResult{Status: TranscriptAvailable, Segments: segments}
}

func (r *transcriptRepository) fetchTimedText(ctx context.Context, baseURL string) ([]entity.TranscriptSegment, error) {
	if strings.HasPrefix(baseURL, "/") {
		baseURL = r.baseURL + baseURL
	}
	resp, err := r.client.R().SetContext(ctx).Get(baseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch timedtext: status %d", resp.StatusCode())
	}

	var tt dto.TimedText
	if err := xml.Unmarshal(resp.Body(), &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segments := make([]entity.TranscriptSegment, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := strings.TrimSpace(html.UnescapeString(line.Text))
		if text == "" {
			continue
		}
		segments = append(segments, entity.TranscriptSegment{
			Text:     strings.Join(strings.Fields(text), " "),
			Start:    line.Start,
			Duration: line.Duration,
		})
	}
	return segments, nil
}
