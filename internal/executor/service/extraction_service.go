package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"yt-stock-insight/internal/entity"
	"yt-stock-insight/internal/executor/dto"
	"yt-stock-insight/internal/executor/repository"
	"yt-stock-insight/internal/insight"
	"yt-stock-insight/internal/stock"
	"yt-stock-insight/pkg/common"
	"yt-stock-insight/pkg/logger"
	"yt-stock-insight/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// VideoState is a step of the per-video extraction pipeline.
type VideoState string

const (
	StateFetched           VideoState = "FETCHED"
	StateDateFiltered      VideoState = "DATE_FILTERED"
	StateDedupChecked      VideoState = "DEDUP_CHECKED"
	StateTopicFiltered     VideoState = "TOPIC_FILTERED"
	StateTranscriptFetched VideoState = "TRANSCRIPT_FETCHED"
	StateSummarized        VideoState = "SUMMARIZED"
	StateExtracted         VideoState = "EXTRACTED"
	StateNormalized        VideoState = "NORMALIZED"
	StatePersisted         VideoState = "PERSISTED"
	StateSkipped           VideoState = "SKIPPED"
	StateFailed            VideoState = "FAILED"
)

// ExtractionService drives videos one at a time through the extraction pipeline.
type ExtractionService interface {
	ProcessChannel(ctx context.Context, channel string) (*dto.ChannelExtractionResult, error)
	ProcessVideo(ctx context.Context, videoURL string) dto.VideoOutcome
}

// NewExtractionService creates a new ExtractionService.
func NewExtractionService(
	policy ExtractionPolicy,
	matcher *stock.Matcher,
	videoSource repository.VideoSourceRepository,
	transcriptRepo repository.TranscriptRepository,
	summarizer repository.SummarizerRepository,
	extractor repository.InsightExtractorRepository,
	insightRepo repository.VideoInsightRepository,
	publisher InsightPublisher,
	log *logger.Logger,
) ExtractionService {
	if publisher == nil {
		publisher = NoopInsightPublisher{}
	}
	return &extractionService{
		policy:         policy,
		matcher:        matcher,
		videoSource:    videoSource,
		transcriptRepo: transcriptRepo,
		summarizer:     summarizer,
		extractor:      extractor,
		insightRepo:    insightRepo,
		publisher:      publisher,
		logger:         log,
	}
}

type extractionService struct {
	policy         ExtractionPolicy
	matcher        *stock.Matcher
	videoSource    repository.VideoSourceRepository
	transcriptRepo repository.TranscriptRepository
	summarizer     repository.SummarizerRepository
	extractor      repository.InsightExtractorRepository
	insightRepo    repository.VideoInsightRepository
	publisher      InsightPublisher
	logger         *logger.Logger
}

// ProcessChannel lists the channel and processes every video sequentially.
// Only a failure to list the channel is returned as an error.
func (s *extractionService) ProcessChannel(ctx context.Context, channel string) (*dto.ChannelExtractionResult, error) {
	runID := uuid.NewString()
	log := s.logger.With(logger.StringField("run_id", runID), logger.StringField("channel", channel))
	started := time.Now()

	listing, err := s.videoSource.ListChannel(ctx, channel)
	if err != nil {
		log.Error("Failed to list channel", logger.ErrorField(err))
		return nil, err
	}

	result := &dto.ChannelExtractionResult{
		RunID:     runID,
		Channel:   listing.Title,
		Outcomes:  []dto.VideoOutcome{},
		StartedAt: started,
	}

	log.Info("Processing channel videos", logger.IntField("videos", len(listing.Videos)))
	for i, ref := range listing.Videos {
		if !utils.ShouldContinue(ctx, log) {
			break
		}
		if s.policy.MaxVideos > 0 && i >= s.policy.MaxVideos {
			log.Info("Reached max videos for this run", logger.IntField("max_videos", s.policy.MaxVideos))
			break
		}

		outcome := s.processVideo(ctx, log, ref.URL)
		result.Outcomes = append(result.Outcomes, outcome)
		result.Total++
		switch VideoState(outcome.Status) {
		case StatePersisted:
			result.Persisted++
		case StateSkipped:
			result.Skipped++
		default:
			result.Failed++
		}

		if s.policy.DelayInterval > 0 && i < len(listing.Videos)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(s.policy.DelayInterval):
			}
		}
	}

	result.Duration = time.Since(started).Round(time.Millisecond).String()
	log.Info("Channel processed",
		logger.IntField("total", result.Total),
		logger.IntField("persisted", result.Persisted),
		logger.IntField("skipped", result.Skipped),
		logger.IntField("failed", result.Failed),
	)
	return result, nil
}

func (s *extractionService) ProcessVideo(ctx context.Context, videoURL string) dto.VideoOutcome {
	return s.processVideo(ctx, s.logger.With(logger.StringField("run_id", uuid.NewString())), videoURL)
}

func (s *extractionService) processVideo(ctx context.Context, log *logger.Logger, videoURL string) dto.VideoOutcome {
	log = log.With(logger.StringField("video_url", videoURL))
	outcome := dto.VideoOutcome{VideoURL: videoURL}

	skip := func(state VideoState, reason string) dto.VideoOutcome {
		outcome.State = string(state)
		outcome.Status = string(StateSkipped)
		outcome.Reason = reason
		log.Info("Skipping video", logger.StringField("state", string(state)), logger.StringField("reason", reason), logger.StringField("title", outcome.Title))
		return outcome
	}
	fail := func(state VideoState, reason string, err error) dto.VideoOutcome {
		outcome.State = string(state)
		outcome.Status = string(StateFailed)
		outcome.Reason = reason
		log.Error("Video failed", logger.StringField("state", string(state)), logger.StringField("reason", reason), logger.StringField("title", outcome.Title), logger.ErrorField(err))
		return outcome
	}

	// FETCHED
	video, err := s.videoSource.GetVideo(ctx, videoURL)
	if err != nil {
		log.Warn("No metadata for video", logger.ErrorField(err))
		return skip(StateFetched, "no metadata: "+err.Error())
	}
	outcome.Title = video.Title
	outcome.VideoURL = video.URL

	// DATE_FILTERED
	if video.UploadDate.IsZero() {
		return skip(StateDateFiltered, "upload date unknown")
	}
	uploaded := s.policy.EffectiveUploadDate(utils.DateOnly(video.UploadDate))
	if !s.policy.InRange(uploaded) {
		return skip(StateDateFiltered, "out of date range: "+uploaded.Format(common.ISODateLayout))
	}

	// DEDUP_CHECKED
	exists, err := s.insightRepo.ExistsByURL(ctx, video.URL)
	if err != nil {
		return fail(StateDedupChecked, "dedup check failed", err)
	}
	if exists {
		return skip(StateDedupChecked, "already processed")
	}

	// TOPIC_FILTERED
	matched := s.matcher.Match(video.Title)
	if reason := s.policy.TopicDecision(matched); reason != "" {
		return skip(StateTopicFiltered, reason)
	}

	// TRANSCRIPT_FETCHED
	transcript := s.transcriptRepo.GetTranscript(ctx, video.ID)
	if transcript.Status != repository.TranscriptAvailable {
		reason := "transcript " + strings.ToLower(string(transcript.Status))
		switch transcript.Status {
		case repository.TranscriptDisabled:
			log.Info("Transcript disabled", logger.ErrorField(transcript.Err))
		case repository.TranscriptNotFound:
			log.Info("Transcript not found", logger.ErrorField(transcript.Err))
		default:
			log.Warn("Transcript fetch failed", logger.ErrorField(transcript.Err))
		}
		return skip(StateTranscriptFetched, reason)
	}

	// SUMMARIZED
	summary, err := s.summarizer.Summarize(ctx, joinSegments(transcript.Segments))
	if err != nil {
		return fail(StateSummarized, "summarization failed", err)
	}
	if strings.TrimSpace(summary) == "" {
		return skip(StateSummarized, "empty summary")
	}

	// EXTRACTED
	envelope, err := s.extractor.ExtractInsight(ctx, video.Title, summary)
	if err != nil {
		if errors.Is(err, repository.ErrEmptyChoices) {
			return fail(StateExtracted, "LLM response has no choices", err)
		}
		log.Error("LLM request failed", logger.ErrorField(err))
		return skip(StateExtracted, "LLM request failed: "+err.Error())
	}
	switch envelope.Kind {
	case insight.KindEmpty:
		return skip(StateExtracted, "empty LLM response")
	case insight.KindMalformed:
		return fail(StateExtracted, "malformed LLM response: "+envelope.Reason, nil)
	}

	// NORMALIZED
	normalized := insight.Normalize(envelope.Fields)

	// PERSISTED
	doc := &entity.VideoInsight{
		VideoID:           video.ID,
		VideoTitle:        video.Title,
		UploadDate:        uploaded.Format(common.DocumentDateLayout),
		UploadedAt:        uploaded,
		VideoURL:          video.URL,
		ChannelName:       video.ChannelName,
		StockNames:        matched,
		Direction:         normalized.Direction,
		FinancialInsights: datatypes.NewJSONType(normalized),
	}
	if err := s.insightRepo.Create(ctx, doc); err != nil {
		if errors.Is(err, repository.ErrVideoInsightExists) {
			return skip(StatePersisted, "already processed")
		}
		return fail(StatePersisted, "persist failed", err)
	}

	outcome.State = string(StatePersisted)
	outcome.Status = string(StatePersisted)
	log.Info("Stored video insight",
		logger.StringField("title", video.Title),
		logger.StringField("direction", normalized.Direction),
		logger.StringField("narrative", normalized.Narrative),
	)

	if err := s.publisher.Publish(ctx, newInsightEvent(doc, normalized)); err != nil {
		log.Warn("Failed to publish insight event", logger.ErrorField(err))
	}
	return outcome
}

func joinSegments(segments []entity.TranscriptSegment) string {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = seg.Text
	}
	return strings.Join(parts, " ")
}

func newInsightEvent(doc *entity.VideoInsight, fi entity.FinancialInsight) dto.InsightEvent {
	event := dto.InsightEvent{
		VideoTitle: doc.VideoTitle,
		VideoURL:   doc.VideoURL,
		UploadDate: doc.UploadDate,
		Symbols:    doc.StockNames,
		Narrative:  fi.Narrative,
		Direction:  fi.Direction,
		Support:    fi.Support,
		Resistance: fi.Resistance,
		BuyArea:    make([][2]float64, len(fi.BuyArea)),
		SellArea:   make([][2]float64, len(fi.SellArea)),
	}
	for i, r := range fi.BuyArea {
		event.BuyArea[i] = r
	}
	for i, r := range fi.SellArea {
		event.SellArea[i] = r
	}
	return event
}
