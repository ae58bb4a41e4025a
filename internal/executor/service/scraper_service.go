package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"yt-stock-insight/internal/entity"
	"yt-stock-insight/internal/executor/config"
	"yt-stock-insight/internal/executor/dto"
	"yt-stock-insight/internal/executor/repository"
	"yt-stock-insight/pkg/common"
	"yt-stock-insight/pkg/logger"
	"yt-stock-insight/pkg/utils"
)

const progressHeader = "Processed URL"

// SnapshotHeader is the column layout of a channel snapshot CSV.
var SnapshotHeader = []string{
	"Video ID", "Title", "URL", "Duration", "Uploader", "Channel Name",
	"Upload Date", "View Count", "Like Count", "Description", "Channel URL", "Thumbnail",
}

// ScraperService writes a resumable CSV snapshot of a channel's videos.
type ScraperService interface {
	ScrapeChannel(ctx context.Context, channel string) (*dto.ScrapeResult, error)
}

type scraperService struct {
	cfg         config.Scraper
	videoSource repository.VideoSourceRepository
	logger      *logger.Logger
}

// NewScraperService creates a new ScraperService.
func NewScraperService(cfg config.Scraper, videoSource repository.VideoSourceRepository, log *logger.Logger) ScraperService {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "results"
	}
	if cfg.ProgressDir == "" {
		cfg.ProgressDir = "."
	}
	return &scraperService{
		cfg:         cfg,
		videoSource: videoSource,
		logger:      log,
	}
}

// ScrapeChannel lists the channel, then fetches details for every video not
// yet recorded in the progress file. Each written row is recorded in the
// progress file right away so an interrupted scrape resumes where it stopped.
func (s *scraperService) ScrapeChannel(ctx context.Context, channel string) (*dto.ScrapeResult, error) {
	listing, err := s.videoSource.ListChannel(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("failed to list channel %s: %w", channel, err)
	}
	title := listing.Title
	if title == "" {
		title = listing.ID
	}
	s.logger.Info("Scraping channel",
		logger.StringField("channel", title),
		logger.IntField("videos", len(listing.Videos)),
	)

	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := os.MkdirAll(s.cfg.ProgressDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create progress dir: %w", err)
	}

	progressPath := filepath.Join(s.cfg.ProgressDir, utils.SanitizeFilename(listing.ID)+"_progress.csv")
	outputPath := filepath.Join(s.cfg.OutputDir, utils.SanitizeFilename(title)+".csv")

	processed, err := loadProgress(progressPath)
	if err != nil {
		return nil, err
	}

	output, err := openAppendCSV(outputPath, SnapshotHeader)
	if err != nil {
		return nil, err
	}
	defer output.Close()
	progress, err := openAppendCSV(progressPath, []string{progressHeader})
	if err != nil {
		return nil, err
	}
	defer progress.Close()

	result := &dto.ScrapeResult{
		Channel:    title,
		OutputFile: outputPath,
		FailedURLs: []string{},
	}

	for _, ref := range listing.Videos {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		if processed[ref.URL] {
			result.Resumed++
			continue
		}

		// Retries happen inside the video source.
		video, err := s.videoSource.GetVideo(ctx, ref.URL)
		if err != nil {
			s.logger.Error("Failed to fetch video details",
				logger.StringField("url", ref.URL),
				logger.ErrorField(err),
			)
			result.FailedURLs = append(result.FailedURLs, ref.URL)
			continue
		}
		if video.ChannelName == "" {
			video.ChannelName = title
		}

		if err := output.Write(snapshotRow(video)); err != nil {
			return result, err
		}
		if err := progress.Write([]string{ref.URL}); err != nil {
			return result, err
		}
		processed[ref.URL] = true
		result.Written++
		s.logger.Info("Processed video", logger.StringField("title", video.Title))
	}

	s.logger.Info("Channel scrape complete",
		logger.StringField("output", outputPath),
		logger.IntField("written", result.Written),
		logger.IntField("resumed", result.Resumed),
		logger.IntField("failed", len(result.FailedURLs)),
	)
	return result, nil
}

func snapshotRow(v *entity.Video) []string {
	uploadDate := ""
	if !v.UploadDate.IsZero() {
		uploadDate = v.UploadDate.Format(common.ISODateLayout)
	}
	return []string{
		v.ID,
		v.Title,
		v.URL,
		strconv.Itoa(v.Duration),
		v.Uploader,
		v.ChannelName,
		uploadDate,
		strconv.FormatInt(v.ViewCount, 10),
		strconv.FormatInt(v.LikeCount, 10),
		v.Description,
		v.ChannelURL,
		v.Thumbnail,
	}
}

func loadProgress(path string) (map[string]bool, error) {
	processed := map[string]bool{}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return processed, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open progress file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	first := true
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read progress file: %w", err)
		}
		if first {
			first = false
			if len(rec) > 0 && rec[0] == progressHeader {
				continue
			}
		}
		if len(rec) > 0 && rec[0] != "" {
			processed[rec[0]] = true
		}
	}
	return processed, nil
}

type csvAppender struct {
	file   *os.File
	writer *csv.Writer
}

func openAppendCSV(path string, header []string) (*csvAppender, error) {
	_, statErr := os.Stat(path)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	a := &csvAppender{file: f, writer: csv.NewWriter(f)}
	if errors.Is(statErr, os.ErrNotExist) {
		if err := a.Write(header); err != nil {
			f.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *csvAppender) Write(record []string) error {
	if err := a.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.file.Name(), err)
	}
	a.writer.Flush()
	return a.writer.Error()
}

func (a *csvAppender) Close() error {
	a.writer.Flush()
	return a.file.Close()
}
