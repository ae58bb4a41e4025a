package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"yt-stock-insight/internal/entity"
	"yt-stock-insight/internal/executor/config"
	"yt-stock-insight/internal/executor/dto"
	"yt-stock-insight/pkg/logger"
	"yt-stock-insight/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
)

// ErrNoMetadata is returned when a video page yields no usable metadata.
var ErrNoMetadata = errors.New("no video metadata")

// VideoSourceRepository fetches channel listings and per-video metadata.
type VideoSourceRepository interface {
	ListChannel(ctx context.Context, channel string) (*entity.Channel, error)
	GetVideo(ctx context.Context, videoURL string) (*entity.Video, error)
}

type youtubeRepository struct {
	client  *resty.Client
	baseURL string
	logger  *logger.Logger
}

// NewYouTubeRepository builds a video source. This is the only layer that
// retries: a request is sent at most 1+MaxRetries times.
func NewYouTubeRepository(cfg config.YouTube, log *logger.Logger) VideoSourceRepository {
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
	retryWait := cfg.RetryWait
	if retryWait <= 0 {
		retryWait = 2 * time.Second
	}
	jitter := cfg.RetryJitter
	if jitter < 0 {
		jitter = 0
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(retryWait*time.Duration(cfg.MaxRetries+1) + jitter).
		SetRetryAfter(linearBackoff(retryWait, jitter)).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	return &youtubeRepository{
		client:  client,
		baseURL: baseURL,
		logger:  log,
	}
}

// linearBackoff waits wait*attempt plus up to jitter before each retry.
func linearBackoff(wait, jitter time.Duration) resty.RetryAfterFunc {
	return func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
		attempt := 1
		if resp != nil && resp.Request != nil && resp.Request.Attempt > 0 {
			attempt = resp.Request.Attempt
		}
		d := wait * time.Duration(attempt)
		if jitter > 0 {
			d += time.Duration(rand.Int63n(int64(jitter)))
		}
		return d, nil
	}
}

func (r *youtubeRepository) get(ctx context.Context, target string) ([]byte, error) {
	resp, err := r.client.R().SetContext(ctx).Get(target)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch %s: status %d", target, resp.StatusCode())
	}
	return resp.Body(), nil
}

// GetVideo loads the watch page and reads its player response and meta tags.
func (r *youtubeRepository) GetVideo(ctx context.Context, videoURL string) (*entity.Video, error) {
	id := ExtractVideoID(videoURL)
	if id == "" {
		return nil, fmt.Errorf("%w: cannot find a video id in %q", ErrNoMetadata, videoURL)
	}
	watchURL := fmt.Sprintf("%s/watch?v=%s", r.baseURL, url.QueryEscape(id))

	page, err := r.get(ctx, watchURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse watch page: %w", err)
	}

	video := &entity.Video{
		ID:  id,
		URL: fmt.Sprintf("https://www.youtube.com/watch?v=%s", id),
	}
	r.fillFromMeta(doc, video)

	if player, err := extractPlayerResponse(page); err == nil {
		fillFromPlayer(player, video)
	} else {
		r.logger.Debug("Player response unavailable, using meta tags only", logger.StringField("video_id", id), logger.ErrorField(err))
	}

	if video.Title == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoMetadata, videoURL)
	}
	return video, nil
}

func (r *youtubeRepository) fillFromMeta(doc *goquery.Document, video *entity.Video) {
	meta := func(selector string) string {
		v, _ := doc.Find(selector).First().Attr("content")
		return strings.TrimSpace(v)
	}

	video.Title = meta(`meta[property="og:title"]`)
	if video.Title == "" {
		video.Title = meta(`meta[name="title"]`)
	}
	video.Description = meta(`meta[property="og:description"]`)
	video.Thumbnail = meta(`meta[property="og:image"]`)
	video.Duration = parseISODuration(meta(`meta[itemprop="duration"]`))
	video.ViewCount = atoi64(meta(`meta[itemprop="interactionCount"]`))

	for _, selector := range []string{`meta[itemprop="uploadDate"]`, `meta[itemprop="datePublished"]`} {
		if d, err := utils.ParseCompactDate(meta(selector)); err == nil {
			video.UploadDate = d
			break
		}
	}

	author := doc.Find(`span[itemprop="author"]`).First()
	if name, ok := author.Find(`link[itemprop="name"]`).Attr("content"); ok {
		video.ChannelName = name
		video.Uploader = name
	}
	if href, ok := author.Find(`link[itemprop="url"]`).Attr("href"); ok {
		video.ChannelURL = href
	}
}

func fillFromPlayer(p *dto.PlayerResponse, video *entity.Video) {
	if d := p.VideoDetails; d != nil {
		if d.Title != "" {
			video.Title = d.Title
		}
		if d.ShortDescription != "" {
			video.Description = d.ShortDescription
		}
		if n := atoi64(d.ViewCount); n > 0 {
			video.ViewCount = n
		}
		if n := atoi64(d.LengthSeconds); n > 0 {
			video.Duration = int(n)
		}
		if d.Author != "" {
			video.Uploader = d.Author
			if video.ChannelName == "" {
				video.ChannelName = d.Author
			}
		}
		if video.ChannelURL == "" && d.ChannelID != "" {
			video.ChannelURL = "https://www.youtube.com/channel/" + d.ChannelID
		}
	}
	if p.Microformat != nil && p.Microformat.PlayerMicroformatRenderer != nil {
		mf := p.Microformat.PlayerMicroformatRenderer
		for _, raw := range []string{mf.UploadDate, mf.PublishDate} {
			if d, err := utils.ParseCompactDate(raw); err == nil {
				video.UploadDate = d
				break
			}
		}
		if mf.OwnerChannelName != "" {
			video.ChannelName = mf.OwnerChannelName
		}
	}
}

// ListChannel resolves the channel id and reads the uploads feed of the channel.
// channel may be a UC... id, an @handle or a channel URL.
func (r *youtubeRepository) ListChannel(ctx context.Context, channel string) (*entity.Channel, error) {
	channelID, err := r.resolveChannelID(ctx, channel)
	if err != nil {
		return nil, err
	}

	feedURL := fmt.Sprintf("%s/feeds/videos.xml?channel_id=%s", r.baseURL, url.QueryEscape(channelID))
	body, err := r.get(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse channel feed: %w", err)
	}

	result := &entity.Channel{
		ID:     channelID,
		Title:  feed.Title,
		URL:    "https://www.youtube.com/channel/" + channelID,
		Videos: make([]entity.VideoRef, 0, len(feed.Items)),
	}
	if feed.Link != "" {
		result.URL = feed.Link
	}
	for _, item := range feed.Items {
		id := ExtractVideoID(item.Link)
		if id == "" {
			continue
		}
		result.Videos = append(result.Videos, entity.VideoRef{
			ID:    id,
			Title: item.Title,
			URL:   fmt.Sprintf("https://www.youtube.com/watch?v=%s", id),
		})
	}

	r.logger.Info("Listed channel videos",
		logger.StringField("channel_id", channelID),
		logger.StringField("title", result.Title),
		logger.IntField("videos", len(result.Videos)),
	)
	return result, nil
}

func (r *youtubeRepository) resolveChannelID(ctx context.Context, channel string) (string, error) {
	channel = strings.TrimSpace(channel)
	if isChannelID(channel) {
		return channel, nil
	}
	if i := strings.Index(channel, "/channel/"); i >= 0 {
		id := strings.SplitN(channel[i+len("/channel/"):], "/", 2)[0]
		if isChannelID(id) {
			return id, nil
		}
	}

	pageURL := channel
	if !strings.HasPrefix(channel, "http://") && !strings.HasPrefix(channel, "https://") {
		pageURL = r.baseURL + "/" + strings.TrimPrefix(channel, "/")
	}
	page, err := r.get(ctx, pageURL)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err == nil {
		if id, ok := doc.Find(`meta[itemprop="identifier"]`).First().Attr("content"); ok && isChannelID(id) {
			return id, nil
		}
		if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
			if i := strings.Index(href, "/channel/"); i >= 0 && isChannelID(href[i+len("/channel/"):]) {
				return href[i+len("/channel/"):], nil
			}
		}
	}
	if m := channelIDPattern.FindSubmatch(page); len(m) == 2 {
		return string(m[1]), nil
	}
	return "", fmt.Errorf("cannot resolve channel id for %q", channel)
}

func isChannelID(s string) bool {
	return len(s) == 24 && strings.HasPrefix(s, "UC")
}
