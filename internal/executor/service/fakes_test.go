package service

import (
	"context"
	"errors"
	"sync"

	"yt-stock-insight/internal/entity"
	"yt-stock-insight/internal/executor/dto"
	"yt-stock-insight/internal/executor/repository"
	"yt-stock-insight/internal/insight"
)

type fakeVideoSource struct {
	channel   *entity.Channel
	listErr   error
	videos    map[string]*entity.Video
	failFirst map[string]int
	calls     map[string]int
}

func (f *fakeVideoSource) ListChannel(ctx context.Context, channel string) (*entity.Channel, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.channel, nil
}

func (f *fakeVideoSource) GetVideo(ctx context.Context, videoURL string) (*entity.Video, error) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[videoURL]++
	if f.calls[videoURL] <= f.failFirst[videoURL] {
		return nil, errors.New("temporary failure")
	}
	v, ok := f.videos[videoURL]
	if !ok {
		return nil, repository.ErrNoMetadata
	}
	cp := *v
	return &cp, nil
}

type fakeTranscripts struct {
	results map[string]repository.TranscriptResult
}

func (f *fakeTranscripts) GetTranscript(ctx context.Context, videoID string) repository.TranscriptResult {
	if r, ok := f.results[videoID]; ok {
		return r
	}
	return repository.TranscriptResult{Status: repository.TranscriptNotFound}
}

type fakeSummarizer struct {
	err   error
	calls int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return text, nil
}

type fakeExtractor struct {
	content string
	err     error
	calls   int
}

func (f *fakeExtractor) ExtractInsight(ctx context.Context, title, transcript string) (insight.Envelope, error) {
	f.calls++
	if f.err != nil {
		return insight.Envelope{}, f.err
	}
	return insight.ParseEnvelope(f.content), nil
}

type fakeInsightRepo struct {
	mu      sync.Mutex
	docs    map[string]*entity.VideoInsight
	order   []string
	findErr error
}

func newFakeInsightRepo() *fakeInsightRepo {
	return &fakeInsightRepo{docs: map[string]*entity.VideoInsight{}}
}

func (f *fakeInsightRepo) ExistsByURL(ctx context.Context, videoURL string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return false, f.findErr
	}
	_, ok := f.docs[videoURL]
	return ok, nil
}

func (f *fakeInsightRepo) Create(ctx context.Context, doc *entity.VideoInsight) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[doc.VideoURL]; ok {
		return repository.ErrVideoInsightExists
	}
	f.docs[doc.VideoURL] = doc
	f.order = append(f.order, doc.VideoURL)
	return nil
}

type fakePublisher struct {
	events []dto.InsightEvent
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, event dto.InsightEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}
