package strategy

import (
	"context"
	"encoding/json"
	"fmt"

	"yt-stock-insight/internal/entity"
	"yt-stock-insight/internal/executor/dto"
	"yt-stock-insight/pkg/logger"
)

// VideoClusterer buckets a snapshot CSV by matched stock.
type VideoClusterer interface {
	ClusterFile(ctx context.Context, csvPath, channel, outputDir string) (*dto.ClusteringResult, error)
}

// VideoClusteringPayload is the job payload.
type VideoClusteringPayload struct {
	Files     []string `json:"files"`
	Channel   string   `json:"channel"`
	OutputDir string   `json:"output_dir"`
}

type videoClusteringResult struct {
	File   string                `json:"file"`
	Status string                `json:"status"`
	Error  string                `json:"error,omitempty"`
	Result *dto.ClusteringResult `json:"result,omitempty"`
}

// VideoClusteringStrategy runs the clustering batch job.
type VideoClusteringStrategy struct {
	clusterer        VideoClusterer
	defaultOutputDir string
	logger           *logger.Logger
}

// NewVideoClusteringStrategy creates a new VideoClusteringStrategy.
func NewVideoClusteringStrategy(clusterer VideoClusterer, defaultOutputDir string, log *logger.Logger) JobExecutionStrategy {
	return &VideoClusteringStrategy{
		clusterer:        clusterer,
		defaultOutputDir: defaultOutputDir,
		logger:           log,
	}
}

// GetType returns the job type this strategy handles.
func (s *VideoClusteringStrategy) GetType() entity.JobType {
	return entity.JobTypeVideoClustering
}

// Execute clusters every listed snapshot file.
func (s *VideoClusteringStrategy) Execute(ctx context.Context, job *entity.Job) (string, error) {
	var payload VideoClusteringPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return "", fmt.Errorf("failed to unmarshal job payload: %w", err)
	}
	if len(payload.Files) == 0 {
		return "", fmt.Errorf("payload must contain at least one file")
	}
	outputDir := payload.OutputDir
	if outputDir == "" {
		outputDir = s.defaultOutputDir
	}

	results := make([]videoClusteringResult, 0, len(payload.Files))
	for _, file := range payload.Files {
		res, err := s.clusterer.ClusterFile(ctx, file, payload.Channel, outputDir)
		if err != nil {
			s.logger.Error("Failed to cluster snapshot", logger.StringField("file", file), logger.ErrorField(err))
			results = append(results, videoClusteringResult{File: file, Status: StatusFailed, Error: err.Error()})
			continue
		}
		status := StatusSuccess
		if res.Rows == 0 {
			status = StatusSkipped
		}
		results = append(results, videoClusteringResult{File: file, Status: status, Result: res})
	}

	b, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(b), nil
}
