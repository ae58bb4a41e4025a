package entity

import (
	"encoding/json"
	"time"
)

// JobType identifies which strategy runs a job.
type JobType string

const (
	JobTypeChannelInsightExtraction JobType = "channel_insight_extraction"
	JobTypeChannelScrape            JobType = "channel_scrape"
	JobTypeVideoClustering          JobType = "video_clustering"
)

// Job is a unit of work handed to an execution strategy.
type Job struct {
	Name    string          `json:"name"`
	Type    JobType         `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Timeout time.Duration   `json:"timeout"`
}
