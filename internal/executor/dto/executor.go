package dto

import "time"

// VideoOutcome records where one video left the extraction pipeline.
type VideoOutcome struct {
	VideoURL string `json:"video_url"`
	Title    string `json:"title,omitempty"`
	State    string `json:"state"`
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
}

// ChannelExtractionResult summarizes one channel run.
type ChannelExtractionResult struct {
	RunID     string         `json:"run_id"`
	Channel   string         `json:"channel"`
	Total     int            `json:"total"`
	Persisted int            `json:"persisted"`
	Skipped   int            `json:"skipped"`
	Failed    int            `json:"failed"`
	Outcomes  []VideoOutcome `json:"outcomes"`
	StartedAt time.Time      `json:"started_at"`
	Duration  string         `json:"duration"`
}

// ScrapeResult summarizes one channel scrape.
type ScrapeResult struct {
	Channel    string   `json:"channel"`
	OutputFile string   `json:"output_file"`
	Written    int      `json:"written"`
	Resumed    int      `json:"resumed"`
	FailedURLs []string `json:"failed_urls"`
}

// ClusteringResult lists the files written by one clustering pass.
type ClusteringResult struct {
	Channel    string         `json:"channel"`
	Rows       int            `json:"rows"`
	Files      []string       `json:"files"`
	Clusters   map[string]int `json:"clusters"`
	MultiAsset int            `json:"multi_asset"`
	Unmatched  int            `json:"unmatched"`
}

// VideoInfo is one row of a clustering output file.
type VideoInfo struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	UploadDate  string `json:"upload_date"`
	ViewCount   int64  `json:"view_count"`
}

// InsightEvent is published once an insight is persisted.
type InsightEvent struct {
	VideoTitle string       `json:"video_title"`
	VideoURL   string       `json:"video_url"`
	UploadDate string       `json:"upload_date"`
	Symbols    []string     `json:"symbols"`
	Narrative  string       `json:"narrative"`
	Direction  string       `json:"direction"`
	Support    []float64    `json:"support"`
	Resistance []float64    `json:"resistance"`
	BuyArea    [][2]float64 `json:"buy_area"`
	SellArea   [][2]float64 `json:"sell_area"`
}
