package entity

import "time"

// Video is the detailed metadata of a single video as returned by the video source.
type Video struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Duration    int       `json:"duration"`
	Uploader    string    `json:"uploader"`
	ChannelName string    `json:"channel_name"`
	ChannelURL  string    `json:"channel_url"`
	Thumbnail   string    `json:"thumbnail"`
	UploadDate  time.Time `json:"upload_date"`
	ViewCount   int64     `json:"view_count"`
	LikeCount   int64     `json:"like_count"`
}

// VideoRef is a flat listing entry of a channel.
type VideoRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Channel is the resolved identity of a channel and its uploads.
type Channel struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	URL    string     `json:"url"`
	Videos []VideoRef `json:"videos"`
}

// TranscriptSegment is one timed caption line.
type TranscriptSegment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}
