package entity

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// VideoInsight is the persisted document for one processed video.
// VideoURL is unique: at most one row per URL.
type VideoInsight struct {
	ID                uint                                 `gorm:"primaryKey" json:"-"`
	VideoID           string                               `gorm:"not null" json:"Video ID"`
	VideoTitle        string                               `gorm:"not null" json:"Video Title"`
	UploadDate        string                               `gorm:"not null" json:"Upload Date"`
	UploadedAt        time.Time                            `gorm:"type:date;not null;index" json:"-"`
	VideoURL          string                               `gorm:"uniqueIndex;not null" json:"Video URL"`
	ChannelName       string                               `json:"Channel Name,omitempty"`
	StockNames        pq.StringArray                       `gorm:"type:text[]" json:"Stock Names"`
	Direction         string                               `gorm:"index" json:"-"`
	FinancialInsights datatypes.JSONType[FinancialInsight] `json:"Financial Insights"`
	CreatedAt         time.Time                            `gorm:"autoCreateTime" json:"-"`
}

// TableName specifies the table name for the VideoInsight model.
func (VideoInsight) TableName() string {
	return "video_insights"
}
