package repository

import (
	"context"
	"time"

	"yt-stock-insight/internal/entity"

	"gorm.io/gorm"
)

// VideoInsightRepository reads persisted insights.
type VideoInsightRepository interface {
	FindByUploadedAtBetween(ctx context.Context, start, end time.Time, direction string) ([]entity.VideoInsight, error)
	DistinctDirections(ctx context.Context) ([]string, error)
}

type videoInsightRepository struct {
	db *gorm.DB
}

// NewVideoInsightRepository creates a new VideoInsightRepository.
func NewVideoInsightRepository(db *gorm.DB) VideoInsightRepository {
	return &videoInsightRepository{db: db}
}

// FindByUploadedAtBetween returns insights uploaded in [start, end] with the
// given direction, oldest first.
func (r *videoInsightRepository) FindByUploadedAtBetween(ctx context.Context, start, end time.Time, direction string) ([]entity.VideoInsight, error) {
	var insights []entity.VideoInsight
	err := r.db.WithContext(ctx).
		Where("uploaded_at >= ? AND uploaded_at <= ?", start, end).
		Where("direction = ?", direction).
		Order("uploaded_at ASC").
		Order("id ASC").
		Find(&insights).Error
	return insights, err
}

func (r *videoInsightRepository) DistinctDirections(ctx context.Context) ([]string, error) {
	var directions []string
	err := r.db.WithContext(ctx).
		Model(&entity.VideoInsight{}).
		Distinct().
		Order("direction").
		Pluck("direction", &directions).Error
	return directions, err
}
