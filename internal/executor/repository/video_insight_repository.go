package repository

import (
	"context"
	"errors"
	"fmt"

	"yt-stock-insight/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrVideoInsightExists is returned by Create when the URL is already stored.
var ErrVideoInsightExists = errors.New("video insight already exists")

// VideoInsightRepository defines the persistence operations of the pipeline.
type VideoInsightRepository interface {
	ExistsByURL(ctx context.Context, videoURL string) (bool, error)
	Create(ctx context.Context, insight *entity.VideoInsight) error
}

// NewVideoInsightRepository creates a new instance of VideoInsightRepository.
func NewVideoInsightRepository(db *gorm.DB) VideoInsightRepository {
	return &videoInsightRepository{
		db: db,
	}
}

type videoInsightRepository struct {
	db *gorm.DB
}

func (r *videoInsightRepository) ExistsByURL(ctx context.Context, videoURL string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.VideoInsight{}).
		Where("video_url = ?", videoURL).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check video insight: %w", err)
	}
	return count > 0, nil
}

// Create inserts the insight unless a row with the same URL exists, in which
// case ErrVideoInsightExists is returned and nothing is written.
func (r *videoInsightRepository) Create(ctx context.Context, insight *entity.VideoInsight) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "video_url"}},
			DoNothing: true,
		}).
		Create(insight)
	if result.Error != nil {
		return fmt.Errorf("failed to create video insight: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVideoInsightExists
	}
	return nil
}
