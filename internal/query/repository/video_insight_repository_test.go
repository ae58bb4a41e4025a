package repository

import (
	"context"
	"testing"
	"time"

	"yt-stock-insight/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const videoInsightsDDL = `CREATE TABLE video_insights (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	video_id TEXT NOT NULL,
	video_title TEXT NOT NULL,
	upload_date TEXT NOT NULL,
	uploaded_at DATETIME NOT NULL,
	video_url TEXT NOT NULL UNIQUE,
	channel_name TEXT,
	stock_names TEXT,
	direction TEXT,
	financial_insights TEXT,
	created_at DATETIME
)`

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Exec(videoInsightsDDL).Error)
	return db
}

func seed(t *testing.T, db *gorm.DB, id string, uploaded time.Time, direction string) {
	t.Helper()
	require.NoError(t, db.Create(&entity.VideoInsight{
		VideoID:    id,
		VideoTitle: "Tesla " + id,
		UploadDate: uploaded.Format("02/01/2006"),
		UploadedAt: uploaded,
		VideoURL:   "https://www.youtube.com/watch?v=" + id,
		StockNames: []string{"tesla"},
		Direction:  direction,
		FinancialInsights: datatypes.NewJSONType(entity.FinancialInsight{
			Narrative: entity.NarrativeDecisive,
			Direction: direction,
			BuyArea:   []entity.PriceRange{{185, 180}},
		}),
	}).Error)
}

func TestFindByUploadedAtBetween(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seed(t, db, "a", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), entity.DirectionLong)
	seed(t, db, "b", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), entity.DirectionLong)
	seed(t, db, "c", time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), entity.DirectionLong)
	seed(t, db, "d", time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), entity.DirectionLong)
	seed(t, db, "e", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), entity.DirectionShort)

	repo := NewVideoInsightRepository(db)
	got, err := repo.FindByUploadedAtBetween(ctx,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		entity.DirectionLong,
	)
	require.NoError(t, err)

	ids := make([]string, len(got))
	for i, g := range got {
		ids[i] = g.VideoID
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
	assert.Equal(t, []string{"tesla"}, []string(got[0].StockNames))
	assert.Equal(t, entity.PriceRange{185, 180}, got[0].FinancialInsights.Data().BuyArea[0])
}

func TestDistinctDirections(t *testing.T) {
	db := newTestDB(t)
	repo := NewVideoInsightRepository(db)

	empty, err := repo.DistinctDirections(context.Background())
	require.NoError(t, err)
	assert.Empty(t, empty)

	seed(t, db, "a", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), entity.DirectionShort)
	seed(t, db, "b", time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC), entity.DirectionLong)
	seed(t, db, "c", time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), entity.DirectionLong)

	directions, err := repo.DistinctDirections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"LONG", "SHORT"}, directions)
}
