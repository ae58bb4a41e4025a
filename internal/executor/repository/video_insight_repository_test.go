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

func sampleInsight(url string) *entity.VideoInsight {
	return &entity.VideoInsight{
		VideoID:    "abc123",
		VideoTitle: "Tesla Q4 Earnings Review TSLA",
		UploadDate: "16/06/2024",
		UploadedAt: time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC),
		VideoURL:   url,
		StockNames: []string{"tesla"},
		Direction:  entity.DirectionLong,
		FinancialInsights: datatypes.NewJSONType(entity.FinancialInsight{
			Narrative:  entity.NarrativeDecisive,
			Direction:  entity.DirectionLong,
			Support:    []float64{190.5, 181.2},
			Resistance: []float64{250},
			BuyArea:    []entity.PriceRange{{185, 180}},
			SellArea:   []entity.PriceRange{{245, 255}},
		}),
	}
}

func TestVideoInsightRepository_CreateAndExists(t *testing.T) {
	ctx := context.Background()
	repo := NewVideoInsightRepository(newTestDB(t))
	url := "https://www.youtube.com/watch?v=abc123"

	exists, err := repo.ExistsByURL(ctx, url)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Create(ctx, sampleInsight(url)))

	exists, err = repo.ExistsByURL(ctx, url)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestVideoInsightRepository_CreateIsWriteOnce(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewVideoInsightRepository(db)
	url := "https://www.youtube.com/watch?v=abc123"

	require.NoError(t, repo.Create(ctx, sampleInsight(url)))

	second := sampleInsight(url)
	second.VideoTitle = "changed"
	err := repo.Create(ctx, second)
	assert.ErrorIs(t, err, ErrVideoInsightExists)

	var rows []entity.VideoInsight
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "Tesla Q4 Earnings Review TSLA", rows[0].VideoTitle)
	assert.Equal(t, []float64{190.5, 181.2}, rows[0].FinancialInsights.Data().Support)
	assert.Equal(t, []string{"tesla"}, []string(rows[0].StockNames))
}
