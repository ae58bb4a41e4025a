package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"yt-stock-insight/internal/entity"
	"yt-stock-insight/internal/query/config"
	"yt-stock-insight/internal/query/dto"
	"yt-stock-insight/internal/stock"
	"yt-stock-insight/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeInsightRepo struct {
	records        []entity.VideoInsight
	directions     []string
	directionCalls int
	err            error
	lastStart      time.Time
	lastEnd        time.Time
	lastDirection  string
}

func (f *fakeInsightRepo) FindByUploadedAtBetween(ctx context.Context, start, end time.Time, direction string) ([]entity.VideoInsight, error) {
	f.lastStart, f.lastEnd, f.lastDirection = start, end, direction
	if f.err != nil {
		return nil, f.err
	}
	var out []entity.VideoInsight
	for _, r := range f.records {
		if r.Direction == direction && !r.UploadedAt.Before(start) && !r.UploadedAt.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeInsightRepo) DistinctDirections(ctx context.Context) ([]string, error) {
	f.directionCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.directions, nil
}

func record(day int, stocks []string, fi entity.FinancialInsight) entity.VideoInsight {
	return entity.VideoInsight{
		UploadedAt:        time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC),
		StockNames:        stocks,
		Direction:         fi.Direction,
		FinancialInsights: datatypes.NewJSONType(fi),
	}
}

func testQueryConfig() config.Query {
	return config.Query{
		DefaultStartDate: "2024-05-01",
		DefaultEndDate:   "2024-12-31",
		DefaultDirection: "LONG",
	}
}

func newTestService(repo *fakeInsightRepo) InsightQueryService {
	return NewInsightQueryService(testQueryConfig(), repo, stock.NewMatcher(stock.DefaultSymbolTable()), logger.NewNop())
}

func TestParseQuery(t *testing.T) {
	repo := &fakeInsightRepo{directions: []string{"LONG", "SHORT"}}
	svc := newTestService(repo)
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		want  dto.ParsedQuery
	}{
		{
			name:  "full query",
			query: "Show SHORT trades for TSLA between June 1, 2024 and Jul 15, 2024",
			want:  dto.ParsedQuery{StartDate: "2024-06-01", EndDate: "2024-07-15", Direction: "SHORT", Symbol: "tesla"},
		},
		{
			name:  "single date falls back to defaults",
			query: "long NVDA since June 1, 2024",
			want:  dto.ParsedQuery{StartDate: "2024-05-01", EndDate: "2024-12-31", Direction: "LONG", Symbol: "nvidia"},
		},
		{
			name:  "nothing recognized",
			query: "what happened?",
			want:  dto.ParsedQuery{StartDate: "2024-05-01", EndDate: "2024-12-31", Direction: "LONG"},
		},
		{
			name:  "abbreviated and lowercase months",
			query: "LONG TSLA from Sept 1, 2024 to oct. 3rd 2024",
			want:  dto.ParsedQuery{StartDate: "2024-09-01", EndDate: "2024-10-03", Direction: "LONG", Symbol: "tesla"},
		},
		{
			name:  "iso dates",
			query: "SHORT between 2024-06-01 and 2024-06-30",
			want:  dto.ParsedQuery{StartDate: "2024-06-01", EndDate: "2024-06-30", Direction: "SHORT"},
		},
		{
			name:  "impossible day ignored",
			query: "LONG from February 30, 2024 to March 1, 2024",
			want:  dto.ParsedQuery{StartDate: "2024-05-01", EndDate: "2024-12-31", Direction: "LONG"},
		},
		{
			name:  "unparseable dates ignored",
			query: "SHORT from Foo 1, 2024 to Bar 2, 2024",
			want:  dto.ParsedQuery{StartDate: "2024-05-01", EndDate: "2024-12-31", Direction: "SHORT"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.ParseQuery(ctx, tt.query))
		})
	}
	assert.Equal(t, 1, repo.directionCalls)
}

func TestSeries_LongTakesHighestBuy(t *testing.T) {
	repo := &fakeInsightRepo{records: []entity.VideoInsight{
		record(20, []string{"tesla"}, entity.FinancialInsight{Direction: "LONG", BuyArea: []entity.PriceRange{{180, 175}, {190, 185}}}),
		record(5, []string{"tesla"}, entity.FinancialInsight{Direction: "LONG", BuyArea: []entity.PriceRange{{170, 165}}}),
		record(6, []string{"tesla"}, entity.FinancialInsight{Direction: "LONG"}),
		record(7, []string{"apple"}, entity.FinancialInsight{Direction: "LONG", BuyArea: []entity.PriceRange{{200, 190}}}),
		record(8, []string{"tesla"}, entity.FinancialInsight{Direction: "SHORT", SellArea: []entity.PriceRange{{250, 260}}}),
	}}
	svc := newTestService(repo)

	resp, err := svc.Series(context.Background(), dto.ParsedQuery{
		StartDate: "2024-06-01", EndDate: "2024-06-30", Direction: "long", Symbol: "TESLA",
	})
	require.NoError(t, err)

	assert.Equal(t, []dto.SeriesPoint{
		{Date: "2024-06-05", Price: 170},
		{Date: "2024-06-20", Price: 190},
	}, resp.Points)
	assert.Equal(t, "2 records found.", resp.Message)
	assert.Equal(t, "LONG", repo.lastDirection)
}

func TestSeries_ShortTakesLowestSell(t *testing.T) {
	repo := &fakeInsightRepo{records: []entity.VideoInsight{
		record(8, []string{"tesla"}, entity.FinancialInsight{Direction: "SHORT", SellArea: []entity.PriceRange{{250, 260}, {240, 245}}}),
		record(9, []string{"spy"}, entity.FinancialInsight{Direction: "SHORT", SellArea: []entity.PriceRange{{530, 540}}}),
	}}
	svc := newTestService(repo)

	resp, err := svc.Series(context.Background(), dto.ParsedQuery{StartDate: "2024-06-01", EndDate: "2024-06-30", Direction: "SHORT"})
	require.NoError(t, err)
	assert.Equal(t, []dto.SeriesPoint{{Date: "2024-06-08", Price: 240}, {Date: "2024-06-09", Price: 530}}, resp.Points)
}

func TestSeries_Errors(t *testing.T) {
	svc := newTestService(&fakeInsightRepo{})
	ctx := context.Background()

	_, err := svc.Series(ctx, dto.ParsedQuery{StartDate: "06/01/2024", EndDate: "2024-06-30", Direction: "LONG"})
	assert.ErrorIs(t, err, ErrInvalidQuery)
	_, err = svc.Series(ctx, dto.ParsedQuery{StartDate: "2024-06-01", EndDate: "June 30", Direction: "LONG"})
	assert.ErrorIs(t, err, ErrInvalidQuery)
	_, err = svc.Series(ctx, dto.ParsedQuery{StartDate: "2024-06-01", EndDate: "2024-06-30", Direction: "SIDEWAYS"})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	failing := newTestService(&fakeInsightRepo{err: errors.New("db down")})
	_, err = failing.Series(ctx, dto.ParsedQuery{StartDate: "2024-06-01", EndDate: "2024-06-30", Direction: "LONG"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidQuery)
}

func TestQuery_EmptyResult(t *testing.T) {
	svc := newTestService(&fakeInsightRepo{directions: []string{"LONG"}})

	resp, err := svc.Query(context.Background(), "LONG TSLA from May 1, 2024 to May 31, 2024")
	require.NoError(t, err)
	assert.Empty(t, resp.Points)
	assert.NotNil(t, resp.Points)
	assert.Equal(t, "0 records found.", resp.Message)
	assert.Equal(t, "tesla", resp.Query.Symbol)
}

func TestDirections_FallbackOnError(t *testing.T) {
	svc := newTestService(&fakeInsightRepo{err: errors.New("db down")})

	_, err := svc.Directions(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "SHORT", svc.ParseQuery(context.Background(), "SHORT please").Direction)
}

func TestExtremalPrice(t *testing.T) {
	fi := entity.FinancialInsight{
		BuyArea:  []entity.PriceRange{{1, 0}, {3, 2}, {2, 1}},
		SellArea: []entity.PriceRange{{9, 10}, {7, 8}},
	}
	p, ok := ExtremalPrice(fi, entity.DirectionLong)
	assert.True(t, ok)
	assert.Equal(t, 3.0, p)

	p, ok = ExtremalPrice(fi, entity.DirectionShort)
	assert.True(t, ok)
	assert.Equal(t, 7.0, p)

	_, ok = ExtremalPrice(entity.FinancialInsight{}, entity.DirectionLong)
	assert.False(t, ok)
}
