package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"yt-stock-insight/internal/query/dto"
	"yt-stock-insight/internal/query/service"
	"yt-stock-insight/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueryService struct {
	lastSeries dto.ParsedQuery
	lastQuery  string
	err        error
}

func (f *fakeQueryService) ParseQuery(ctx context.Context, query string) dto.ParsedQuery {
	return dto.ParsedQuery{}
}

func (f *fakeQueryService) Series(ctx context.Context, q dto.ParsedQuery) (*dto.SeriesResponse, error) {
	f.lastSeries = q
	if f.err != nil {
		return nil, f.err
	}
	return &dto.SeriesResponse{Query: q, Message: "1 records found.", Points: []dto.SeriesPoint{{Date: "2024-06-02", Price: 181.5}}}, nil
}

func (f *fakeQueryService) Query(ctx context.Context, query string) (*dto.SeriesResponse, error) {
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return &dto.SeriesResponse{Message: "0 records found.", Points: []dto.SeriesPoint{}}, nil
}

func (f *fakeQueryService) Directions(ctx context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []string{"LONG", "SHORT"}, nil
}

func newTestServer(svc *fakeQueryService) *echo.Echo {
	e := echo.New()
	NewInsightHandler(svc, logger.NewNop()).RegisterRoutes(e.Group("/api/v1/insights"))
	return e
}

func do(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestInsightHandler_Series(t *testing.T) {
	svc := &fakeQueryService{}
	e := newTestServer(svc)

	rec := do(e, "/api/v1/insights/series?start=2024-06-01&end=2024-06-30&direction=LONG&symbol=tesla")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.SeriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []dto.SeriesPoint{{Date: "2024-06-02", Price: 181.5}}, resp.Points)
	assert.Equal(t, dto.ParsedQuery{StartDate: "2024-06-01", EndDate: "2024-06-30", Direction: "LONG", Symbol: "tesla"}, svc.lastSeries)
}

func TestInsightHandler_SeriesValidation(t *testing.T) {
	e := newTestServer(&fakeQueryService{})

	for _, target := range []string{
		"/api/v1/insights/series?start=2024-06-01&end=2024-06-30",
		"/api/v1/insights/series?start=06/01/2024&end=2024-06-30&direction=LONG",
		"/api/v1/insights/series?start=2024-06-01&end=2024-06-30&direction=FLAT",
	} {
		rec := do(e, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestInsightHandler_ServiceErrorStatus(t *testing.T) {
	invalid := fmt.Errorf("%w: direction %q", service.ErrInvalidQuery, "FLAT")
	tests := []struct {
		name   string
		err    error
		target string
		want   int
	}{
		{name: "series invalid", err: invalid, target: "/api/v1/insights/series?start=2024-06-01&end=2024-06-30&direction=LONG", want: http.StatusBadRequest},
		{name: "query invalid", err: invalid, target: "/api/v1/insights/query?q=FLAT+TSLA", want: http.StatusBadRequest},
		{name: "series backend failure", err: errors.New("db down"), target: "/api/v1/insights/series?start=2024-06-01&end=2024-06-30&direction=LONG", want: http.StatusInternalServerError},
		{name: "query backend failure", err: errors.New("db down"), target: "/api/v1/insights/query?q=LONG", want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(newTestServer(&fakeQueryService{err: tt.err}), tt.target)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestInsightHandler_Query(t *testing.T) {
	svc := &fakeQueryService{}
	e := newTestServer(svc)

	rec := do(e, "/api/v1/insights/query?q=LONG+TSLA")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "LONG TSLA", svc.lastQuery)

	rec = do(e, "/api/v1/insights/query?q=")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter a query.")
}

func TestInsightHandler_Directions(t *testing.T) {
	rec := do(newTestServer(&fakeQueryService{}), "/api/v1/insights/directions")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"directions":["LONG","SHORT"]}`, rec.Body.String())

	rec = do(newTestServer(&fakeQueryService{err: errors.New("db down")}), "/api/v1/insights/directions")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
