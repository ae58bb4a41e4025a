package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"yt-stock-insight/internal/entity"
	"yt-stock-insight/internal/query/config"
	"yt-stock-insight/internal/query/dto"
	"yt-stock-insight/internal/query/repository"
	"yt-stock-insight/internal/stock"
	"yt-stock-insight/pkg/common"
	"yt-stock-insight/pkg/logger"

	"github.com/patrickmn/go-cache"
)

const directionsCacheKey = "directions"

// ErrInvalidQuery marks Series failures caused by the caller's parameters.
var ErrInvalidQuery = errors.New("invalid query")

var (
	// "June 1, 2024", "Sept. 1st 2024", "jun 1 2024" or "2024-06-01".
	dateTokenPattern   = regexp.MustCompile(`(?i)\b(?:([a-z]{3,9})\.? (\d{1,2})(?:st|nd|rd|th)?,? (\d{4})|(\d{4})-(\d{1,2})-(\d{1,2}))\b`)
	symbolTokenPattern = regexp.MustCompile(`\b[A-Z]{2,}\b`)
)

// InsightQueryService answers free-text and structured insight queries.
type InsightQueryService interface {
	ParseQuery(ctx context.Context, query string) dto.ParsedQuery
	Series(ctx context.Context, q dto.ParsedQuery) (*dto.SeriesResponse, error)
	Query(ctx context.Context, query string) (*dto.SeriesResponse, error)
	Directions(ctx context.Context) ([]string, error)
}

type insightQueryService struct {
	cfg     config.Query
	repo    repository.VideoInsightRepository
	matcher *stock.Matcher
	cache   *cache.Cache
	logger  *logger.Logger
}

// NewInsightQueryService creates a new InsightQueryService.
func NewInsightQueryService(cfg config.Query, repo repository.VideoInsightRepository, matcher *stock.Matcher, log *logger.Logger) InsightQueryService {
	if cfg.DefaultDirection == "" {
		cfg.DefaultDirection = entity.DirectionLong
	}
	if cfg.DirectionCacheTTL <= 0 {
		cfg.DirectionCacheTTL = 5 * time.Minute
	}
	return &insightQueryService{
		cfg:     cfg,
		repo:    repo,
		matcher: matcher,
		cache:   cache.New(cfg.DirectionCacheTTL, 2*cfg.DirectionCacheTTL),
		logger:  log,
	}
}

// Directions returns the distinct persisted directions, uppercased.
func (s *insightQueryService) Directions(ctx context.Context) ([]string, error) {
	if v, ok := s.cache.Get(directionsCacheKey); ok {
		return v.([]string), nil
	}
	raw, err := s.repo.DistinctDirections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch directions: %w", err)
	}
	directions := make([]string, 0, len(raw))
	for _, d := range raw {
		if d = strings.ToUpper(strings.TrimSpace(d)); d != "" {
			directions = append(directions, d)
		}
	}
	s.cache.SetDefault(directionsCacheKey, directions)
	return directions, nil
}

// ParseQuery extracts the date range, direction and symbol from free text.
// Fewer than two parseable dates, or none of the known directions in the
// text, fall back to the configured defaults.
func (s *insightQueryService) ParseQuery(ctx context.Context, query string) dto.ParsedQuery {
	parsed := dto.ParsedQuery{
		StartDate: s.cfg.DefaultStartDate,
		EndDate:   s.cfg.DefaultEndDate,
		Direction: s.cfg.DefaultDirection,
	}

	var dates []time.Time
	for _, m := range dateTokenPattern.FindAllStringSubmatch(query, -1) {
		if t, ok := parseQueryDate(m); ok {
			dates = append(dates, t)
		} else {
			s.logger.Warn("Ignoring unrecognized date", logger.StringField("token", m[0]))
		}
	}
	if len(dates) >= 2 {
		parsed.StartDate = dates[0].Format(common.ISODateLayout)
		parsed.EndDate = dates[1].Format(common.ISODateLayout)
	}

	upper := strings.ToUpper(query)
	directions, err := s.Directions(ctx)
	if err != nil {
		s.logger.Warn("Falling back to default directions", logger.ErrorField(err))
		directions = []string{entity.DirectionLong, entity.DirectionShort}
	}
	for _, d := range directions {
		if strings.Contains(upper, d) {
			parsed.Direction = d
			break
		}
	}

	for _, token := range symbolTokenPattern.FindAllString(query, -1) {
		if token == entity.DirectionLong || token == entity.DirectionShort {
			continue
		}
		if matched := s.matcher.Match(token); len(matched) > 0 {
			parsed.Symbol = matched[0]
			break
		}
	}

	s.logger.Info("Query parsed",
		logger.StringField("start", parsed.StartDate),
		logger.StringField("end", parsed.EndDate),
		logger.StringField("direction", parsed.Direction),
		logger.StringField("symbol", parsed.Symbol),
	)
	return parsed
}

// parseQueryDate reads a dateTokenPattern match. Month names may be written in
// full or abbreviated to any prefix of three letters or more.
func parseQueryDate(m []string) (time.Time, bool) {
	var year, day int
	var month time.Month
	if m[1] != "" {
		month = monthFromName(m[1])
		day, _ = strconv.Atoi(m[2])
		year, _ = strconv.Atoi(m[3])
	} else {
		year, _ = strconv.Atoi(m[4])
		n, _ := strconv.Atoi(m[5])
		month = time.Month(n)
		day, _ = strconv.Atoi(m[6])
	}
	if month < time.January || month > time.December || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func monthFromName(name string) time.Month {
	name = strings.ToLower(name)
	for m := time.January; m <= time.December; m++ {
		if strings.HasPrefix(strings.ToLower(m.String()), name) {
			return m
		}
	}
	return 0
}

// Series returns one point per matching record: the highest first buy price
// for LONG, the lowest first sell price for SHORT. Records without the
// relevant area are left out.
func (s *insightQueryService) Series(ctx context.Context, q dto.ParsedQuery) (*dto.SeriesResponse, error) {
	start, err := time.Parse(common.ISODateLayout, q.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start date %q: %v", ErrInvalidQuery, q.StartDate, err)
	}
	end, err := time.Parse(common.ISODateLayout, q.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end date %q: %v", ErrInvalidQuery, q.EndDate, err)
	}
	q.Direction = strings.ToUpper(q.Direction)
	if q.Direction != entity.DirectionLong && q.Direction != entity.DirectionShort {
		return nil, fmt.Errorf("%w: direction %q", ErrInvalidQuery, q.Direction)
	}
	q.Symbol = strings.ToLower(q.Symbol)

	records, err := s.repo.FindByUploadedAtBetween(ctx, start, end, q.Direction)
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}

	points := []dto.SeriesPoint{}
	for _, r := range records {
		if q.Symbol != "" && !containsString(r.StockNames, q.Symbol) {
			continue
		}
		price, ok := ExtremalPrice(r.FinancialInsights.Data(), q.Direction)
		if !ok {
			continue
		}
		points = append(points, dto.SeriesPoint{
			Date:  r.UploadedAt.Format(common.ISODateLayout),
			Price: price,
		})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	return &dto.SeriesResponse{
		Query:   q,
		Message: fmt.Sprintf("%d records found.", len(points)),
		Points:  points,
	}, nil
}

func (s *insightQueryService) Query(ctx context.Context, query string) (*dto.SeriesResponse, error) {
	return s.Series(ctx, s.ParseQuery(ctx, query))
}

// ExtremalPrice picks max Buy_Area[i][0] for LONG or min Sell_Area[i][0] for SHORT.
func ExtremalPrice(fi entity.FinancialInsight, direction string) (float64, bool) {
	switch direction {
	case entity.DirectionLong:
		if len(fi.BuyArea) == 0 {
			return 0, false
		}
		best := math.Inf(-1)
		for _, r := range fi.BuyArea {
			best = math.Max(best, r[0])
		}
		return best, true
	case entity.DirectionShort:
		if len(fi.SellArea) == 0 {
			return 0, false
		}
		best := math.Inf(1)
		for _, r := range fi.SellArea {
			best = math.Min(best, r[0])
		}
		return best, true
	}
	return 0, false
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
