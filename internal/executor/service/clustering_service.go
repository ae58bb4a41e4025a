package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"yt-stock-insight/internal/executor/dto"
	"yt-stock-insight/internal/stock"
	"yt-stock-insight/pkg/logger"
	"yt-stock-insight/pkg/utils"
)

const (
	columnTitle       = "title"
	columnVideoID     = "video id"
	columnUploadDate  = "upload date"
	columnViewCount   = "view count"
	columnDescription = "description"
	columnChannelName = "channel name"

	multiAssetFile = "multi_asset.json"
)

// VideoRow is one row of a video snapshot CSV.
type VideoRow struct {
	Title       string
	VideoID     string
	UploadDate  string
	ViewCount   int64
	Description string
	ChannelName string
}

// Clusters is the bucketed form of a snapshot. Symbols lists the single-asset
// buckets in order of first appearance.
type Clusters struct {
	Symbols    []string
	Single     map[string][]dto.VideoInfo
	MultiAsset []dto.VideoInfo
	Unmatched  []dto.VideoInfo
}

// ClusterVideos routes every row into exactly one bucket. Order within a
// bucket follows row order, so the same input always yields the same output.
func ClusterVideos(matcher *stock.Matcher, rows []VideoRow) Clusters {
	c := Clusters{
		Symbols:    []string{},
		Single:     map[string][]dto.VideoInfo{},
		MultiAsset: []dto.VideoInfo{},
		Unmatched:  []dto.VideoInfo{},
	}
	for _, row := range rows {
		info := dto.VideoInfo{
			VideoID:     row.VideoID,
			Title:       row.Title,
			Description: row.Description,
			UploadDate:  row.UploadDate,
			ViewCount:   row.ViewCount,
		}
		matched := matcher.Match(row.Title)
		switch len(matched) {
		case 0:
			c.Unmatched = append(c.Unmatched, info)
		case 1:
			if _, ok := c.Single[matched[0]]; !ok {
				c.Symbols = append(c.Symbols, matched[0])
			}
			c.Single[matched[0]] = append(c.Single[matched[0]], info)
		default:
			c.MultiAsset = append(c.MultiAsset, info)
		}
	}
	return c
}

// FilterByChannel keeps rows whose channel name equals channel, ignoring case,
// whitespace and underscores.
func FilterByChannel(rows []VideoRow, channel string) []VideoRow {
	want := utils.NormalizeChannelName(channel)
	out := make([]VideoRow, 0, len(rows))
	for _, r := range rows {
		if utils.NormalizeChannelName(r.ChannelName) == want {
			out = append(out, r)
		}
	}
	return out
}

// ReadVideoRows parses a snapshot CSV. Title and Video ID columns are
// required; the others are optional. The second return value reports whether
// the snapshot has a Channel Name column.
func ReadVideoRows(r io.Reader) ([]VideoRow, bool, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))] = i
	}
	if _, ok := cols[columnTitle]; !ok {
		return nil, false, errors.New("CSV must contain 'Title' and 'Video ID' columns")
	}
	if _, ok := cols[columnVideoID]; !ok {
		return nil, false, errors.New("CSV must contain 'Title' and 'Video ID' columns")
	}
	_, hasChannel := cols[columnChannelName]

	get := func(rec []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var rows []VideoRow
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, false, fmt.Errorf("failed to read CSV row: %w", err)
		}
		rows = append(rows, VideoRow{
			Title:       get(rec, columnTitle),
			VideoID:     get(rec, columnVideoID),
			UploadDate:  get(rec, columnUploadDate),
			ViewCount:   parseCount(get(rec, columnViewCount)),
			Description: get(rec, columnDescription),
			ChannelName: get(rec, columnChannelName),
		})
	}
	return rows, hasChannel, nil
}

func parseCount(s string) int64 {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

// ClusteringService runs the clustering batch job over a snapshot file.
type ClusteringService interface {
	ClusterFile(ctx context.Context, csvPath, channel, outputDir string) (*dto.ClusteringResult, error)
}

// NewClusteringService creates a new ClusteringService.
func NewClusteringService(matcher *stock.Matcher, log *logger.Logger) ClusteringService {
	return &clusteringService{matcher: matcher, logger: log}
}

type clusteringService struct {
	matcher *stock.Matcher
	logger  *logger.Logger
}

// ClusterFile writes <symbol>_<channel>.json per single-asset bucket plus
// multi_asset.json and others_<channel>.json when non-empty. An empty channel
// is derived from the file name.
func (s *clusteringService) ClusterFile(ctx context.Context, csvPath, channel, outputDir string) (*dto.ClusteringResult, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	rows, hasChannel, err := ReadVideoRows(f)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Loaded snapshot", logger.StringField("path", csvPath), logger.IntField("rows", len(rows)))

	if channel == "" {
		channel = utils.ChannelFromFilename(filepath.Base(csvPath))
	}
	channel = utils.NormalizeChannelName(channel)
	if hasChannel {
		rows = FilterByChannel(rows, channel)
		s.logger.Info("Filtered by channel name", logger.StringField("channel", channel), logger.IntField("remaining", len(rows)))
	}

	result := &dto.ClusteringResult{
		Channel:  channel,
		Rows:     len(rows),
		Files:    []string{},
		Clusters: map[string]int{},
	}
	if len(rows) == 0 {
		s.logger.Warn("No videos found after filtering", logger.StringField("channel", channel))
		return result, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	clusters := ClusterVideos(s.matcher, rows)
	write := func(name string, videos []dto.VideoInfo) error {
		path := filepath.Join(outputDir, name)
		if err := writeJSONFile(path, videos); err != nil {
			return err
		}
		result.Files = append(result.Files, path)
		s.logger.Info("Saved cluster", logger.StringField("file", path), logger.IntField("videos", len(videos)))
		return nil
	}

	for _, symbol := range clusters.Symbols {
		videos := clusters.Single[symbol]
		if err := write(fmt.Sprintf("%s_%s.json", symbol, channel), videos); err != nil {
			return nil, err
		}
		result.Clusters[symbol] = len(videos)
	}
	if len(clusters.MultiAsset) > 0 {
		if err := write(multiAssetFile, clusters.MultiAsset); err != nil {
			return nil, err
		}
		result.MultiAsset = len(clusters.MultiAsset)
	}
	if len(clusters.Unmatched) > 0 {
		if err := write(fmt.Sprintf("others_%s.json", channel), clusters.Unmatched); err != nil {
			return nil, err
		}
		result.Unmatched = len(clusters.Unmatched)
	}

	s.logger.Info("Clustering complete", logger.StringField("channel", channel), logger.IntField("files", len(result.Files)))
	return result, nil
}

func writeJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
