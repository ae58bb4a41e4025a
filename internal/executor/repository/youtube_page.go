package repository

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"yt-stock-insight/internal/executor/dto"
)

const (
	defaultYouTubeBaseURL = "https://www.youtube.com"
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// playerResponseMarker marks the start of the player response JSON in watch page HTML.
	playerResponseMarker = "ytInitialPlayerResponse = "
)

var (
	videoIDPattern    = regexp.MustCompile(`(?:v=|youtu\.be/)([^&?/]+)`)
	channelIDPattern  = regexp.MustCompile(`"(?:channelId|externalId)":"(UC[\w-]{22})"`)
	isoDurationFormat = regexp.MustCompile(`^P(?:(\d+)D)?T?(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)
)

// ExtractVideoID returns the id of a watch or youtu.be URL, or "" when none is found.
func ExtractVideoID(videoURL string) string {
	m := videoIDPattern.FindStringSubmatch(videoURL)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// extractPlayerResponse finds and decodes ytInitialPlayerResponse in a watch page.
func extractPlayerResponse(page []byte) (*dto.PlayerResponse, error) {
	idx := strings.Index(string(page), playerResponseMarker)
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	raw := extractJSON(page[idx+len(playerResponseMarker):])
	if raw == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}
	var resp dto.PlayerResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// extractJSON returns the balanced JSON object at the start of data.
func extractJSON(data []byte) []byte {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i, c := range data {
		if start < 0 {
			if c == '{' {
				start = i
				depth = 1
			} else if c != ' ' && c != '\n' && c != '\t' && c != '\r' {
				return nil
			}
			continue
		}
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return data[start : i+1]
			}
		}
	}
	return nil
}

// needsPoToken reports whether a caption track can only be fetched from a browser.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack prefers a manual track in a preferred language, then an
// auto-generated one, then any English track.
func pickBestTrack(tracks []dto.CaptionTrack, langs []string) (dto.CaptionTrack, bool) {
	usable := make([]dto.CaptionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return dto.CaptionTrack{}, false
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

// parseISODuration converts PT#H#M#S into seconds.
func parseISODuration(s string) int {
	m := isoDurationFormat.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	total := 0
	for i, unit := range []int{86400, 3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, _ := strconv.Atoi(m[i+1])
		total += n * unit
	}
	return total
}

func atoi64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}
