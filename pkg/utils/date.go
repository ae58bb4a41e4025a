package utils

import (
	"fmt"
	"strings"
	"time"

	"yt-stock-insight/pkg/common"
)

// ParseCompactDate parses a YYYYMMDD date as returned by the video source.
// ISO dates and RFC3339 timestamps are accepted too; the result is truncated
// to the calendar day in UTC.
func ParseCompactDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{common.CompactDateLayout, common.ISODateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// DateOnly drops the time of day, keeping the calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
