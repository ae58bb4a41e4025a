package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var unsafeFilenameChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// SanitizeFilename replaces spaces and characters that are invalid in file
// names with underscores.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

// NormalizeChannelName lowercases and drops underscores and whitespace so that
// "Stock_Moe", "stock moe" and "STOCKMOE" compare equal.
func NormalizeChannelName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r == '_' || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ChannelFromFilename derives a channel name from a snapshot file name such as
// "Stock_Moe_-_Videos.csv": the part before "_-_", normalized.
func ChannelFromFilename(base string) string {
	base = strings.TrimSuffix(base, ".csv")
	if i := strings.Index(base, "_-_"); i >= 0 {
		base = base[:i]
	}
	return NormalizeChannelName(base)
}

// TruncateRunes cuts s to at most n runes.
func TruncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
