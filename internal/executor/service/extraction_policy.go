package service

import (
	"fmt"
	"strings"
	"time"

	"yt-stock-insight/internal/executor/config"
	"yt-stock-insight/internal/stock"
	"yt-stock-insight/pkg/common"
)

// ExtractionPolicy is the immutable filter configuration of one extraction run.
// It is built once at startup and shared read-only.
type ExtractionPolicy struct {
	StartDate time.Time
	EndDate   time.Time
	// UploadDateOffsetDays is added to every upload date before the range
	// check and is part of the stored date as well.
	UploadDateOffsetDays int
	AllowSymbols         map[string]bool
	DenySymbols          map[string]bool
	SingleSymbolOnly     bool
	MaxVideos            int
	DelayInterval        time.Duration
}

// NewExtractionPolicy validates the extraction config against the symbol table.
func NewExtractionPolicy(cfg config.Extraction, table *stock.SymbolTable) (ExtractionPolicy, error) {
	start, err := time.Parse(common.ISODateLayout, cfg.StartDate)
	if err != nil {
		return ExtractionPolicy{}, fmt.Errorf("invalid extraction.start_date: %w", err)
	}
	end, err := time.Parse(common.ISODateLayout, cfg.EndDate)
	if err != nil {
		return ExtractionPolicy{}, fmt.Errorf("invalid extraction.end_date: %w", err)
	}
	if end.Before(start) {
		return ExtractionPolicy{}, fmt.Errorf("extraction.end_date %s is before start_date %s", cfg.EndDate, cfg.StartDate)
	}

	allow, err := symbolSet(cfg.AllowSymbols, table)
	if err != nil {
		return ExtractionPolicy{}, fmt.Errorf("invalid extraction.allow_symbols: %w", err)
	}
	deny, err := symbolSet(cfg.DenySymbols, table)
	if err != nil {
		return ExtractionPolicy{}, fmt.Errorf("invalid extraction.deny_symbols: %w", err)
	}

	return ExtractionPolicy{
		StartDate:            start,
		EndDate:              end,
		UploadDateOffsetDays: cfg.UploadDateOffsetDays,
		AllowSymbols:         allow,
		DenySymbols:          deny,
		SingleSymbolOnly:     cfg.SingleSymbolOnly,
		MaxVideos:            cfg.MaxVideos,
		DelayInterval:        cfg.DelayInterval,
	}, nil
}

func symbolSet(keys []string, table *stock.SymbolTable) (map[string]bool, error) {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if !table.Has(k) {
			return nil, fmt.Errorf("%w: %s", stock.ErrUnknownSymbol, k)
		}
		set[k] = true
	}
	return set, nil
}

// EffectiveUploadDate applies the configured day offset.
func (p ExtractionPolicy) EffectiveUploadDate(uploaded time.Time) time.Time {
	return uploaded.AddDate(0, 0, p.UploadDateOffsetDays)
}

// InRange reports whether d lies in the inclusive calendar date range.
func (p ExtractionPolicy) InRange(d time.Time) bool {
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// TopicDecision applies the allow/deny policy to the matched symbols. It
// returns the reason of a rejection, or "" when the video passes.
func (p ExtractionPolicy) TopicDecision(matched []string) string {
	if len(matched) == 0 {
		return "title matches no stock symbol"
	}
	for _, m := range matched {
		if p.DenySymbols[m] {
			return "title matches denied symbol " + m
		}
	}
	if len(p.AllowSymbols) > 0 {
		allowed := false
		for _, m := range matched {
			if p.AllowSymbols[m] {
				allowed = true
				break
			}
		}
		if !allowed {
			return "title matches no allowed symbol"
		}
	}
	if p.SingleSymbolOnly && len(matched) > 1 {
		return "title matches multiple symbols: " + strings.Join(matched, ",")
	}
	return ""
}
