package config

import (
	"time"

	"yt-stock-insight/pkg/config"
)

// Query holds the fallbacks used when a query names no dates or direction.
type Query struct {
	DefaultStartDate  string        `mapstructure:"default_start_date" validate:"required"`
	DefaultEndDate    string        `mapstructure:"default_end_date" validate:"required"`
	DefaultDirection  string        `mapstructure:"default_direction" validate:"omitempty,oneof=LONG SHORT"`
	DirectionCacheTTL time.Duration `mapstructure:"direction_cache_ttl"`
}

// Stocks points at the symbol table file.
type Stocks struct {
	TablePath string `mapstructure:"table_path"`
}

// Config holds the full configuration for the query service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	API      config.API      `mapstructure:"api"`
	Query    Query           `mapstructure:"query"`
	Stocks   Stocks          `mapstructure:"stocks"`
}

// Load loads the query configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if err := config.Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
