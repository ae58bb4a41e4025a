package config

import (
	"time"

	"yt-stock-insight/pkg/config"
)

// Extraction holds the per-video pipeline policy.
type Extraction struct {
	StartDate            string        `mapstructure:"start_date" validate:"required"`
	EndDate              string        `mapstructure:"end_date" validate:"required"`
	UploadDateOffsetDays int           `mapstructure:"upload_date_offset_days"`
	AllowSymbols         []string      `mapstructure:"allow_symbols"`
	DenySymbols          []string      `mapstructure:"deny_symbols"`
	SingleSymbolOnly     bool          `mapstructure:"single_symbol_only"`
	MaxVideos            int           `mapstructure:"max_videos"`
	DelayInterval        time.Duration `mapstructure:"delay_interval"`
}

// LLM holds the configuration of the chat-completions endpoint.
type LLM struct {
	BaseURL             string        `mapstructure:"base_url" validate:"required,url"`
	APIKey              string        `mapstructure:"api_key"`
	Model               string        `mapstructure:"model" validate:"required"`
	Temperature         float64       `mapstructure:"temperature"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int           `mapstructure:"max_token_per_minute"`
}

// Summarizer selects and bounds the transcript shortening step.
type Summarizer struct {
	Provider        string `mapstructure:"provider" validate:"omitempty,oneof=gemini truncate"`
	MaxInputChars   int    `mapstructure:"max_input_chars"`
	MaxOutputChars  int    `mapstructure:"max_output_chars"`
	MaxOutputTokens int32  `mapstructure:"max_output_tokens"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// YouTube holds the video and transcript source settings.
type YouTube struct {
	BaseURL     string        `mapstructure:"base_url"`
	UserAgent   string        `mapstructure:"user_agent"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	RetryWait   time.Duration `mapstructure:"retry_wait"`
	RetryJitter time.Duration `mapstructure:"retry_jitter"`
	Languages   []string      `mapstructure:"languages"`
}

// Stocks points at the symbol table file.
type Stocks struct {
	TablePath string `mapstructure:"table_path"`
}

// Scraper holds the channel scrape output settings.
type Scraper struct {
	OutputDir   string `mapstructure:"output_dir"`
	ProgressDir string `mapstructure:"progress_dir"`
}

// Clustering holds the clustering job output settings.
type Clustering struct {
	OutputDir string `mapstructure:"output_dir"`
}

// Notification controls the persisted-insight stream and its consumer.
type Notification struct {
	Enabled       bool          `mapstructure:"enabled"`
	StreamTimeout time.Duration `mapstructure:"stream_timeout"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	MaxIdle       time.Duration `mapstructure:"max_idle"`
	MaxDeliveries int           `mapstructure:"max_deliveries"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Scheduler controls how often due jobs are checked.
type Scheduler struct {
	PollingInterval time.Duration `mapstructure:"polling_interval"`
}

// Job is a cron-scheduled job definition.
type Job struct {
	Name     string                 `mapstructure:"name" validate:"required"`
	Type     string                 `mapstructure:"type" validate:"required"`
	Schedule string                 `mapstructure:"schedule" validate:"required"`
	Timeout  time.Duration          `mapstructure:"timeout"`
	Payload  map[string]interface{} `mapstructure:"payload"`
}

// Config holds the full configuration for the executor service.
type Config struct {
	App          config.App      `mapstructure:"app"`
	Logger       config.Logger   `mapstructure:"logger"`
	Database     config.Database `mapstructure:"database"`
	Redis        config.Redis    `mapstructure:"redis"`
	Extraction   Extraction      `mapstructure:"extraction"`
	LLM          LLM             `mapstructure:"llm"`
	Summarizer   Summarizer      `mapstructure:"summarizer"`
	Gemini       Gemini          `mapstructure:"gemini"`
	YouTube      YouTube         `mapstructure:"youtube"`
	Stocks       Stocks          `mapstructure:"stocks"`
	Scraper      Scraper         `mapstructure:"scraper"`
	Clustering   Clustering      `mapstructure:"clustering"`
	Notification Notification    `mapstructure:"notification"`
	Telegram     Telegram        `mapstructure:"telegram"`
	Scheduler    Scheduler       `mapstructure:"scheduler"`
	Jobs         []Job           `mapstructure:"jobs" validate:"dive"`
}

// Load loads the executor configuration from the given path.
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
