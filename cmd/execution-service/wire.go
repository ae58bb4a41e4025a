package main

import (
	"context"
	"fmt"

	"yt-stock-insight/internal/executor/config"
	"yt-stock-insight/internal/executor/repository"
	"yt-stock-insight/internal/executor/service"
	"yt-stock-insight/internal/executor/strategy"
	"yt-stock-insight/internal/stock"
	"yt-stock-insight/pkg/logger"
	"yt-stock-insight/pkg/postgres"
	"yt-stock-insight/pkg/redis"
	"yt-stock-insight/pkg/telegram"

	"google.golang.org/genai"
)

// app holds the wired executor components.
type app struct {
	cfg          *config.Config
	logger       *logger.Logger
	db           *postgres.DB
	redisClient  *redis.Client
	notifier     telegram.Notifier
	symbols      *stock.SymbolTable
	transcripts  repository.TranscriptRepository
	extraction   service.ExtractionService
	executor     service.ExecutorService
	notification service.NotificationService
}

func (a *app) Close() {
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func newApp(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: appLogger}

	db, err := postgres.NewDB(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.db = db

	var publisher service.InsightPublisher = service.NoopInsightPublisher{}
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		a.redisClient = redisClient
		publisher = service.NewRedisInsightPublisher(redisClient.Client, cfg.Redis.StreamMaxLen)
	}

	if cfg.Telegram.BotToken != "" {
		notifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize Telegram notifier: %w", err)
		}
		a.notifier = notifier
	}

	symbols, err := stock.LoadSymbolTable(cfg.Stocks.TablePath)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.symbols = symbols
	matcher := stock.NewMatcher(symbols)

	policy, err := service.NewExtractionPolicy(cfg.Extraction, symbols)
	if err != nil {
		a.Close()
		return nil, err
	}

	var summarizer repository.SummarizerRepository
	switch cfg.Summarizer.Provider {
	case "gemini":
		genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize Gemini AI client: %w", err)
		}
		summarizer = repository.NewGeminiSummarizer(cfg.Summarizer, cfg.Gemini, appLogger, genAiClient)
	default:
		summarizer = repository.NewTruncateSummarizer(cfg.Summarizer)
	}

	videoSource := repository.NewYouTubeRepository(cfg.YouTube, appLogger)
	a.transcripts = repository.NewTranscriptRepository(cfg.YouTube, appLogger)
	extractor := repository.NewChatCompletionRepository(cfg.LLM, appLogger)
	insightRepo := repository.NewVideoInsightRepository(db.DB)

	a.extraction = service.NewExtractionService(
		policy,
		matcher,
		videoSource,
		a.transcripts,
		summarizer,
		extractor,
		insightRepo,
		publisher,
		appLogger,
	)

	strategies := []strategy.JobExecutionStrategy{
		strategy.NewChannelInsightExtractionStrategy(a.extraction, a.notifier, appLogger),
		strategy.NewChannelScrapeStrategy(service.NewScraperService(cfg.Scraper, videoSource, appLogger), appLogger),
		strategy.NewVideoClusteringStrategy(service.NewClusteringService(matcher, appLogger), cfg.Clustering.OutputDir, appLogger),
	}
	a.executor = service.NewExecutorService(appLogger, strategies)

	if a.redisClient != nil && a.notifier != nil {
		a.notification = service.NewNotificationService(a.redisClient.Client, a.notifier, cfg.Notification, appLogger)
	}
	return a, nil
}
