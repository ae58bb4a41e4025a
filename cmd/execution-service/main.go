package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"yt-stock-insight/internal/entity"
	"yt-stock-insight/internal/executor/config"
	"yt-stock-insight/internal/executor/delivery/consumer"
	"yt-stock-insight/internal/executor/repository"
	"yt-stock-insight/internal/executor/service"
	"yt-stock-insight/internal/stock"
	"yt-stock-insight/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	payload    string
	timeout    time.Duration
	symbol     string
	query      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the execution service",
	Run:   runServe,
}

var runCmd = &cobra.Command{
	Use:   "run <job-type>",
	Short: "Runs a single job and prints its result",
	Args:  cobra.ExactArgs(1),
	Run:   runJob,
}

var transcriptCmd = &cobra.Command{
	Use:   "transcript <video-url>",
	Short: "Prints the transcript lines mentioning a symbol and a query",
	Args:  cobra.ExactArgs(1),
	Run:   runTranscript,
}

func loadConfigAndLogger() (*config.Config, *logger.Logger) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return cfg, appLogger
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, appLogger := loadConfigAndLogger()
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Execution Service", zap.String("name", cfg.App.Name))

	a, err := newApp(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize execution service", zap.Error(err))
	}
	defer a.Close()

	scheduler, err := service.NewSchedulerService(cfg.Jobs, a.executor, appLogger, cfg.Scheduler.PollingInterval, time.Now())
	if err != nil {
		appLogger.Fatal("Failed to initialize scheduler", zap.Error(err))
	}
	go scheduler.Start(ctx)

	var redisConsumer *consumer.RedisConsumer
	if cfg.Notification.Enabled && a.notification != nil {
		redisConsumer = consumer.NewRedisConsumer(cfg, a.redisClient.Client, a.notification, appLogger)
		if err := redisConsumer.Start(ctx); err != nil {
			appLogger.Fatal("Failed to start Redis consumer", zap.Error(err))
		}
	}

	appLogger.Info("Execution service started. Waiting for jobs...", zap.Int("jobs", len(cfg.Jobs)))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down execution service...")
	cancel()
	if redisConsumer != nil {
		redisConsumer.Stop()
	}
	appLogger.Info("Execution service stopped.")
}

func runJob(cmd *cobra.Command, args []string) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, appLogger := loadConfigAndLogger()
	defer func() { _ = appLogger.Sync() }()

	if !json.Valid([]byte(payload)) {
		appLogger.Fatal("Invalid job payload", zap.String("payload", payload))
	}

	a, err := newApp(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize execution service", zap.Error(err))
	}
	defer a.Close()

	job := &entity.Job{
		Name:    "cli-" + args[0],
		Type:    entity.JobType(args[0]),
		Payload: json.RawMessage(payload),
		Timeout: timeout,
	}
	output, err := a.executor.Execute(ctx, job)
	if output != "" {
		fmt.Println(output)
	}
	if err != nil {
		appLogger.Error("Job failed", zap.Error(err))
		os.Exit(1)
	}
}

func runTranscript(cmd *cobra.Command, args []string) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, appLogger := loadConfigAndLogger()
	defer func() { _ = appLogger.Sync() }()

	table, err := stock.LoadSymbolTable(cfg.Stocks.TablePath)
	if err != nil {
		appLogger.Fatal("Failed to load symbol table", zap.Error(err))
	}

	videoID := repository.ExtractVideoID(args[0])
	if videoID == "" {
		appLogger.Fatal("Could not extract video id", zap.String("url", args[0]))
	}

	video, err := repository.NewYouTubeRepository(cfg.YouTube, appLogger).GetVideo(ctx, args[0])
	if err != nil {
		appLogger.Fatal("Failed to fetch video", zap.Error(err))
	}
	fmt.Printf("Video Title: %s\n", video.Title)

	matched := stock.NewMatcher(table).Match(video.Title)
	if len(matched) == 0 {
		appLogger.Fatal("No stock mentions detected in title", zap.String("title", video.Title))
	}
	fmt.Printf("Detected Stock(s): %s\n", strings.Join(matched, ", "))
	if !slices.Contains(matched, strings.ToLower(symbol)) {
		appLogger.Fatal("Symbol is not mentioned in the video title", zap.String("symbol", symbol))
	}

	transcripts := repository.NewTranscriptRepository(cfg.YouTube, appLogger)
	res := transcripts.GetTranscript(ctx, videoID)
	if res.Status != repository.TranscriptAvailable {
		appLogger.Fatal("Transcript not available", zap.String("status", string(res.Status)), zap.Error(res.Err))
	}

	lines, err := stock.FilterTranscript(table, res.Segments, symbol, query)
	if err != nil {
		appLogger.Fatal("Failed to filter transcript", zap.Error(err))
	}
	for _, line := range lines {
		fmt.Println(line)
	}
}

func main() {
	rootCmd := &cobra.Command{Use: "execution-service"}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-executor.yaml", "Path to the configuration file")

	runCmd.Flags().StringVarP(&payload, "payload", "p", "{}", "Job payload as JSON")
	runCmd.Flags().DurationVar(&timeout, "timeout", 0, "Job timeout, 0 for none")

	transcriptCmd.Flags().StringVarP(&symbol, "symbol", "s", "", "Stock symbol to look for")
	transcriptCmd.Flags().StringVarP(&query, "query", "q", "", "Text every returned line must contain")
	_ = transcriptCmd.MarkFlagRequired("symbol")

	rootCmd.AddCommand(serveCmd, runCmd, transcriptCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing execution-service CLI: %s\n", err)
		os.Exit(1)
	}
}
