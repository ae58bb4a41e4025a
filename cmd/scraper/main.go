package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"yt-stock-insight/internal/executor/config"
	"yt-stock-insight/internal/executor/repository"
	"yt-stock-insight/internal/executor/service"
	"yt-stock-insight/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

func run(cmd *cobra.Command, args []string) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	videoSource := repository.NewYouTubeRepository(cfg.YouTube, appLogger)
	scraper := service.NewScraperService(cfg.Scraper, videoSource, appLogger)

	res, err := scraper.ScrapeChannel(ctx, args[0])
	if err != nil {
		appLogger.Fatal("Scrape failed", zap.Error(err))
	}
	fmt.Printf("Done! Data saved to %s (%d new, %d already processed, %d failed)\n",
		res.OutputFile, res.Written, res.Resumed, len(res.FailedURLs))
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "scraper <channel-id>",
		Short: "Snapshots a YouTube channel's videos to CSV",
		Args:  cobra.ExactArgs(1),
		Run:   run,
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-executor.yaml", "Path to the configuration file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing scraper CLI: %s\n", err)
		os.Exit(1)
	}
}
