package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"yt-stock-insight/internal/executor/config"
	"yt-stock-insight/internal/executor/service"
	"yt-stock-insight/internal/stock"
	"yt-stock-insight/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	channel    string
	outputDir  string
)

func run(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	table, err := stock.LoadSymbolTable(cfg.Stocks.TablePath)
	if err != nil {
		appLogger.Fatal("Failed to load symbol table", zap.Error(err))
	}
	if outputDir == "" {
		outputDir = cfg.Clustering.OutputDir
	}

	clusterer := service.NewClusteringService(stock.NewMatcher(table), appLogger)
	for _, path := range args {
		res, err := clusterer.ClusterFile(context.Background(), path, channel, outputDir)
		if err != nil {
			appLogger.Fatal("Clustering failed", zap.String("file", path), zap.Error(err))
		}
		for _, f := range res.Files {
			fmt.Println(f)
		}
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "classifier <snapshot.csv>...",
		Short: "Buckets snapshot videos by the stock their title mentions",
		Args:  cobra.MinimumNArgs(1),
		Run:   run,
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-executor.yaml", "Path to the configuration file")
	rootCmd.Flags().StringVar(&channel, "channel", "", "Channel name; derived from the file name when empty")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory for the cluster files")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing classifier CLI: %s\n", err)
		os.Exit(1)
	}
}
