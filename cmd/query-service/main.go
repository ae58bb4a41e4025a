package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yt-stock-insight/internal/query/config"
	delivery "yt-stock-insight/internal/query/delivery/http"
	_ "yt-stock-insight/internal/query/docs"
	"yt-stock-insight/internal/query/repository"
	"yt-stock-insight/internal/query/service"
	"yt-stock-insight/internal/stock"
	"yt-stock-insight/pkg/logger"
	"yt-stock-insight/pkg/postgres"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the query service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Query Service", logger.Field("name", cfg.App.Name))

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
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	table, err := stock.LoadSymbolTable(cfg.Stocks.TablePath)
	if err != nil {
		appLogger.Fatal("Failed to load symbol table", logger.ErrorField(err))
	}

	insightRepo := repository.NewVideoInsightRepository(db.DB)
	querySvc := service.NewInsightQueryService(cfg.Query, insightRepo, stock.NewMatcher(table), appLogger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	insightHandler := delivery.NewInsightHandler(querySvc, appLogger)
	apiV1 := e.Group("/api/v1")
	insightHandler.RegisterRoutes(apiV1.Group("/insights"))

	e.GET("/swagger/*", swagger.WrapHandler)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title YouTube Stock Insight Query API
// @version 1.0
// @description Price series built from financial insights extracted from YouTube videos.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "query-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-query.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing query-service CLI: %s\n", err)
		os.Exit(1)
	}
}
