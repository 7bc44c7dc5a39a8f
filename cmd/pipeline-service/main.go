package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-news-sentiment/internal/pipeline/config"
	"golang-news-sentiment/internal/pipeline/delivery/consumer"
	delivery "golang-news-sentiment/internal/pipeline/delivery/http"
	"golang-news-sentiment/internal/pipeline/repository"
	"golang-news-sentiment/internal/pipeline/service"
	"golang-news-sentiment/pkg/logger"
	"golang-news-sentiment/pkg/postgres"
	"golang-news-sentiment/pkg/redis"
	"golang-news-sentiment/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the news sentiment pipeline service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Pipeline Service", zap.String("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Initialize repositories
	sentimentRepo := repository.NewNewsSentimentRepository(db.DB)
	summaryRepo := repository.NewBatchSummaryRepository(redisClient.Client, cfg.Pipeline.SummaryStream, cfg.Redis.StreamMaxLen)

	// Initialize scorer provider
	var scorer repository.SentimentScorer
	switch cfg.Scorer.Provider {
	case "http":
		scorer = repository.NewHTTPScorer(cfg, appLogger)
	case "lexicon", "":
		scorer = repository.NewLexiconScorer()
	default:
		appLogger.Fatal("Invalid scorer provider specified in config", zap.String("provider", cfg.Scorer.Provider))
	}
	if cfg.Scorer.CacheExpiration > 0 {
		scorer = repository.NewCachingScorer(scorer, cfg.Scorer.CacheExpiration, cfg.Scorer.CacheCleanupInterval)
	}

	// Initialize feed consumer
	feedConsumer := consumer.NewFeedConsumer(redisClient.Client, cfg.Pipeline.FeedChannel, appLogger)
	if err := feedConsumer.Start(ctx); err != nil {
		appLogger.Fatal("Failed to start feed consumer", zap.Error(err))
	}

	// Initialize services
	normalizerSvc := service.NewNormalizerService(cfg, scorer, appLogger)
	orchestratorSvc := service.NewOrchestratorService(cfg, appLogger, feedConsumer, normalizerSvc, sentimentRepo, summaryRepo)

	// Schema setup is the only failure class that should terminate the
	// process: no batch can ever persist without it.
	if err := orchestratorSvc.Setup(ctx); err != nil {
		appLogger.Fatal("Failed to set up result store schema", zap.Error(err))
	}

	utils.GoSafe(func() {
		if err := orchestratorSvc.Run(ctx); err != nil {
			appLogger.Error("Orchestrator stopped with error", zap.Error(err))
			stop()
		}
	})

	// Initialize Echo server for operational endpoints
	e := echo.New()
	e.HideBanner = true

	statusHandler := delivery.NewStatusHandler(orchestratorSvc, appLogger)
	statusHandler.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.StringField("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	appLogger.Info("Pipeline service started. Waiting for news data...")

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down pipeline service...")
	feedConsumer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Pipeline service stopped.")
}

func main() {
	rootCmd := &cobra.Command{Use: "pipeline-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing pipeline-service CLI: %s\n", err)
		os.Exit(1)
	}
}
