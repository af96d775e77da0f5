package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Duy-Thong/CopyCheck/internal/api"
	"github.com/Duy-Thong/CopyCheck/internal/config"
	"github.com/Duy-Thong/CopyCheck/internal/configs/env"
	"github.com/Duy-Thong/CopyCheck/internal/infra/mongo"
	redisInfra "github.com/Duy-Thong/CopyCheck/internal/infra/redis"
	"github.com/Duy-Thong/CopyCheck/internal/logger"
	"github.com/Duy-Thong/CopyCheck/internal/metrics"
	"github.com/Duy-Thong/CopyCheck/internal/plagiarism"
	"github.com/Duy-Thong/CopyCheck/internal/preprocess"
	"github.com/Duy-Thong/CopyCheck/internal/repository"
	"github.com/Duy-Thong/CopyCheck/internal/stream"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file, continuing with system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	logger.Init(cfg.LogLevel)
	log.Info().Msg("Starting CopyCheck server")

	metrics.InitPrometheus()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.MetricsPort).Msg("Metrics server started")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Metrics server failed to start")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect MongoDB
	mongoClient, err := mongo.NewClient(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create MongoDB client")
	}
	defer mongoClient.Close(context.Background())

	// Connect Redis
	redisClient, err := redisInfra.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis client")
	}
	defer redisClient.Close()

	mongoRepo := repository.NewMongoRepository(mongoClient)
	if err := mongoRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to ensure MongoDB indexes")
	}

	submissionsRepo := repository.NewSubmissionsRepository(mongoRepo)
	reportsRepo := repository.NewReportsRepository(mongoRepo)

	detector := plagiarism.NewDetector(plagiarism.Tokenizer{
		FoldCase: cfg.TokenizerFoldCase,
		Unicode:  cfg.TokenizerUnicode,
	})

	var ocr preprocess.OCR
	if cfg.OCRBaseURL != "" {
		ocr = preprocess.NewOCRClient(cfg.OCRBaseURL, cfg.OCRAPIKey, cfg.OCRTimeout)
		log.Info().Str("baseUrl", cfg.OCRBaseURL).Msg("OCR fallback enabled")
	}
	extractor := preprocess.NewExtractor(ocr)
	intake := preprocess.NewService(detector, extractor, submissionsRepo)

	statusTracker := plagiarism.NewStatusTracker(redisClient)

	workerPool := plagiarism.NewWorkerPool(ctx, 0)
	defer workerPool.Close()

	retryHandler := stream.NewRetryHandler(redisClient.Client, cfg.RedisDeadLetterKey)

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	consumerName := fmt.Sprintf("consumer-%s-%d-%s", hostname, os.Getpid(), uuid.New().String()[:8])
	consumer := stream.NewConsumer(
		redisClient.Client,
		cfg.RedisStreamKey,
		cfg.RedisConsumerGroup,
		consumerName,
		intake,
		retryHandler,
		stream.ConsumerOptions{RetentionDuration: cfg.StreamRetentionDuration},
	)

	router := api.SetupRoutes(cfg, api.Dependencies{
		Submissions: submissionsRepo,
		Reports:     reportsRepo,
		Status:      statusTracker,
		Intake:      intake,
		Detector:    detector,
		WorkerPool:  workerPool,
	})

	// Start Redis consumer in background
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Redis consumer error")
		}
	}()
	log.Info().Str("consumer_name", consumerName).Msg("Redis consumer started")

	srv := api.StartServer(router, cfg.ServerPort)

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down gracefully...")

	if err := api.ShutdownServer(srv, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down API server")
	}

	cancel()
	select {
	case <-consumerDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Redis consumer did not stop in time")
	}

	metricsCtx, metricsCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer metricsCancel()
	if err := metricsServer.Shutdown(metricsCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down metrics server")
	}

	log.Info().Msg("Shutdown complete")
}
