package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/labelscan/backend/config"
	httpDelivery "github.com/labelscan/backend/internal/delivery/http"
	"github.com/labelscan/backend/internal/domain"
	"github.com/labelscan/backend/internal/infrastructure/cache"
	"github.com/labelscan/backend/internal/infrastructure/model"
	"github.com/labelscan/backend/internal/infrastructure/ocr"
	"github.com/labelscan/backend/internal/logging"
	"github.com/labelscan/backend/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting labelscan backend",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("cache", cfg.Cache.Type),
	)

	var analysisCache domain.CacheRepository
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(context.Background(), cfg.Cache.RedisURL)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = redisCache.Close() }()
		analysisCache = redisCache
	default:
		memoryCache := cache.NewMemoryCache()
		defer memoryCache.Close()
		analysisCache = memoryCache
	}

	modelClient := model.NewClient(model.Config{
		APIKey:  cfg.Model.APIKey,
		BaseURL: cfg.Model.BaseURL,
		Model:   cfg.Model.Name,
	}, logger)

	ocrClient := ocr.NewClient(ocr.Config{
		BaseURL: cfg.OCR.BaseURL,
		APIKey:  cfg.OCR.APIKey,
	}, logger)

	if cfg.Model.APIKey == "" {
		logger.Warn("model API key not configured; analysis requests will fail with 401")
	}

	extraction := usecase.NewExtractionService(logger)
	corrector := usecase.NewLexicalCorrector()
	local := usecase.NewLocalAnalyzer()

	analysis := usecase.NewAnalysisService(modelClient, usecase.AnalysisConfig{
		Timeout:         cfg.Model.Timeout,
		MaxAttempts:     cfg.Model.MaxAttempts,
		Temperature:     cfg.Model.Temperature,
		MaxOutputTokens: cfg.Model.MaxOutputTokens,
	}, logger)

	scan := usecase.NewScanService(ocrClient, corrector, extraction, usecase.ScanConfig{
		Language:      cfg.OCR.Language,
		MinTextLength: cfg.OCR.MinTextLength,
	}, logger)

	handler := httpDelivery.NewHandler(
		extraction,
		analysis,
		scan,
		local,
		analysisCache,
		cfg.Cache.TTL,
		logger,
	)

	router := httpDelivery.SetupRouter(cfg, handler, logger)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
