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

	redisAdapter "github.com/54ba/midostore-sub004/internal/adapter/cache/redis"
	"github.com/54ba/midostore-sub004/internal/adapter/httpapi"
	natsAdapter "github.com/54ba/midostore-sub004/internal/adapter/messaging/nats"
	mongoRepo "github.com/54ba/midostore-sub004/internal/adapter/repository/mongodb"
	"github.com/54ba/midostore-sub004/internal/config"
	"github.com/54ba/midostore-sub004/internal/platform/logger"
	"github.com/54ba/midostore-sub004/internal/platform/metrics"
	"github.com/54ba/midostore-sub004/internal/platform/tracer"
	"github.com/54ba/midostore-sub004/internal/usecase"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const serviceName = "catalog-service"

func main() {
	// .env is optional, for local development.
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	appLogger := logger.NewLogger()
	appLogger.Info("Application starting...", zap.String("service_name", serviceName))

	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	tp := tracer.InitTracer(serviceName, cfg.OTExporterOTLPEndpoint, appLogger)
	defer func() {
		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := tp.Shutdown(ctxShutdown); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	ctxPing, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := mongoClient.Ping(ctxPing, nil); err != nil {
		appLogger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}
	appLogger.Info("Successfully connected and pinged MongoDB.")
	db := mongoClient.Database(cfg.MongoDatabase)

	redisClient, err := redisAdapter.NewRedisClient(cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	cacheRepo := redisAdapter.NewRedisCacheRepository(redisClient, appLogger)

	natsPublisher, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, serviceName)
	if err != nil {
		appLogger.Fatal("Failed to initialize NATS publisher", zap.Error(err))
	}
	defer natsPublisher.Close()

	metricsManager := metrics.NewMetricsManager("catalog_service")
	go func() {
		if err := metrics.StartMetricsServer(cfg.PrometheusMetricsPort, appLogger, metricsManager.Registry); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Prometheus metrics server failed", zap.Error(err))
		}
	}()

	catalogRepo := mongoRepo.NewCatalogRepository(db, appLogger)
	interactionRepo := mongoRepo.NewInteractionRepository(db, appLogger)
	preferenceRepo := mongoRepo.NewPreferenceRepository(db, appLogger)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	catalogUC := usecase.NewCatalogUsecase(catalogRepo, cacheRepo, metricsManager, appLogger, cacheTTL)
	buyerUC := usecase.NewBuyerUsecase(catalogRepo, interactionRepo, preferenceRepo, natsPublisher, metricsManager, appLogger)

	handler := httpapi.NewHandler(catalogUC, buyerUC, appLogger)
	router := httpapi.NewRouter(handler, appLogger, metricsManager, cfg.JWTSecret)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("HTTP server starting", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Application stopped gracefully.")
}
