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

	"carcatalog/internal/api"
	"carcatalog/internal/auth"
	"carcatalog/internal/config"
	"carcatalog/internal/database"
	"carcatalog/internal/events"
	"carcatalog/internal/service"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.LogLevel == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil && level > zapcore.InfoLevel {
		logger = logger.WithOptions(zap.IncreaseLevel(level))
	}
	defer logger.Sync()

	logger.Info("Starting car catalog server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("store_driver", cfg.StoreDriver),
		zap.Strings("cors_origins", cfg.CORSOrigins),
		zap.Duration("token_ttl", cfg.TokenTTL),
	)
	if cfg.JWTSecret == config.DevJWTSecret {
		logger.Warn("JWT_SECRET_KEY is not set, using the development secret")
	}

	backend, err := openBackend(context.Background(), cfg)
	if err != nil {
		logger.Fatal("Failed to open record store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	db := database.New(backend, logger.Named("store"))
	defer db.Close()

	broadcaster := events.NewBroadcaster(logger.Named("events"))
	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	services := service.New(db, tokens, broadcaster, logger.Named("service"))
	handler := api.NewHandler(services, broadcaster, logger.Named("api"))
	router := api.NewRouter(handler, tokens, cfg.CORSOrigins, logger.Named("http"))

	// Event streams stay open, so there is no write timeout
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Closing the broadcaster ends open event streams
	broadcaster.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

// openBackend creates the record store backend selected by STORE_DRIVER
func openBackend(ctx context.Context, cfg *config.Config) (database.Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverFile:
		return database.NewFileBackend(cfg.DataDir)
	case config.DriverSQLite:
		return database.NewSQLiteBackend(cfg.SQLitePath)
	case config.DriverRedis:
		return database.NewRedisBackend(ctx, cfg.RedisAddr, cfg.RedisPrefix)
	case config.DriverMemory:
		return database.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
