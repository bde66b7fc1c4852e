// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/your-org/inventory-backend/internal/config"
	"github.com/your-org/inventory-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/inventory-backend/internal/infrastructure/database/redis"
	"github.com/your-org/inventory-backend/internal/interfaces/http"
	"github.com/your-org/inventory-backend/internal/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg)
	appLogger.Infof("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	// Connect to database
	db, err := postgres.NewConnection(cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Health(); err != nil {
		appLogger.WithError(err).Fatal("Database health check failed")
	}

	// Redis is required for the redis lock backend. Otherwise the API runs
	// without it: in-process locks, no forecast cache, no rate limiting.
	var redisClient *goredis.Client
	rc, err := redis.NewConnection(cfg, appLogger)
	switch {
	case err == nil:
		defer rc.Close()
		redisClient = rc.GetClient()
	case cfg.Lock.Backend == config.LockBackendRedis:
		appLogger.WithError(err).Fatal("Redis is required by LOCK_BACKEND=redis")
	default:
		appLogger.WithError(err).Warn("⚠️ Redis unavailable, continuing without cache and rate limiting")
	}

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB(), appLogger)

	if err := migration.RunAutoMigrations(); err != nil {
		appLogger.WithError(err).Fatal("Database migration failed")
	}

	if err := migration.CreateIndexes(); err != nil {
		appLogger.WithError(err).Warn("⚠️ Index creation failed")
	}

	// Seed initial data in development
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(); err != nil {
			appLogger.WithError(err).Warn("⚠️ Data seeding failed")
		}
	}

	appLogger.Info("✅ All systems operational!")

	server := http.NewServer(cfg, db.GetDB(), redisClient, appLogger)

	go func() {
		if err := server.Start(); err != nil {
			appLogger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("👋 Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		appLogger.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	appLogger.Info("✅ Server shutdown completed")
}
