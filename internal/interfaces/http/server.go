// internal/interfaces/http/server.go
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/config"
	"github.com/your-org/inventory-backend/internal/domain/analytics"
	"github.com/your-org/inventory-backend/internal/domain/forecast"
	"github.com/your-org/inventory-backend/internal/domain/inventory"
	"github.com/your-org/inventory-backend/internal/domain/product"
	"github.com/your-org/inventory-backend/internal/domain/reorder"
	"github.com/your-org/inventory-backend/internal/domain/sales"
	"github.com/your-org/inventory-backend/internal/interfaces/http/middleware"
	"github.com/your-org/inventory-backend/internal/interfaces/http/routes"
	"github.com/your-org/inventory-backend/internal/pkg/lock"
	"github.com/your-org/inventory-backend/internal/pkg/metrics"
	"github.com/your-org/inventory-backend/internal/pkg/pdf"
	"gorm.io/gorm"
)

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	gin         *gin.Engine
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redis.Client
	logger      *logrus.Logger
	metrics     *metrics.Metrics
	startedAt   time.Time
}

// NewServer creates a new HTTP server instance. redisClient may be nil, in
// which case locks are in-process, forecasts are not cached and requests
// are not rate limited.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, logger *logrus.Logger) *Server {
	return &Server{
		config:      cfg,
		db:          db,
		redisClient: redisClient,
		logger:      logger,
		metrics:     metrics.New(),
	}
}

// Handler builds the gin engine with all middleware and routes
func (s *Server) Handler() http.Handler {
	if s.gin == nil {
		if s.config.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}

		s.gin = gin.New()
		if len(s.config.Security.TrustedProxies) > 0 {
			if err := s.gin.SetTrustedProxies(s.config.Security.TrustedProxies); err != nil {
				s.logger.WithError(err).Warn("⚠️ Invalid trusted proxies, ignoring")
			}
		}

		s.setupMiddleware()
		s.setupRoutes()
	}
	return s.gin
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.startedAt = time.Now()
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.logger.Infof("🚀 HTTP Server starting on port %s", s.config.Server.Port)
	s.logger.Infof("🌐 API Base URL: http://localhost:%s/api/v1", s.config.Server.Port)
	s.logger.Infof("📊 Health Check: http://localhost:%s/health", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("🛑 Shutting down HTTP server...")

	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("✅ HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.logger))
	s.gin.Use(middleware.Metrics(s.metrics))
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders())
	s.gin.Use(middleware.RateLimit(s.config, s.redisClient, s.logger))
	s.gin.Use(middleware.RequestSizeLimit(s.config.Server.MaxBodyBytes))
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout))
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)
	s.gin.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	apiV1 := s.gin.Group("/api/v1")
	routes.SetupRoutes(apiV1, s.buildServices(), s.config, s.logger)

	if s.config.IsDevelopment() {
		s.gin.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message":     s.config.App.Name,
				"version":     s.config.App.Version,
				"environment": s.config.App.Environment,
				"health":      "/health",
				"metrics":     "/metrics",
				"endpoints": gin.H{
					"sales":     "/api/v1/sales",
					"inventory": "/api/v1/inventory",
					"forecast":  "/api/v1/forecast",
					"products":  "/api/v1/products",
					"analytics": "/api/v1/analytics",
				},
			})
		})
	}
}

// buildServices wires the domain services to the database, Redis and metrics
func (s *Server) buildServices() routes.Services {
	locker := lock.New(s.config, s.redisClient, s.logger)

	var cache forecast.Cache = forecast.NopCache{}
	if s.redisClient != nil {
		cache = forecast.NewRedisCache(s.redisClient, s.config.Forecast.CacheTTL, s.logger)
	}

	products := product.NewService(s.db)
	inv := inventory.NewService(s.db, locker, s.logger, s.metrics)
	salesSvc := sales.NewService(s.db, inv, s.logger, s.metrics)
	forecastSvc := forecast.NewService(salesSvc, products, cache, s.config.Forecast, s.logger, s.metrics)
	inv.InvalidateOnChange(forecastSvc)

	return routes.Services{
		Products:  products,
		Inventory: inv,
		Sales:     salesSvc,
		Forecast:  forecastSvc,
		Analytics: analytics.NewService(s.db, inv, s.logger),
		Reorder:   reorder.NewService(inv, salesSvc, products, s.config.Reorder, s.logger),
		PDF:       pdf.NewService(s.config),
	}
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database connection error",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database ping failed",
		})
		return
	}

	if s.redisClient != nil {
		if err := s.redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "redis ping failed",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck handles readiness check requests
func (s *Server) readinessCheck(c *gin.Context) {
	uptime := time.Duration(0)
	if !s.startedAt.IsZero() {
		uptime = time.Since(s.startedAt).Round(time.Second)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    uptime.String(),
	})
}
