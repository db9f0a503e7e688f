package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/inventory-analytics/internal/api"
	"github.com/andresuchdata/inventory-analytics/internal/cache"
	"github.com/andresuchdata/inventory-analytics/internal/config"
	"github.com/andresuchdata/inventory-analytics/internal/observability"
	"github.com/andresuchdata/inventory-analytics/internal/repository/postgres"
	"github.com/andresuchdata/inventory-analytics/internal/service"
	"github.com/andresuchdata/inventory-analytics/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
		logger.Configure(os.Stdout, false)
	}
	logger.SetLevel(cfg.LogLevel)

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	analyticsCache, err := cache.NewAnalyticsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Analytics cache unavailable, continuing without cache")
		analyticsCache = cache.NewNoopAnalyticsCache()
	}

	metrics := observability.NewMetrics()

	// Initialize services
	analyticsService := service.NewAnalyticsService(
		postgres.NewLedgerRepository(db),
		analyticsCache,
		cfg,
		service.WithMetrics(metrics),
	)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{AnalyticsService: analyticsService}, cfg.Server.AllowedOrigins, metrics)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
