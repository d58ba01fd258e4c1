// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/retail-metrics/internal/api"
	"github.com/andresuchdata/retail-metrics/internal/cache"
	"github.com/andresuchdata/retail-metrics/internal/config"
	"github.com/andresuchdata/retail-metrics/internal/descriptions"
	"github.com/andresuchdata/retail-metrics/internal/service"
	"github.com/andresuchdata/retail-metrics/internal/store/postgres"
	"github.com/andresuchdata/retail-metrics/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	repo := postgres.NewObservationRepository(db)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// Load metric descriptions
	catalog, err := descriptions.Load(cfg.App.DescriptionsPath)
	if err != nil {
		logger.Log.Warn().Err(err).Str("path", cfg.App.DescriptionsPath).Msg("Descriptions unavailable, continuing without them")
	}
	if catalog.IsEmpty() {
		logger.Log.Info().Str("path", cfg.App.DescriptionsPath).Msg("No metric descriptions loaded")
	}

	statusCache, err := cache.NewDataStatusCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Status cache unavailable, falling back to direct counts")
		statusCache = cache.NewNoopDataStatusCache()
	}

	// Initialize services
	metricsService := service.NewMetricsService(repo, catalog, service.WithStatusCache(statusCache))

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{MetricsService: metricsService}, cfg.Server.AllowedOrigins)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

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
