// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/andresuchdata/retail-metrics/internal/api/handlers"
	"github.com/andresuchdata/retail-metrics/internal/api/middleware"
	"github.com/andresuchdata/retail-metrics/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	MetricsService *service.MetricsService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	apiGroup := router.Group("/api/v1")

	if services != nil && services.MetricsService != nil {
		metricsHandler := handlers.NewMetricsHandler(services.MetricsService)
		metricsGroup := apiGroup.Group("/metrics")
		{
			metricsGroup.GET("/turnover", metricsHandler.GetTurnover)
			metricsGroup.GET("/stockout_rate", metricsHandler.GetStockoutRate)
			metricsGroup.GET("/stockout_heatmap", metricsHandler.GetStockoutHeatmap)
			metricsGroup.GET("/days_of_supply", metricsHandler.GetDaysOfSupply)
			metricsGroup.GET("/carrying_cost", metricsHandler.GetCarryingCost)
			metricsGroup.GET("/slow_obsolete", metricsHandler.GetSlowObsolete)
		}

		dataGroup := apiGroup.Group("/data")
		{
			dataGroup.GET("/status", metricsHandler.GetDataStatus)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
