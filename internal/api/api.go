package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/inventory-analytics/internal/api/handlers"
	"github.com/andresuchdata/inventory-analytics/internal/api/middleware"
	"github.com/andresuchdata/inventory-analytics/internal/observability"
	"github.com/andresuchdata/inventory-analytics/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	AnalyticsService *service.AnalyticsService
}

func NewRouter(services *Services, allowedOrigins []string, metrics *observability.Metrics) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(metrics.Middleware())
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

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	apiGroup := router.Group("/api/v1")

	if services != nil && services.AnalyticsService != nil {
		analyticsHandler := handlers.NewAnalyticsHandler(services.AnalyticsService)
		analyticsGroup := apiGroup.Group("/analytics")
		{
			analyticsGroup.GET("/dashboard", analyticsHandler.GetDashboard)
			analyticsGroup.GET("/forecasts", analyticsHandler.GetForecasts)
			analyticsGroup.GET("/anomalies", analyticsHandler.GetAnomalies)
			analyticsGroup.GET("/procurement", analyticsHandler.GetProcurement)
			analyticsGroup.GET("/movement", analyticsHandler.GetMovement)
			analyticsGroup.POST("/cache/clear", analyticsHandler.ClearCache)
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
