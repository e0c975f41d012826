package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all service routes. The metrics handler is
// optional; health endpoints are always registered.
func SetupRoutes(router *gin.Engine, handler *Handler, health HealthOptions, metrics http.Handler) {
	startTime := time.Now()

	router.GET("/health", healthHandler(health, startTime))
	router.HEAD("/health", headHealthHandler())
	router.GET("/ready", readyHandler())

	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/analyze", handler.Analyze) // POST /api/v1/analyze
	}
}
