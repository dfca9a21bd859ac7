package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes. metricsHandler serves Prometheus
// scrapes; nil disables the endpoint.
func SetupRoutes(router *gin.Engine, handler *Handler, metricsHandler http.Handler) {
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	v1 := router.Group("/api/v1")
	{
		analyze := v1.Group("/analyze")
		{
			analyze.POST("", handler.Analyze)               // POST /api/v1/analyze
			analyze.GET("/:document_id", handler.GetRecord) // GET /api/v1/analyze/:document_id
		}

		capabilities := v1.Group("/capabilities")
		{
			capabilities.GET("", handler.GetCapabilities)  // GET /api/v1/capabilities
			capabilities.POST("/reprobe", handler.Reprobe) // POST /api/v1/capabilities/reprobe
		}

		v1.POST("/evaluate/:stage", handler.Evaluate) // POST /api/v1/evaluate/:stage
	}
}
