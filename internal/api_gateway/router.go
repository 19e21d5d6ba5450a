package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Luckka/accounting-orchestrator/internal/api_gateway/handler"
	"github.com/Luckka/accounting-orchestrator/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	ingestHandler *handler.IngestHandler,
	batchHandler *handler.BatchHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Batch operations
		batches := v1.Group("/batches")
		{
			batches.POST("", ingestHandler.Create)
			batches.GET("/:batchId", batchHandler.GetByID)
			batches.GET("/:batchId/status", batchHandler.GetStatus)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
