// Package httpapi exposes the graph orchestrator over HTTP, in the
// teacher's gin router idiom: a zap logging middleware, JSON responses, and
// a thin handler per route that never reaches past the orchestrator's own
// public API.
package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clone-llm/internal/graph"
	"clone-llm/internal/repository"
)

// NewRouter wires the story-generation routes against an Orchestrator.
// beatRepo/arcRepo may be nil when no database is configured.
func NewRouter(logger *zap.Logger, orchestrator *graph.Orchestrator, beatRepo repository.BeatRepository, arcRepo repository.CharacterArcRepository) *gin.Engine {
	r := gin.New()
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	h := NewStoryHandler(logger, orchestrator, beatRepo, arcRepo)

	stories := r.Group("/stories")
	stories.POST("/generate", h.Generate)
	stories.GET("/:id/stream", h.Stream)

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
