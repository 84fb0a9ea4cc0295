package api

import (
	"net/http"
	"time"

	"github.com/engagingnewsproject/article-experiment-api/internal/config"
	"github.com/engagingnewsproject/article-experiment-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	articleHandler := NewArticleHandler(services, log)
	commentHandler := NewCommentHandler(services, log)
	eventHandler := NewEventHandler(services, log)
	authHandler := NewAuthHandler(services, log)
	studyHandler := NewStudyHandler(services, log)
	importHandler := NewImportHandler(services, cfg, log)
	exportHandler := NewExportHandler(services, cfg, log)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/metrics", metricsHandler(services))

	// API v1
	v1 := router.Group("/v1")
	{
		// Public article rendering and participant interactions
		v1.GET("/render/:slug", articleHandler.Render)
		v1.POST("/articles/:article_id/comments", commentHandler.PostComment)
		v1.POST("/articles/:article_id/comments/:comment_id/replies", commentHandler.PostReply)
		v1.POST("/articles/:article_id/comments/:comment_id/vote", commentHandler.Vote)
		v1.POST("/events", eventHandler.LogEvent)
		v1.POST("/bridge", eventHandler.HandleBridge)

		// Admin session
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
		}

		// Admin console, session-gated
		admin := v1.Group("/admin")
		admin.Use(authMiddleware(services.Auth))
		{
			admin.GET("/articles", articleHandler.List)
			admin.POST("/articles", articleHandler.Create)
			admin.GET("/articles/:article_id", articleHandler.Get)
			admin.PUT("/articles/:article_id", articleHandler.Update)
			admin.DELETE("/articles/:article_id", articleHandler.Delete)

			admin.POST("/articles/:article_id/default-comments", importHandler.ImportDefaultComments)
			admin.DELETE("/articles/:article_id/default-comments", importHandler.ClearDefaultComments)
			admin.DELETE("/articles/:article_id/comments/:comment_id", commentHandler.Remove)

			admin.GET("/studies", studyHandler.List)
			admin.POST("/studies", studyHandler.Create)
			admin.GET("/studies/:study_id", studyHandler.Get)
			admin.PUT("/studies/:study_id", studyHandler.Update)
			admin.DELETE("/studies/:study_id", studyHandler.Delete)

			admin.GET("/exports", exportHandler.StreamEvents)
			admin.POST("/exports/qualtrics-merge", exportHandler.MergeQualtrics)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "article-experiment-api",
	})
}

// metricsHandler returns entity counts
func metricsHandler(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := services.Export.GetCounts(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to collect metrics"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"database":  counts,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS. The article page is embedded in a
// Qualtrics iframe, so cross-origin requests are the normal case.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
