package router

import (
	"github.com/gin-gonic/gin"

	"docfill/internal/handler"
	"docfill/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	allowedOrigins []string,
	documentH *handler.DocumentHandler,
	validationH *handler.ValidationHandler,
	sessionH *handler.SessionHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Stateless document pipeline
	docs := v1.Group("/documents")
	docs.POST("/process", documentH.Process)
	docs.POST("/placeholders", documentH.Placeholders)
	docs.POST("/fill", documentH.Fill)

	// Stateless validation
	v1.POST("/validate", validationH.Validate)
	v1.POST("/validate-batch", validationH.ValidateBatch)

	// Fill sessions
	sessions := v1.Group("/sessions")
	sessions.POST("", sessionH.Create)
	sessions.GET("", sessionH.List)
	sessions.GET("/:id", sessionH.GetByID)
	sessions.POST("/:id/submit", sessionH.Submit)
	sessions.POST("/:id/confirm", sessionH.Confirm)
	sessions.POST("/:id/finalize", sessionH.Finalize)
	sessions.GET("/:id/download", sessionH.Download)
	sessions.GET("/:id/export", sessionH.Export)
	sessions.DELETE("/:id", sessionH.Delete)

	return r
}
