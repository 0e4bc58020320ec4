package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

const serviceName = "docfill"

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db *sqlx.DB
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"service": serviceName, "status": "ok"})
}

// Readiness handles GET /readyz. The service is not ready until the session
// store answers a ping.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		log.Printf("handler.HealthHandler: readiness ping failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"service": serviceName,
			"status":  "unavailable",
			"checks":  gin.H{"postgres": "down"},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"service": serviceName,
		"status":  "ok",
		"checks":  gin.H{"postgres": "up"},
	})
}
