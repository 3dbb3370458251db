package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockerp/internal/infrastructure/storage/postgres"
)

// HealthHandler serves the liveness/readiness probes and a small info
// endpoint with pool statistics.
type HealthHandler struct {
	pool *postgres.Pool
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(pool *postgres.Pool) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// RegisterRoutes registers health routes.
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/live", h.Live)
	rg.GET("/ready", h.Ready)
	rg.GET("/info", h.Info)
}

// Live reports whether the process is running at all.
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the service can take traffic. The database is the
// only hard dependency, so it is the only check.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	status, checks := http.StatusOK, gin.H{"database": "healthy"}

	if err := h.pool.Ping(c.Request.Context()); err != nil {
		status = http.StatusServiceUnavailable
		checks["database"] = "unhealthy: " + err.Error()
	}

	verdict := "ok"
	if status != http.StatusOK {
		verdict = "error"
	}
	c.JSON(status, gin.H{"status": verdict, "checks": checks})
}

// Info returns application and connection pool details.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	stat := h.pool.Stat()

	c.JSON(http.StatusOK, gin.H{
		"app":     "stockerp",
		"version": "0.1.0",
		"database": gin.H{
			"total_conns":    stat.TotalConns(),
			"acquired_conns": stat.AcquiredConns(),
			"idle_conns":     stat.IdleConns(),
			"max_conns":      stat.MaxConns(),
		},
	})
}
