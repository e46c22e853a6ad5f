package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opsync/backend/internal/infrastructure/persistence"
)

// HealthHandler reports service liveness and database connectivity
type HealthHandler struct {
	BaseHandler
	db        *persistence.Database
	startedAt time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *persistence.Database) *HealthHandler {
	return &HealthHandler{db: db, startedAt: time.Now()}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// HealthStatus is the health check payload
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

// Health returns 200 when the service and database are reachable,
// 503 when the database ping fails
func (h *HealthHandler) Health(c *gin.Context) {
	status := HealthStatus{
		Status:   "ok",
		Database: "up",
		Uptime:   time.Since(h.startedAt).Round(time.Second).String(),
	}

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			status.Status = "degraded"
			status.Database = "down"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
	}
	c.JSON(http.StatusOK, status)
}
