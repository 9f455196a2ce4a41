package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthPingTimeout = 2 * time.Second

// Pinger reports whether the database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness endpoint
type HealthHandler struct {
	BaseHandler
	db          Pinger
	environment string
	startTime   time.Time
	logger      *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, environment string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:          db,
		environment: environment,
		startTime:   time.Now(),
		logger:      logger,
	}
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Uptime      float64   `json:"uptime"` // seconds
	Environment string    `json:"environment"`
	Database    string    `json:"database"`
}

// Health handles GET /health. The process is alive whenever it can answer,
// so the status code is always 200 and the database field carries the
// dependency check.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()

	database := "ok"
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("Health check database ping failed", zap.Error(err))
		database = "error"
	}

	h.Success(c, HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.startTime).Seconds(),
		Environment: h.environment,
		Database:    database,
	}, "Service is healthy")
}
