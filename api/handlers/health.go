package handlers

import (
	"net/http"
	"time"

	"challengebot/internal/database"
	"challengebot/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const serviceName = "challengebot"

// SchedulerStatus reports whether the job scheduler is running.
type SchedulerStatus interface {
	IsRunning() bool
}

type HealthHandler struct {
	db        *gorm.DB
	scheduler SchedulerStatus
	logger    *logger.Logger
}

// NewHealthHandler creates a health handler. A nil scheduler means
// scheduling is disabled and is not treated as a failure.
func NewHealthHandler(db *gorm.DB, scheduler SchedulerStatus, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		scheduler: scheduler,
		logger:    logger,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	status := "ok"
	statusCode := http.StatusOK
	checks := gin.H{"database": "ok", "scheduler": "disabled"}

	if err := database.HealthCheck(h.db); err != nil {
		requestLogger(c, h.logger).Errorw("Database health check failed", "error", err)
		checks["database"] = "error"
		status = "error"
		statusCode = http.StatusServiceUnavailable
	}

	if h.scheduler != nil {
		if h.scheduler.IsRunning() {
			checks["scheduler"] = "running"
		} else {
			checks["scheduler"] = "stopped"
			status = "error"
			statusCode = http.StatusServiceUnavailable
		}
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   serviceName,
		"checks":    checks,
	})
}

// requestLogger returns the request-scoped logger set by the logging
// middleware, or fallback.
func requestLogger(c *gin.Context, fallback *logger.Logger) *logger.Logger {
	if v, ok := c.Get("logger"); ok {
		if l, ok := v.(*logger.Logger); ok {
			return l
		}
	}
	return fallback
}
