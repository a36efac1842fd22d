package handlers

import (
	"context"
	"net/http"

	"challengebot/internal/challenge"
	"challengebot/pkg/logger"

	"github.com/gin-gonic/gin"
)

// StatsProvider computes aggregate challenge statistics.
type StatsProvider interface {
	GetStats(ctx context.Context) (*challenge.Stats, error)
}

// StatsHandler serves the read-only statistics endpoint
type StatsHandler struct {
	stats  StatsProvider
	logger *logger.Logger
}

func NewStatsHandler(stats StatsProvider, logger *logger.Logger) *StatsHandler {
	return &StatsHandler{
		stats:  stats,
		logger: logger,
	}
}

func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, err := h.stats.GetStats(c.Request.Context())
	if err != nil {
		requestLogger(c, h.logger).Errorw("Failed to compute stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
