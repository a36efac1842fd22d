package routes

import (
	"challengebot/api/handlers"
	"challengebot/api/middleware"
	"challengebot/internal/metrics"
	"challengebot/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Dependencies are the components exposed by the ops server. Webhook and
// Scheduler may be nil when the bot polls or scheduling is disabled.
// WebhookSecret authenticates Telegram's webhook requests.
type Dependencies struct {
	DB            *gorm.DB
	Logger        *logger.Logger
	Stats         handlers.StatsProvider
	Webhook       handlers.WebhookProcessor
	WebhookSecret string
	Scheduler     handlers.SchedulerStatus
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	router.Use(middleware.RequestLogging(deps.Logger))
	router.Use(middleware.HTTPMetrics(deps.Metrics))
	router.Use(gin.Recovery())

	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Scheduler, deps.Logger)
	statsHandler := handlers.NewStatsHandler(deps.Stats, deps.Logger)

	router.GET("/health", healthHandler.Check)
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Check)
		v1.GET("/stats", statsHandler.GetStats)

		if deps.Webhook != nil {
			webhookHandler := handlers.NewWebhookHandler(deps.Webhook, deps.WebhookSecret, deps.Logger)
			v1.POST("/telegram/webhook", webhookHandler.HandleTelegramWebhook)
		}
	}
}
