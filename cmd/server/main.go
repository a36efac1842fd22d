package main

import (
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically

	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"challengebot/api/routes"
	"challengebot/internal/challenge"
	"challengebot/internal/chatbot"
	"challengebot/internal/common"
	"challengebot/internal/config"
	"challengebot/internal/database"
	"challengebot/internal/events"
	"challengebot/internal/metrics"
	"challengebot/internal/scheduler"
	"challengebot/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logger.New(cfg.Server.LogLevel)
	defer logger.Sync()

	// Services log through the structured zap logger
	zapLogger := logger.SugaredLogger.Desugar()

	location, err := time.LoadLocation(cfg.Challenge.Timezone)
	if err != nil {
		logger.Fatalw("Invalid challenge timezone", "timezone", cfg.Challenge.Timezone, "error", err)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalw("Failed to connect to database", "driver", cfg.Database.Driver, "error", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Errorw("Failed to close database", "error", err)
		}
	}()

	if err := challenge.RunMigrations(db); err != nil {
		logger.Fatalw("Failed to run challenge migrations", "error", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMetrics := metrics.New(registry)

	eventBus := events.NewEventBus(zapLogger)
	clock := common.NewRealClock()

	challengeRepository := challenge.NewGormRepository(db, zapLogger)
	challengeService := challenge.NewChallengeService(eventBus, zapLogger, challengeRepository, challenge.Options{
		Location:         location,
		ReminderInterval: time.Duration(cfg.Challenge.ReminderIntervalHours * float64(time.Hour)),
		Clock:            clock,
		Metrics:          promMetrics,
	})

	provider, err := chatbot.NewTelegramProvider(cfg.Chatbot, zapLogger)
	if err != nil {
		logger.Fatalw("Failed to initialize Telegram provider", "error", err)
	}
	chatbotService, err := chatbot.NewChatbotService(eventBus, zapLogger, cfg.Chatbot, provider, challengeService, clock, promMetrics)
	if err != nil {
		logger.Fatalw("Failed to initialize chatbot service", "error", err)
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Subscribers are in place, so a bootstrap challenge is announced.
	active, created, err := challengeService.EnsureChallenge(startupCtx,
		cfg.Challenge.DefaultName, cfg.Challenge.DefaultTask, cfg.Challenge.DefaultDays)
	if err != nil {
		logger.Fatalw("Failed to ensure an initial challenge", "error", err)
	}
	if active != nil {
		logger.Infow("Active challenge",
			"name", active.Name,
			"total_days", active.TotalDays,
			"current_day", active.CurrentDay,
			"created", created)
	}

	if err := chatbotService.Start(startupCtx); err != nil {
		logger.Fatalw("Failed to start chatbot", "error", err)
	}

	var jobScheduler scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobScheduler, err = scheduler.NewScheduler(cfg.Scheduler, location, challengeService, clock, zapLogger, promMetrics)
		if err != nil {
			logger.Fatalw("Failed to create scheduler", "error", err)
		}
		if err := jobScheduler.Start(context.Background()); err != nil {
			logger.Fatalw("Failed to start scheduler", "error", err)
		}
		logger.Infow("Scheduler started",
			"rollover_time", cfg.Scheduler.RolloverTime,
			"reminder_times", cfg.Scheduler.ReminderTimes,
			"timezone", location.String())
	} else {
		logger.Info("Scheduler disabled")
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := routes.Dependencies{
		DB:       db,
		Logger:   logger,
		Stats:    challengeService,
		Metrics:  promMetrics,
		Gatherer: registry,
	}
	if cfg.Chatbot.Mode == chatbot.ModeWebhook {
		deps.Webhook = chatbotService
		deps.WebhookSecret = cfg.Chatbot.WebhookSecret
	}
	if jobScheduler != nil {
		deps.Scheduler = jobScheduler
	}

	router := gin.New()
	routes.SetupRoutes(router, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Infow("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("Failed to start server", "error", err)
		}
	}()

	botCtx, stopBot := context.WithCancel(context.Background())
	botDone := make(chan struct{})
	go func() {
		defer close(botDone)
		if err := chatbotService.Run(botCtx); err != nil {
			logger.Errorw("Chatbot stopped with error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	// Stop scheduling first so no sweep starts against a closing bus.
	if jobScheduler != nil {
		if err := jobScheduler.Stop(); err != nil {
			logger.Errorw("Failed to stop scheduler gracefully", "error", err)
		}
	}

	stopBot()
	<-botDone

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Scheduler.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorw("Server forced to shutdown", "error", err)
	}

	// Close waits for async deliveries already queued on the bus.
	if err := eventBus.Close(); err != nil {
		logger.Errorw("Failed to close event bus", "error", err)
	}

	logger.Info("Server exited")
}
