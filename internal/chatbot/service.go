package chatbot

import (
	"context"
	"fmt"
	"sync"

	"challengebot/internal/challenge"
	"challengebot/internal/common"
	"challengebot/internal/config"
	"challengebot/internal/events"
	"challengebot/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Transport modes.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// ChatbotService defines the interface for chatbot operations
type ChatbotService interface {
	// Start validates the bot token, publishes the command menu and
	// configures the webhook or polling transport.
	Start(ctx context.Context) error
	// Run receives updates by long polling until ctx is cancelled. In
	// webhook mode it only blocks until ctx is cancelled.
	Run(ctx context.Context) error
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
	HandleWebhook(ctx context.Context, webhookData []byte) error
}

// chatbotService implements the ChatbotService interface
type chatbotService struct {
	eventBus   events.EventBus
	logger     *zap.Logger
	provider   TelegramProvider
	challenges challenge.Service
	parser     *WebhookParser
	keyboards  *KeyboardBuilder
	sessions   *SessionManager
	metrics    *metrics.Metrics
	config     config.ChatbotConfig
}

// NewChatbotService creates a new instance of ChatbotService and subscribes
// it to the challenge events it delivers.
func NewChatbotService(
	eventBus events.EventBus,
	logger *zap.Logger,
	cfg config.ChatbotConfig,
	provider TelegramProvider,
	challenges challenge.Service,
	clock common.Clock,
	m *metrics.Metrics,
) (ChatbotService, error) {
	if provider == nil {
		return nil, NewConfigurationError("provider", "telegram provider is required", "")
	}
	if challenges == nil {
		return nil, NewConfigurationError("challenges", "challenge service is required", "")
	}
	switch cfg.Mode {
	case "":
		cfg.Mode = ModePolling
	case ModePolling:
	case ModeWebhook:
		if cfg.WebhookURL == "" {
			return nil, NewConfigurationError("webhook_url", "required in webhook mode", "")
		}
		if !validSecretToken(cfg.WebhookSecret) {
			return nil, NewConfigurationError("webhook_secret",
				"required in webhook mode: 1-256 characters of A-Z, a-z, 0-9, _ and -", "")
		}
	default:
		return nil, NewConfigurationError("mode", "must be polling or webhook", cfg.Mode)
	}

	service := &chatbotService{
		eventBus:   eventBus,
		logger:     logger,
		provider:   provider,
		challenges: challenges,
		parser:     NewWebhookParser(),
		keyboards:  NewKeyboardBuilder(),
		sessions:   NewSessionManager(clock),
		metrics:    m,
		config:     cfg,
	}

	if err := service.setupEventSubscriptions(); err != nil {
		return nil, err
	}

	return service, nil
}

func (s *chatbotService) Start(ctx context.Context) error {
	me, err := s.provider.GetMe()
	if err != nil {
		return fmt.Errorf("failed to validate bot token: %w", err)
	}
	s.logger.Info("Chatbot starting",
		zap.String("username", me.UserName),
		zap.String("mode", s.config.Mode))

	if err := s.provider.SetCommands(s.keyboards.BuildBotCommands()); err != nil {
		s.logger.Warn("Failed to set bot commands", zap.Error(err))
	}

	if s.config.Mode == ModeWebhook {
		return s.provider.SetWebhook(s.config.WebhookURL, s.config.WebhookSecret)
	}

	// A leftover webhook makes getUpdates fail with 409 Conflict.
	if err := s.provider.DeleteWebhook(); err != nil {
		s.logger.Warn("Failed to delete webhook before polling", zap.Error(err))
	}
	return nil
}

func (s *chatbotService) Run(ctx context.Context) error {
	if s.config.Mode == ModeWebhook {
		<-ctx.Done()
		return nil
	}

	updates := s.provider.GetUpdatesChan(s.config.PollTimeout)
	s.logger.Info("Long polling started", zap.Int("poll_timeout", s.config.PollTimeout))

	// In-flight updates finish even after shutdown starts.
	handlerCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			s.provider.StopReceivingUpdates()
			s.logger.Info("Long polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.HandleUpdate(handlerCtx, update)
			}()
		}
	}
}

// HandleWebhook processes incoming webhook data from Telegram
func (s *chatbotService) HandleWebhook(ctx context.Context, webhookData []byte) error {
	update, err := s.parser.ParseUpdate(webhookData)
	if err != nil {
		s.logger.Error("Failed to parse webhook update",
			zap.Int("data_size", len(webhookData)),
			zap.Error(err))
		return WrapParsingError(err, "telegram_update")
	}

	s.HandleUpdate(ctx, *update)
	return nil
}

// HandleUpdate routes one Telegram update. Failures are answered to the
// user and logged; they never propagate to the transport.
func (s *chatbotService) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	correlationID := s.parser.BuildCorrelationID(&update)
	logger := s.logger.With(zap.String("correlation_id", correlationID))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Update handler panic recovered", zap.Any("panic", r))
		}
	}()

	userID, err := s.parser.GetUserID(&update)
	if err != nil {
		logger.Debug("Ignoring unsupported update", zap.Int("update_id", update.UpdateID), zap.Error(err))
		return
	}
	logger = logger.With(zap.Int64("user_id", userID))

	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		s.handleCallbackQuery(ctx, logger, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil && update.Message.Chat != nil:
		s.handleMessage(ctx, logger, update.Message)
	default:
		logger.Debug("Ignoring message without chat", zap.Int("update_id", update.UpdateID))
	}
}

// validSecretToken reports whether token is accepted by setWebhook as a
// secret_token.
func validSecretToken(token string) bool {
	if len(token) == 0 || len(token) > 256 {
		return false
	}
	for _, r := range token {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
