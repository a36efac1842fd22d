package chatbot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"challengebot/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Chat member statuses that count as subscribed.
const (
	memberStatusMember        = "member"
	memberStatusAdministrator = "administrator"
	memberStatusCreator       = "creator"
)

// telegramProvider implements the TelegramProvider interface using the telegram-bot-api library
type telegramProvider struct {
	bot     *tgbotapi.BotAPI
	logger  *zap.Logger
	config  config.ChatbotConfig
	limiter *rate.Limiter
}

// NewTelegramProvider creates a new TelegramProvider instance
func NewTelegramProvider(cfg config.ChatbotConfig, logger *zap.Logger) (TelegramProvider, error) {
	if cfg.Token == "" {
		return nil, NewConfigurationError("token", "telegram bot token is required", "")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info("Telegram bot initialized successfully", zap.String("username", bot.Self.UserName))

	return &telegramProvider{
		bot:     bot,
		logger:  logger,
		config:  cfg,
		limiter: newSendLimiter(cfg.RateLimit),
	}, nil
}

// newSendLimiter allows perSecond outbound requests with a burst of one second's worth.
func newSendLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// channelChat resolves a configured channel into a numeric chat id or an @username.
func channelChat(channel string) (int64, string) {
	if id, err := strconv.ParseInt(channel, 10, 64); err == nil {
		return id, ""
	}
	if !strings.HasPrefix(channel, "@") {
		channel = "@" + channel
	}
	return 0, channel
}

func (p *telegramProvider) send(operation string, chattable tgbotapi.Chattable) error {
	if err := p.limiter.Wait(context.Background()); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	if _, err := p.bot.Send(chattable); err != nil {
		return WrapTelegramError(err, operation)
	}
	return nil
}

func (p *telegramProvider) request(operation string, chattable tgbotapi.Chattable) error {
	if err := p.limiter.Wait(context.Background()); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	if _, err := p.bot.Request(chattable); err != nil {
		return WrapTelegramError(err, operation)
	}
	return nil
}

// SendMessage sends a plain text message to the specified chat
func (p *telegramProvider) SendMessage(chatID int64, text string) error {
	p.logger.Debug("Sending message",
		zap.Int64("chat_id", chatID),
		zap.Int("text_length", len(text)))

	msg := tgbotapi.NewMessage(chatID, text)
	if err := p.send("send_message", msg); err != nil {
		p.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
		return err
	}
	return nil
}

// SendMessageWithKeyboard sends a message with an inline keyboard
func (p *telegramProvider) SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	p.logger.Debug("Sending message with keyboard",
		zap.Int64("chat_id", chatID),
		zap.Int("keyboard_rows", len(keyboard.InlineKeyboard)))

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if err := p.send("send_message_with_keyboard", msg); err != nil {
		p.logger.Error("Failed to send message with keyboard", zap.Int64("chat_id", chatID), zap.Error(err))
		return err
	}
	return nil
}

func (p *telegramProvider) SendMessageWithReplyKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if err := p.send("send_message_with_reply_keyboard", msg); err != nil {
		p.logger.Error("Failed to send message with reply keyboard", zap.Int64("chat_id", chatID), zap.Error(err))
		return err
	}
	return nil
}

func (p *telegramProvider) SendChannelMessage(channel, text string) error {
	id, username := channelChat(channel)
	msg := tgbotapi.NewMessage(id, text)
	msg.ChannelUsername = username
	if err := p.send("send_channel_message", msg); err != nil {
		p.logger.Error("Failed to post to channel", zap.String("channel", channel), zap.Error(err))
		return err
	}
	return nil
}

func (p *telegramProvider) SendChannelVideoNote(channel, fileID string) error {
	id, username := channelChat(channel)
	note := tgbotapi.NewVideoNote(id, 0, tgbotapi.FileID(fileID))
	note.ChannelUsername = username
	if err := p.send("send_channel_video_note", note); err != nil {
		p.logger.Error("Failed to post video note to channel", zap.String("channel", channel), zap.Error(err))
		return err
	}
	return nil
}

func (p *telegramProvider) AnswerCallback(callbackID, text string) error {
	return p.request("answer_callback", tgbotapi.NewCallback(callbackID, text))
}

// IsChannelMember checks the user's membership status in the channel.
func (p *telegramProvider) IsChannelMember(channel string, userID int64) (bool, error) {
	id, username := channelChat(channel)
	member, err := p.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID:             id,
			SuperGroupUsername: username,
			UserID:             userID,
		},
	})
	if err != nil {
		return false, WrapTelegramError(err, "get_chat_member")
	}

	switch member.Status {
	case memberStatusMember, memberStatusAdministrator, memberStatusCreator:
		return true, nil
	default:
		return false, nil
	}
}

func (p *telegramProvider) SetCommands(commands []tgbotapi.BotCommand) error {
	if err := p.request("set_my_commands", tgbotapi.NewSetMyCommands(commands...)); err != nil {
		p.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}
	return nil
}

// SetWebhook configures the webhook URL for receiving updates
func (p *telegramProvider) SetWebhook(webhookURL, secretToken string) error {
	p.logger.Info("Setting webhook", zap.String("webhook_url", webhookURL))

	webhookConfig, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return NewConfigurationError("webhook_url", err.Error(), webhookURL)
	}

	// WebhookConfig has no secret_token field, so the request is built by hand.
	params := tgbotapi.Params{"url": webhookConfig.URL.String()}
	params.AddNonEmpty("secret_token", secretToken)

	if _, err := p.bot.MakeRequest("setWebhook", params); err != nil {
		p.logger.Error("Failed to set webhook",
			zap.String("webhook_url", webhookURL),
			zap.Error(err))
		return WrapTelegramError(err, "set_webhook")
	}

	p.logger.Info("Webhook set successfully", zap.String("webhook_url", webhookURL))
	return nil
}

// DeleteWebhook removes the configured webhook
func (p *telegramProvider) DeleteWebhook() error {
	if _, err := p.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		p.logger.Error("Failed to delete webhook", zap.Error(err))
		return WrapTelegramError(err, "delete_webhook")
	}
	return nil
}

// GetMe returns information about the bot
func (p *telegramProvider) GetMe() (*tgbotapi.User, error) {
	me, err := p.bot.GetMe()
	if err != nil {
		return nil, WrapTelegramError(err, "get_me")
	}
	return &me, nil
}

func (p *telegramProvider) GetUpdatesChan(timeout int) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeout
	return p.bot.GetUpdatesChan(u)
}

func (p *telegramProvider) StopReceivingUpdates() {
	p.bot.StopReceivingUpdates()
}
