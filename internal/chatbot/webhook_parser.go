package chatbot

import (
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// WebhookParser provides utilities for parsing Telegram webhook updates
type WebhookParser struct{}

// NewWebhookParser creates a new WebhookParser instance
func NewWebhookParser() *WebhookParser {
	return &WebhookParser{}
}

// ParseUpdate unmarshals webhook data into a Telegram Update struct
func (p *WebhookParser) ParseUpdate(updateData []byte) (*tgbotapi.Update, error) {
	if len(updateData) == 0 {
		return nil, fmt.Errorf("empty update data")
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(updateData, &update); err != nil {
		return nil, fmt.Errorf("failed to unmarshal update data: %w", err)
	}

	if update.UpdateID == 0 {
		return nil, fmt.Errorf("invalid update: missing update ID")
	}

	return &update, nil
}

// BuildCorrelationID generates a unique correlation ID for tracking
func (p *WebhookParser) BuildCorrelationID(update *tgbotapi.Update) string {
	if update == nil {
		return uuid.NewString()
	}

	suffix := uuid.NewString()[:8]
	if update.Message != nil {
		return fmt.Sprintf("msg_%d_%d_%s", update.UpdateID, update.Message.MessageID, suffix)
	}
	if update.CallbackQuery != nil {
		return fmt.Sprintf("cb_%d_%s_%s", update.UpdateID, update.CallbackQuery.ID, suffix)
	}
	return fmt.Sprintf("upd_%d_%s", update.UpdateID, suffix)
}

// GetUserID extracts the sender's Telegram user ID from update
func (p *WebhookParser) GetUserID(update *tgbotapi.Update) (int64, error) {
	if update == nil {
		return 0, fmt.Errorf("update is nil")
	}

	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, nil
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID, nil
	default:
		return 0, fmt.Errorf("no user information found in update")
	}
}

// GetChatID extracts chat ID from update
func (p *WebhookParser) GetChatID(update *tgbotapi.Update) (int64, error) {
	if update == nil {
		return 0, fmt.Errorf("update is nil")
	}

	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID, nil
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID, nil
	default:
		return 0, fmt.Errorf("no chat information found in update")
	}
}
