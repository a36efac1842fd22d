package chatbot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramProvider defines the contract for Telegram API operations
type TelegramProvider interface {
	// SendMessage sends a plain text message to the specified chat
	SendMessage(chatID int64, text string) error

	// SendMessageWithKeyboard sends a message with an inline keyboard
	SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error

	// SendMessageWithReplyKeyboard sends a message that replaces the user's reply keyboard
	SendMessageWithReplyKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) error

	// SendChannelMessage posts text to a channel given by numeric id or @username
	SendChannelMessage(channel, text string) error

	// SendChannelVideoNote re-posts an already uploaded video note to a channel
	SendChannelVideoNote(channel, fileID string) error

	// AnswerCallback acknowledges an inline button press
	AnswerCallback(callbackID, text string) error

	// IsChannelMember reports whether the user is a member, administrator or creator of the channel
	IsChannelMember(channel string, userID int64) (bool, error)

	// SetCommands publishes the bot command menu
	SetCommands(commands []tgbotapi.BotCommand) error

	// SetWebhook configures the webhook URL for receiving updates. Telegram
	// echoes secretToken in the X-Telegram-Bot-Api-Secret-Token header.
	SetWebhook(webhookURL, secretToken string) error

	// DeleteWebhook removes the configured webhook
	DeleteWebhook() error

	// GetMe returns information about the bot
	GetMe() (*tgbotapi.User, error)

	// GetUpdatesChan starts long polling
	GetUpdatesChan(timeout int) tgbotapi.UpdatesChannel

	// StopReceivingUpdates stops long polling
	StopReceivingUpdates()
}
