package chatbot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Reply keyboard button labels. Incoming text equal to a label is routed
// as a button press.
const (
	ButtonJoin    = "✅ Yes, sign me up!"
	ButtonDecline = "❌ No, not now"

	ButtonUsersList           = "👥 Users list"
	ButtonUserManagement      = "🔧 User management"
	ButtonChallengeManagement = "📝 Challenge management"
	ButtonStatistics          = "📊 Statistics"
	ButtonBack                = "⬅️ Back"
	ButtonCancel              = "❌ Cancel"
)

// isAdminMenuButton reports whether text is one of the admin panel buttons.
func isAdminMenuButton(text string) bool {
	switch text {
	case ButtonUsersList, ButtonUserManagement, ButtonChallengeManagement, ButtonStatistics, ButtonBack:
		return true
	default:
		return false
	}
}

// KeyboardBuilder provides utilities for creating reply and inline keyboards
type KeyboardBuilder struct{}

// NewKeyboardBuilder creates a new KeyboardBuilder instance
func NewKeyboardBuilder() *KeyboardBuilder {
	return &KeyboardBuilder{}
}

// BuildStartKeyboard offers registration to an unknown user
func (kb *KeyboardBuilder) BuildStartKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return singleColumn(ButtonJoin, ButtonDecline)
}

// BuildAdminKeyboard is the admin panel menu
func (kb *KeyboardBuilder) BuildAdminKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return singleColumn(
		ButtonUsersList,
		ButtonUserManagement,
		ButtonChallengeManagement,
		ButtonStatistics,
		ButtonBack,
	)
}

func (kb *KeyboardBuilder) BuildBackKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return singleColumn(ButtonBack)
}

func (kb *KeyboardBuilder) BuildCancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return singleColumn(ButtonCancel)
}

// BuildUserManagementKeyboard offers block/activate actions
func (kb *KeyboardBuilder) BuildUserManagementKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚫 Block", CallbackAdminBlock),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Activate", CallbackAdminActivate),
		),
	)
}

// BuildChallengeManagementKeyboard offers challenge replacement and task edit
func (kb *KeyboardBuilder) BuildChallengeManagementKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🆕 Create new challenge", CallbackCreateChallenge),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Change task", CallbackUpdateTask),
		),
	)
}

// BuildBotCommands is the command menu shown by Telegram clients
func (kb *KeyboardBuilder) BuildBotCommands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: string(CommandStart), Description: "Start working with the bot"},
		{Command: string(CommandAdmin), Description: "Admin panel"},
	}
}

func singleColumn(labels ...string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(labels))
	for _, label := range labels {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(label)))
	}
	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true
	return keyboard
}
