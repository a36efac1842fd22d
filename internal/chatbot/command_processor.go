package chatbot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"challengebot/internal/challenge"
	"challengebot/internal/common"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (s *chatbotService) handleMessage(ctx context.Context, logger *zap.Logger, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	isAdmin := s.config.IsAdmin(userID)

	if msg.VideoNote != nil {
		s.handleVideoNote(ctx, logger, msg)
		return
	}

	if msg.IsCommand() {
		command := Command(msg.Command())
		if !command.IsValid() {
			logger.Debug("Ignoring unknown command", zap.String("command", string(command)))
			return
		}
		s.handleCommand(ctx, logger, command, msg)
		return
	}

	text := strings.TrimSpace(msg.Text)

	if isAdmin {
		switch {
		case text == ButtonCancel:
			s.sessions.Reset(userID)
			s.replyWithKeyboard(chatID, textCancelled, s.keyboards.BuildAdminKeyboard())
			return
		case isAdminMenuButton(text):
			// Navigating the menu abandons an unfinished prompt.
			s.sessions.Reset(userID)
		default:
			if session := s.sessions.GetSession(userID); session.State != SessionStateIdle {
				s.handleAdminInput(ctx, logger, chatID, session, text)
				return
			}
		}
	}

	switch text {
	case ButtonJoin:
		s.handleJoin(ctx, logger, msg)
	case ButtonDecline:
		s.replyForRole(chatID, isAdmin, textDeclined)
	case ButtonBack:
		if isAdmin {
			s.replyWithKeyboard(chatID, textAdminPanel, s.keyboards.BuildAdminKeyboard())
		}
	case ButtonUsersList, ButtonUserManagement, ButtonChallengeManagement, ButtonStatistics:
		if isAdmin {
			s.handleAdminMenu(ctx, logger, chatID, text)
		}
	default:
		logger.Debug("Ignoring unrecognized message")
	}
}

func (s *chatbotService) handleCommand(ctx context.Context, logger *zap.Logger, command Command, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	logger.Info("Processing command", zap.String("command", string(command)))

	switch command {
	case CommandStart:
		s.handleStart(ctx, logger, userID, chatID)
	case CommandAdmin:
		if !s.config.IsAdmin(userID) {
			s.reply(chatID, textNoAccess)
			return
		}
		s.sessions.Reset(userID)
		s.replyWithKeyboard(chatID, textAdminPanel, s.keyboards.BuildAdminKeyboard())
	case CommandTest:
		if !s.config.IsAdmin(userID) {
			s.reply(chatID, textNoCommandAccess)
			return
		}
		s.reply(chatID, textTestOK)
	}
}

func (s *chatbotService) handleStart(ctx context.Context, logger *zap.Logger, userID, chatID int64) {
	progress, err := s.challenges.GetProgress(ctx, userID)
	if errors.Is(err, challenge.ErrNotRegistered) {
		s.replyWithKeyboard(chatID, textGreeting, s.keyboards.BuildStartKeyboard())
		return
	}
	if err != nil {
		logger.Error("Failed to load progress", zap.Error(err))
		s.reply(chatID, textTryAgainLater)
		return
	}
	s.reply(chatID, progressText(progress))
}

func (s *chatbotService) handleJoin(ctx context.Context, logger *zap.Logger, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	isAdmin := s.config.IsAdmin(userID)

	if s.config.RequireSubscription && s.config.ChannelID != "" {
		subscribed, err := s.provider.IsChannelMember(s.config.ChannelID, userID)
		if err != nil {
			logger.Warn("Subscription check failed, treating as not subscribed", zap.Error(err))
		}
		if !subscribed {
			text := subscriptionRequiredText(s.config.ChannelLink)
			if isAdmin {
				s.replyWithKeyboard(chatID, text, s.keyboards.BuildStartKeyboard())
			} else {
				s.reply(chatID, text)
			}
			return
		}
	}

	_, created, err := s.challenges.Register(ctx, userID, msg.From.UserName)
	if err != nil {
		logger.Error("Failed to register user", zap.Error(err))
		s.reply(chatID, textTryAgainLater)
		return
	}

	progress, err := s.challenges.GetProgress(ctx, userID)
	if err != nil {
		logger.Error("Failed to load progress", zap.Error(err))
		s.reply(chatID, textTryAgainLater)
		return
	}

	logger.Info("User joined", zap.Bool("created", created), zap.Int("current_day", progress.CurrentDay))
	s.replyForRole(chatID, isAdmin, registeredText(progress))
}

func (s *chatbotService) handleVideoNote(ctx context.Context, logger *zap.Logger, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	outcome, err := s.challenges.RecordSubmission(ctx, challenge.SubmissionRequest{
		UserID:   msg.From.ID,
		Username: msg.From.UserName,
		MediaRef: msg.VideoNote.FileID,
	})
	if err != nil {
		s.reply(chatID, submissionErrorText(err))
		if !challenge.IsDomainError(err) {
			logger.Error("Failed to record submission", zap.Error(err))
		}
		return
	}

	logger.Info("Submission accepted", zap.Int("day", outcome.Day))
	s.reply(chatID, submissionAcceptedText(outcome))
}

func submissionErrorText(err error) string {
	switch {
	case errors.Is(err, challenge.ErrNotRegistered):
		return textRegisterFirst
	case errors.Is(err, challenge.ErrUserBlocked):
		return textSubmissionBlocked
	case errors.Is(err, challenge.ErrNoActiveChallenge):
		return textNoActiveChallenge
	case errors.Is(err, challenge.ErrNotStarted):
		return textNotStarted
	case errors.Is(err, challenge.ErrAlreadySubmittedToday):
		return textAlreadySubmitted
	default:
		return textTryAgainLater
	}
}

func (s *chatbotService) handleAdminMenu(ctx context.Context, logger *zap.Logger, chatID int64, item string) {
	switch item {
	case ButtonUsersList:
		users, err := s.challenges.ListUsers(ctx)
		if err != nil {
			logger.Error("Failed to list users", zap.Error(err))
			s.reply(chatID, textTryAgainLater)
			return
		}
		for _, part := range usersListMessages(users) {
			s.reply(chatID, part)
		}
	case ButtonUserManagement:
		s.replyWithInline(chatID, textChooseAction, s.keyboards.BuildUserManagementKeyboard())
	case ButtonChallengeManagement:
		active, err := s.challenges.GetActiveChallenge(ctx)
		if err != nil {
			logger.Error("Failed to load active challenge", zap.Error(err))
			s.reply(chatID, textTryAgainLater)
			return
		}
		s.replyWithInline(chatID, challengeInfoText(active), s.keyboards.BuildChallengeManagementKeyboard())
	case ButtonStatistics:
		stats, err := s.challenges.GetStats(ctx)
		if err != nil {
			logger.Error("Failed to compute stats", zap.Error(err))
			s.reply(chatID, textTryAgainLater)
			return
		}
		s.reply(chatID, statsText(stats))
	}
}

func (s *chatbotService) handleCallbackQuery(ctx context.Context, logger *zap.Logger, cb *tgbotapi.CallbackQuery) {
	userID := cb.From.ID
	logger = logger.With(zap.String("action", cb.Data))

	if err := s.provider.AnswerCallback(cb.ID, ""); err != nil {
		logger.Warn("Failed to answer callback", zap.Error(err))
	}

	if !s.config.IsAdmin(userID) {
		logger.Warn("Ignoring admin callback from non-admin")
		return
	}

	chatID, err := s.parser.GetChatID(&tgbotapi.Update{CallbackQuery: cb})
	if err != nil {
		chatID = userID
	}

	var (
		next   SessionState
		prompt string
	)
	switch cb.Data {
	case CallbackCreateChallenge:
		next, prompt = SessionStateCollectingName, textEnterChallengeName
	case CallbackUpdateTask:
		next, prompt = SessionStateCollectingTaskUpdate, textEnterNewTask
	case CallbackAdminBlock:
		next, prompt = SessionStateCollectingBlockID, textEnterBlockUserID
	case CallbackAdminActivate:
		next, prompt = SessionStateCollectingActivateID, textEnterActivateUserID
	default:
		logger.Debug("Ignoring unknown callback")
		return
	}

	if err := s.sessions.SetSession(AdminSession{UserID: userID, State: next}); err != nil {
		logger.Error("Failed to store admin session", zap.Error(err))
		return
	}
	s.replyWithKeyboard(chatID, prompt, s.keyboards.BuildCancelKeyboard())
}

// handleAdminInput advances the admin conversation. Invalid input keeps
// the current state and asks again.
func (s *chatbotService) handleAdminInput(ctx context.Context, logger *zap.Logger, chatID int64, session AdminSession, text string) {
	cancelKeyboard := s.keyboards.BuildCancelKeyboard()
	adminKeyboard := s.keyboards.BuildAdminKeyboard()
	logger = logger.With(zap.String("operation", string(session.State)))

	switch session.State {
	case SessionStateCollectingName:
		if text == "" {
			s.replyWithKeyboard(chatID, textEmptyValue, cancelKeyboard)
			return
		}
		session.ChallengeName = text
		session.State = SessionStateCollectingTask
		if err := s.sessions.SetSession(session); err != nil {
			logger.Error("Failed to store admin session", zap.Error(err))
			return
		}
		s.replyWithKeyboard(chatID, textEnterChallengeTask, cancelKeyboard)

	case SessionStateCollectingTask:
		if text == "" {
			s.replyWithKeyboard(chatID, textEmptyValue, cancelKeyboard)
			return
		}
		session.ChallengeTask = text
		session.State = SessionStateCollectingDays
		if err := s.sessions.SetSession(session); err != nil {
			logger.Error("Failed to store admin session", zap.Error(err))
			return
		}
		s.replyWithKeyboard(chatID, textEnterChallengeDays, cancelKeyboard)

	case SessionStateCollectingDays:
		days, err := strconv.Atoi(text)
		if err != nil {
			s.reply(chatID, textDaysInvalid)
			return
		}
		if days <= 0 {
			s.reply(chatID, textDaysMustBePositive)
			return
		}

		created, err := s.challenges.CreateChallenge(ctx, session.ChallengeName, session.ChallengeTask, days)
		s.sessions.Reset(session.UserID)
		if created == nil {
			logger.Error("Failed to create challenge", zap.Error(err))
			s.replyWithKeyboard(chatID, adminErrorText(err), adminKeyboard)
			return
		}
		reply := challengeCreatedText(created)
		if err != nil {
			logger.Error("Challenge created but user reset failed", zap.Error(err))
			reply += "\n⚠️ Resetting users failed. Create the challenge again to retry."
		}
		s.replyWithKeyboard(chatID, reply, adminKeyboard)

	case SessionStateCollectingTaskUpdate:
		if text == "" {
			s.replyWithKeyboard(chatID, textEmptyValue, cancelKeyboard)
			return
		}
		_, err := s.challenges.UpdateTask(ctx, text)
		s.sessions.Reset(session.UserID)
		if err != nil {
			logger.Error("Failed to update task", zap.Error(err))
			s.replyWithKeyboard(chatID, adminErrorText(err), adminKeyboard)
			return
		}
		s.replyWithKeyboard(chatID, taskUpdatedText(text), adminKeyboard)

	case SessionStateCollectingBlockID, SessionStateCollectingActivateID:
		targetID, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			s.replyWithKeyboard(chatID, textUserIDInvalid, cancelKeyboard)
			return
		}

		status := common.UserStatusBlocked
		if session.State == SessionStateCollectingActivateID {
			status = common.UserStatusActive
		}

		_, err = s.challenges.SetUserStatus(ctx, targetID, status)
		s.sessions.Reset(session.UserID)
		if err != nil {
			if !errors.Is(err, challenge.ErrUserNotFound) {
				logger.Error("Failed to change user status", zap.Int64("target_id", targetID), zap.Error(err))
			}
			s.replyWithKeyboard(chatID, adminErrorText(err), adminKeyboard)
			return
		}
		logger.Info("User status changed", zap.Int64("target_id", targetID), zap.String("status", status.String()))
		s.replyWithKeyboard(chatID, statusChangedText(targetID, status), adminKeyboard)

	default:
		s.sessions.Reset(session.UserID)
	}
}

func adminErrorText(err error) string {
	var validationErr challenge.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return "❌ " + validationErr.Message()
	case errors.Is(err, challenge.ErrUserNotFound):
		return textUserNotFound
	case errors.Is(err, challenge.ErrNoActiveChallenge):
		return textNoActiveChallengeSet
	default:
		return textTryAgainLater
	}
}

// replyForRole answers admins with the back keyboard and everyone else with plain text.
func (s *chatbotService) replyForRole(chatID int64, isAdmin bool, text string) {
	if isAdmin {
		s.replyWithKeyboard(chatID, text, s.keyboards.BuildBackKeyboard())
		return
	}
	s.reply(chatID, text)
}

func (s *chatbotService) reply(chatID int64, text string) {
	if err := s.provider.SendMessage(chatID, text); err != nil {
		s.deliveryFailed(deliveryReply, chatID, err)
	}
}

func (s *chatbotService) replyWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) {
	if err := s.provider.SendMessageWithReplyKeyboard(chatID, text, keyboard); err != nil {
		s.deliveryFailed(deliveryReply, chatID, err)
	}
}

func (s *chatbotService) replyWithInline(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	if err := s.provider.SendMessageWithKeyboard(chatID, text, keyboard); err != nil {
		s.deliveryFailed(deliveryReply, chatID, err)
	}
}
