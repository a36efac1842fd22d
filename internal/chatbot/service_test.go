package chatbot

import (
	"context"
	"errors"
	"testing"
	"time"

	"challengebot/internal/challenge"
	"challengebot/internal/common"
	"challengebot/internal/config"
	"challengebot/internal/events"
	"challengebot/internal/metrics"
	"challengebot/internal/mocks"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"
)

const (
	adminID int64 = 1000
	userID  int64 = 42
)

const (
	channelID  = "@challenge_feed"
	channelURL = "https://t.me/challenge_feed"
)

var (
	msk       = time.FixedZone("MSK", 3*60*60)
	keyboards = NewKeyboardBuilder()
)

var _ TelegramProvider = (*mocks.MockTelegramProvider)(nil)

type botFixture struct {
	svc        *chatbotService
	provider   *mocks.MockTelegramProvider
	repo       *challenge.MockRepository
	bus        *events.MockEventBus
	challenges challenge.Service
	registry   *prometheus.Registry
	ctx        context.Context
}

func testConfig() config.ChatbotConfig {
	return config.ChatbotConfig{
		Mode:                ModePolling,
		PollTimeout:         60,
		AdminIDs:            []int64{adminID},
		ChannelID:           channelID,
		ChannelLink:         channelURL,
		RequireSubscription: true,
	}
}

func newBotFixture(t *testing.T) *botFixture {
	t.Helper()
	return newBotFixtureWithConfig(t, testConfig())
}

func newBotFixtureWithConfig(t *testing.T, cfg config.ChatbotConfig) *botFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	provider := mocks.NewMockTelegramProvider(ctrl)
	repo := challenge.NewMockRepository()
	bus := events.NewMockEventBus()
	clock := common.NewMockClock(time.Date(2024, 3, 1, 9, 0, 0, 0, msk))
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	logger := zaptest.NewLogger(t)

	challenges := challenge.NewChallengeService(bus, logger, repo, challenge.Options{
		Location: msk,
		Clock:    clock,
		Metrics:  m,
	})

	svc, err := NewChatbotService(bus, logger, cfg, provider, challenges, clock, m)
	require.NoError(t, err)

	return &botFixture{
		svc:        svc.(*chatbotService),
		provider:   provider,
		repo:       repo,
		bus:        bus,
		challenges: challenges,
		registry:   registry,
		ctx:        context.Background(),
	}
}

// createChallenge creates the active challenge; the channel announcement is expected.
func (f *botFixture) createChallenge(t *testing.T) *challenge.Challenge {
	t.Helper()
	f.provider.EXPECT().SendChannelMessage(channelID, gomock.Any()).Return(nil)
	c, err := f.challenges.CreateChallenge(f.ctx, "75 days", "push-ups", 75)
	require.NoError(t, err)
	return c
}

func (f *botFixture) register(t *testing.T, id int64) {
	t.Helper()
	_, _, err := f.challenges.Register(f.ctx, id, "athlete")
	require.NoError(t, err)
}

func message(from int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: from, UserName: "athlete"},
		Chat:      &tgbotapi.Chat{ID: from, Type: "private"},
		Text:      text,
	}
}

func textUpdate(from int64, text string) tgbotapi.Update {
	return tgbotapi.Update{UpdateID: 1, Message: message(from, text)}
}

func commandUpdate(from int64, command string) tgbotapi.Update {
	msg := message(from, "/"+command)
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command) + 1}}
	return tgbotapi.Update{UpdateID: 2, Message: msg}
}

func videoNoteUpdate(from int64, fileID string) tgbotapi.Update {
	msg := message(from, "")
	msg.VideoNote = &tgbotapi.VideoNote{FileID: fileID, Length: 240, Duration: 10}
	return tgbotapi.Update{UpdateID: 3, Message: msg}
}

func callbackUpdate(from int64, data string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 4,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb-1",
			From:    &tgbotapi.User{ID: from},
			Message: &tgbotapi.Message{MessageID: 9, Chat: &tgbotapi.Chat{ID: from, Type: "private"}},
			Data:    data,
		},
	}
}

// captureText records the text argument of a SendMessage call.
func captureText(dst *string) func(int64, string) error {
	return func(_ int64, text string) error {
		*dst = text
		return nil
	}
}

func TestNewChatbotService_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockTelegramProvider(ctrl)
	challenges := challenge.NewChallengeService(events.NewMockEventBus(), zaptest.NewLogger(t), challenge.NewMockRepository(), challenge.Options{})

	tests := []struct {
		name       string
		cfg        config.ChatbotConfig
		provider   TelegramProvider
		challenges challenge.Service
	}{
		{name: "missing provider", cfg: testConfig(), challenges: challenges},
		{name: "missing challenge service", cfg: testConfig(), provider: provider},
		{name: "unknown mode", cfg: config.ChatbotConfig{Mode: "carrier-pigeon"}, provider: provider, challenges: challenges},
		{name: "webhook without url", cfg: config.ChatbotConfig{Mode: ModeWebhook, WebhookSecret: "s3cret"}, provider: provider, challenges: challenges},
		{name: "webhook without secret", cfg: config.ChatbotConfig{Mode: ModeWebhook, WebhookURL: "https://bot.example.com/hook"}, provider: provider, challenges: challenges},
		{name: "webhook secret with invalid characters", cfg: config.ChatbotConfig{Mode: ModeWebhook, WebhookURL: "https://bot.example.com/hook", WebhookSecret: "not a token!"}, provider: provider, challenges: challenges},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewChatbotService(events.NewMockEventBus(), zaptest.NewLogger(t), tt.cfg, tt.provider, tt.challenges, nil, nil)
			require.Error(t, err)
			assert.Nil(t, svc)
			assert.True(t, IsConfigurationError(err))
		})
	}
}

func TestNewChatbotService_SubscribesToDeliveryEvents(t *testing.T) {
	f := newBotFixture(t)

	for _, topic := range []string{
		events.TopicReminderDue,
		events.TopicUserBlocked,
		events.TopicSubmissionAccepted,
		events.TopicChallengeCreated,
	} {
		assert.Equal(t, 1, f.bus.GetSubscriberCount(topic), topic)
	}
	assert.Equal(t, ModePolling, f.svc.config.Mode)
}

func TestStart_PollingMode(t *testing.T) {
	f := newBotFixture(t)

	f.provider.EXPECT().GetMe().Return(&tgbotapi.User{ID: 1, UserName: "challenge_bot", IsBot: true}, nil)
	f.provider.EXPECT().SetCommands(keyboards.BuildBotCommands()).Return(nil)
	f.provider.EXPECT().DeleteWebhook().Return(errors.New("no webhook"))

	require.NoError(t, f.svc.Start(f.ctx))
}

func TestStart_WebhookMode(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = ModeWebhook
	cfg.WebhookURL = "https://bot.example.com/api/v1/telegram/webhook"
	cfg.WebhookSecret = "hook-secret_42"
	f := newBotFixtureWithConfig(t, cfg)

	f.provider.EXPECT().GetMe().Return(&tgbotapi.User{UserName: "challenge_bot"}, nil)
	f.provider.EXPECT().SetCommands(gomock.Any()).Return(errors.New("flood"))
	f.provider.EXPECT().SetWebhook(cfg.WebhookURL, "hook-secret_42").Return(nil)

	require.NoError(t, f.svc.Start(f.ctx))
}

func TestStart_InvalidToken(t *testing.T) {
	f := newBotFixture(t)
	f.provider.EXPECT().GetMe().Return(nil, TelegramAPIError{Operation: "get_me", StatusCode: 401, Description: "Unauthorized"})

	err := f.svc.Start(f.ctx)
	require.Error(t, err)
	assert.True(t, IsTelegramAPIError(err))
}

func TestStartCommand_UnregisteredUserIsOfferedRegistration(t *testing.T) {
	f := newBotFixture(t)

	f.provider.EXPECT().SendMessageWithReplyKeyboard(userID, textGreeting, keyboards.BuildStartKeyboard()).Return(nil)

	f.svc.HandleUpdate(f.ctx, commandUpdate(userID, "start"))
}

func TestStartCommand_RegisteredUserSeesProgress(t *testing.T) {
	f := newBotFixture(t)
	f.createChallenge(t)
	f.register(t, userID)

	var got string
	f.provider.EXPECT().SendMessage(userID, gomock.Any()).DoAndReturn(captureText(&got))

	f.svc.HandleUpdate(f.ctx, commandUpdate(userID, "start"))

	assert.Contains(t, got, "Active challenge: 75 days")
	assert.Contains(t, got, "Day: 1/75")
	assert.Contains(t, got, "Task: 1 push-ups")
}

func TestStartCommand_NoActiveChallenge(t *testing.T) {
	f := newBotFixture(t)
	f.register(t, userID)

	f.provider.EXPECT().SendMessage(userID, textNoActiveChallenge).Return(nil)

	f.svc.HandleUpdate(f.ctx, commandUpdate(userID, "start"))
}

func TestJoin_RequiresChannelSubscription(t *testing.T) {
	tests := []struct {
		name     string
		checkErr error
	}{
		{name: "not a member"},
		{name: "membership lookup fails", checkErr: errors.New("chat not found")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBotFixture(t)
			f.createChallenge(t)

			f.provider.EXPECT().IsChannelMember(channelID, userID).Return(false, tt.checkErr)
			f.provider.EXPECT().SendMessage(userID, subscriptionRequiredText(channelURL)).Return(nil)

			f.svc.HandleUpdate(f.ctx, textUpdate(userID, ButtonJoin))

			_, err := f.repo.GetUser(f.ctx, userID)
			assert.ErrorIs(t, err, challenge.ErrUserNotFound)
		})
	}
}

func TestJoin_RegistersSubscribedUser(t *testing.T) {
	f := newBotFixture(t)
	f.createChallenge(t)

	var got string
	f.provider.EXPECT().IsChannelMember(channelID, userID).Return(true, nil)
	f.provider.EXPECT().SendMessage(userID, gomock.Any()).DoAndReturn(captureText(&got))

	f.svc.HandleUpdate(f.ctx, textUpdate(userID, ButtonJoin))

	assert.Contains(t, got, "You are signed up for the challenge: 75 days")
	assert.Contains(t, got, "Your current day: 1/75")

	user, err := f.repo.GetUser(f.ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "athlete", user.Username)
	assert.Equal(t, common.UserStatusActive, user.Status)
	require.NotNil(t, user.ChallengeStartDate)
}

func TestJoin_SubscriptionCheckDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.RequireSubscription = false
	f := newBotFixtureWithConfig(t, cfg)

	f.provider.EXPECT().SendMessage(userID, textRegisteredNoActive).Return(nil)

	f.svc.HandleUpdate(f.ctx, textUpdate(userID, ButtonJoin))

	_, err := f.repo.GetUser(f.ctx, userID)
	assert.NoError(t, err)
}

func TestDecline(t *testing.T) {
	f := newBotFixture(t)

	f.provider.EXPECT().SendMessage(userID, textDeclined).Return(nil)
	f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, textDeclined, keyboards.BuildBackKeyboard()).Return(nil)

	f.svc.HandleUpdate(f.ctx, textUpdate(userID, ButtonDecline))
	f.svc.HandleUpdate(f.ctx, textUpdate(adminID, ButtonDecline))
}

func TestVideoNote_AcceptedAndBroadcast(t *testing.T) {
	f := newBotFixture(t)
	f.createChallenge(t)
	f.register(t, userID)

	var reply, caption string
	f.provider.EXPECT().SendChannelVideoNote(channelID, "file-1").Return(nil)
	f.provider.EXPECT().SendChannelMessage(channelID, gomock.Any()).DoAndReturn(func(_ string, text string) error {
		caption = text
		return nil
	})
	f.provider.EXPECT().SendMessage(userID, gomock.Any()).DoAndReturn(captureText(&reply))

	f.svc.HandleUpdate(f.ctx, videoNoteUpdate(userID, "file-1"))

	assert.Contains(t, reply, "You completed day 1 of the challenge")
	assert.Contains(t, caption, "@athlete completed day 1 of the challenge '75 days'")
	assert.Contains(t, caption, "Done: 1 push-ups")

	user, err := f.repo.GetUser(f.ctx, userID)
	require.NoError(t, err)
	assert.NotNil(t, user.LastSubmissionDate)
}

func TestVideoNote_ChannelFailureDoesNotRejectSubmission(t *testing.T) {
	f := newBotFixture(t)
	f.createChallenge(t)
	f.register(t, userID)

	f.provider.EXPECT().SendChannelVideoNote(channelID, "file-1").Return(errors.New("bot is not a member of the channel"))
	f.provider.EXPECT().SendChannelMessage(channelID, gomock.Any()).Return(errors.New("bot is not a member of the channel"))
	f.provider.EXPECT().SendMessage(userID, gomock.Any()).Return(nil)

	f.svc.HandleUpdate(f.ctx, videoNoteUpdate(userID, "file-1"))

	user, err := f.repo.GetUser(f.ctx, userID)
	require.NoError(t, err)
	assert.NotNil(t, user.LastSubmissionDate)

	count, err := testutil.GatherAndCount(f.registry, "challengebot_delivery_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestVideoNote_Rejections(t *testing.T) {
	t.Run("not registered", func(t *testing.T) {
		f := newBotFixture(t)
		f.createChallenge(t)
		f.provider.EXPECT().SendMessage(userID, textRegisterFirst).Return(nil)

		f.svc.HandleUpdate(f.ctx, videoNoteUpdate(userID, "file-1"))
	})

	t.Run("blocked", func(t *testing.T) {
		f := newBotFixture(t)
		f.createChallenge(t)
		f.register(t, userID)
		_, err := f.challenges.SetUserStatus(f.ctx, userID, common.UserStatusBlocked)
		require.NoError(t, err)
		f.provider.EXPECT().SendMessage(userID, textSubmissionBlocked).Return(nil)

		f.svc.HandleUpdate(f.ctx, videoNoteUpdate(userID, "file-1"))
	})

	t.Run("no active challenge", func(t *testing.T) {
		f := newBotFixture(t)
		f.register(t, userID)
		f.provider.EXPECT().SendMessage(userID, textNoActiveChallenge).Return(nil)

		f.svc.HandleUpdate(f.ctx, videoNoteUpdate(userID, "file-1"))
	})

	t.Run("already submitted today", func(t *testing.T) {
		f := newBotFixture(t)
		f.createChallenge(t)
		f.register(t, userID)

		f.provider.EXPECT().SendChannelVideoNote(channelID, "file-1").Return(nil)
		f.provider.EXPECT().SendChannelMessage(channelID, gomock.Any()).Return(nil)
		gomock.InOrder(
			f.provider.EXPECT().SendMessage(userID, gomock.Any()).Return(nil),
			f.provider.EXPECT().SendMessage(userID, textAlreadySubmitted).Return(nil),
		)

		f.svc.HandleUpdate(f.ctx, videoNoteUpdate(userID, "file-1"))
		f.svc.HandleUpdate(f.ctx, videoNoteUpdate(userID, "file-2"))
	})
}

func TestAdminCommand(t *testing.T) {
	f := newBotFixture(t)

	f.provider.EXPECT().SendMessage(userID, textNoAccess).Return(nil)
	f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, textAdminPanel, keyboards.BuildAdminKeyboard()).Return(nil)

	f.svc.HandleUpdate(f.ctx, commandUpdate(userID, "admin"))
	f.svc.HandleUpdate(f.ctx, commandUpdate(adminID, "admin"))
}

func TestTestCommand(t *testing.T) {
	f := newBotFixture(t)

	f.provider.EXPECT().SendMessage(userID, textNoCommandAccess).Return(nil)
	f.provider.EXPECT().SendMessage(adminID, textTestOK).Return(nil)

	f.svc.HandleUpdate(f.ctx, commandUpdate(userID, "test"))
	f.svc.HandleUpdate(f.ctx, commandUpdate(adminID, "test"))
}

func TestAdminMenu_IgnoredForRegularUsers(t *testing.T) {
	f := newBotFixture(t)

	for _, item := range []string{ButtonUsersList, ButtonUserManagement, ButtonChallengeManagement, ButtonStatistics, ButtonBack, ButtonCancel} {
		f.svc.HandleUpdate(f.ctx, textUpdate(userID, item))
	}

	f.provider.EXPECT().AnswerCallback("cb-1", "").Return(nil)
	f.svc.HandleUpdate(f.ctx, callbackUpdate(userID, CallbackCreateChallenge))
	assert.Equal(t, SessionStateIdle, f.svc.sessions.GetSession(userID).State)
}

func TestAdminMenu_UsersListAndStats(t *testing.T) {
	f := newBotFixture(t)
	f.createChallenge(t)
	f.register(t, userID)
	f.register(t, 43)

	var list, stats string
	gomock.InOrder(
		f.provider.EXPECT().SendMessage(adminID, gomock.Any()).DoAndReturn(captureText(&list)),
		f.provider.EXPECT().SendMessage(adminID, gomock.Any()).DoAndReturn(captureText(&stats)),
	)

	f.svc.HandleUpdate(f.ctx, textUpdate(adminID, ButtonUsersList))
	f.svc.HandleUpdate(f.ctx, textUpdate(adminID, ButtonStatistics))

	assert.Contains(t, list, "ID: 42, Username: @athlete, Status: active, Day: 1, Reminders: 0")
	assert.Contains(t, list, "ID: 43")
	assert.Contains(t, stats, "Total users: 2")
	assert.Contains(t, stats, "Not completed today: 2")
	assert.Contains(t, stats, "Current challenge: 75 days")
}

func TestAdminFlow_CreateChallenge(t *testing.T) {
	f := newBotFixture(t)
	cancelKeyboard := keyboards.BuildCancelKeyboard()

	gomock.InOrder(
		f.provider.EXPECT().SendMessageWithKeyboard(adminID, textNoActiveChallengeSet, keyboards.BuildChallengeManagementKeyboard()).Return(nil),
		f.provider.EXPECT().AnswerCallback("cb-1", "").Return(nil),
		f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, textEnterChallengeName, cancelKeyboard).Return(nil),
		f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, textEnterChallengeTask, cancelKeyboard).Return(nil),
		f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, textEnterChallengeDays, cancelKeyboard).Return(nil),
		f.provider.EXPECT().SendMessage(adminID, textDaysInvalid).Return(nil),
		f.provider.EXPECT().SendMessage(adminID, textDaysMustBePositive).Return(nil),
		f.provider.EXPECT().SendChannelMessage(channelID, gomock.Any()).Return(nil),
		f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, gomock.Any(), keyboards.BuildAdminKeyboard()).Return(nil),
	)

	f.svc.HandleUpdate(f.ctx, textUpdate(adminID, ButtonChallengeManagement))
	f.svc.HandleUpdate(f.ctx, callbackUpdate(adminID, CallbackCreateChallenge))
	assert.Equal(t, SessionStateCollectingName, f.svc.sessions.GetSession(adminID).State)

	f.svc.HandleUpdate(f.ctx, textUpdate(adminID, "30 days of squats"))
	assert.Equal(t, SessionStateCollectingTask, f.svc.sessions.GetSession(adminID).State)

	f.svc.HandleUpdate(f.ctx, textUpdate(adminID, "squats"))
	assert.Equal(t, SessionStateCollectingDays, f.svc.sessions.GetSession(adminID).State)

	f.svc.HandleUpdate(f.ctx, textUpdate(adminID, "thirty"))
	assert.Equal(t, SessionStateCollectingDays, f.svc.sessions.GetSession(adminID).State)

	f.svc.HandleUpdate(f.ctx, textUpdate(adminID, "0"))
	assert.Equal(t, SessionStateCollectingDays, f.svc.sessions.GetSession(adminID).State)

	f.svc.HandleUpdate(f.ctx, textUpdate(adminID, "30"))
	assert.Equal(t, SessionStateIdle, f.svc.sessions.GetSession(adminID).State)

	active, err := f.challenges.GetActiveChallenge(f.ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "30 days of squats", active.Name)
	assert.Equal(t, "squats", active.TaskDescription)
	assert.Equal(t, 30, active.TotalDays)
}

func TestAdminFlow_CancelFromAnyState(t *testing.T) {
	states := []struct {
		callback string
		inputs   []string
	}{
		{callback: CallbackCreateChallenge},
		{callback: CallbackCreateChallenge, inputs: []string{"name"}},
		{callback: CallbackCreateChallenge, inputs: []string{"name", "task"}},
		{callback: CallbackUpdateTask},
		{callback: CallbackAdminBlock},
		{callback: CallbackAdminActivate},
	}

	for _, tt := range states {
		t.Run(tt.callback, func(t *testing.T) {
			f := newBotFixture(t)

			f.provider.EXPECT().AnswerCallback(gomock.Any(), gomock.Any()).Return(nil)
			f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, gomock.Any(), keyboards.BuildCancelKeyboard()).Return(nil).Times(1 + len(tt.inputs))
			f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, textCancelled, keyboards.BuildAdminKeyboard()).Return(nil)

			f.svc.HandleUpdate(f.ctx, callbackUpdate(adminID, tt.callback))
			for _, input := range tt.inputs {
				f.svc.HandleUpdate(f.ctx, textUpdate(adminID, input))
			}
			require.NotEqual(t, SessionStateIdle, f.svc.sessions.GetSession(adminID).State)

			f.svc.HandleUpdate(f.ctx, textUpdate(adminID, ButtonCancel))
			assert.Equal(t, SessionStateIdle, f.svc.sessions.GetSession(adminID).State)
		})
	}
}

func TestAdminFlow_MenuButtonAbandonsPrompt(t *testing.T) {
	f := newBotFixture(t)
	f.createChallenge(t)
	f.register(t, userID)

	var list string
	gomock.InOrder(
		f.provider.EXPECT().AnswerCallback("cb-1", "").Return(nil),
		f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, textEnterChallengeName, keyboards.BuildCancelKeyboard()).Return(nil),
		f.provider.EXPECT().SendMessage(adminID, gomock.Any()).DoAndReturn(captureText(&list)),
		f.provider.EXPECT().AnswerCallback("cb-1", "").Return(nil),
		f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, textEnterBlockUserID, keyboards.BuildCancelKeyboard()).Return(nil),
		f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, textAdminPanel, keyboards.BuildAdminKeyboard()).Return(nil),
	)

	f.svc.HandleUpdate(f.ctx, callbackUpdate(adminID, CallbackCreateChallenge))
	f.svc.HandleUpdate(f.ctx, textUpdate(adminID, ButtonUsersList))
	assert.Equal(t, SessionStateIdle, f.svc.sessions.GetSession(adminID).State)
	assert.Contains(t, list, "ID: 42")

	f.svc.HandleUpdate(f.ctx, callbackUpdate(adminID, CallbackAdminBlock))
	f.svc.HandleUpdate(f.ctx, textUpdate(adminID, ButtonBack))
	assert.Equal(t, SessionStateIdle, f.svc.sessions.GetSession(adminID).State)

	active, err := f.challenges.GetActiveChallenge(f.ctx)
	require.NoError(t, err)
	assert.NotEqual(t, ButtonUsersList, active.Name)
}

func TestAdminFlow_UpdateTask(t *testing.T) {
	f := newBotFixture(t)
	f.createChallenge(t)

	f.provider.EXPECT().AnswerCallback("cb-1", "").Return(nil)
	f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, textEnterNewTask, keyboards.BuildCancelKeyboard()).Return(nil)
	f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, taskUpdatedText("squats"), keyboards.BuildAdminKeyboard()).Return(nil)

	f.svc.HandleUpdate(f.ctx, callbackUpdate(adminID, CallbackUpdateTask))
	f.svc.HandleUpdate(f.ctx, textUpdate(adminID, "squats"))

	active, err := f.challenges.GetActiveChallenge(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "squats", active.TaskDescription)
}

func TestAdminFlow_UpdateTaskWithoutChallenge(t *testing.T) {
	f := newBotFixture(t)

	f.provider.EXPECT().AnswerCallback("cb-1", "").Return(nil)
	f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, textEnterNewTask, gomock.Any()).Return(nil)
	f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, textNoActiveChallengeSet, keyboards.BuildAdminKeyboard()).Return(nil)

	f.svc.HandleUpdate(f.ctx, callbackUpdate(adminID, CallbackUpdateTask))
	f.svc.HandleUpdate(f.ctx, textUpdate(adminID, "squats"))
}

func TestAdminFlow_BlockAndActivate(t *testing.T) {
	f := newBotFixture(t)
	f.createChallenge(t)
	f.register(t, userID)

	adminKeyboard := keyboards.BuildAdminKeyboard()
	cancelKeyboard := keyboards.BuildCancelKeyboard()

	f.provider.EXPECT().AnswerCallback("cb-1", "").Return(nil).Times(3)
	gomock.InOrder(
		f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, textEnterBlockUserID, cancelKeyboard).Return(nil),
		f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, textUserIDInvalid, cancelKeyboard).Return(nil),
		f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, statusChangedText(userID, common.UserStatusBlocked), adminKeyboard).Return(nil),
		f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, textEnterActivateUserID, cancelKeyboard).Return(nil),
		f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, textUserNotFound, adminKeyboard).Return(nil),
		f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, textEnterActivateUserID, cancelKeyboard).Return(nil),
		f.provider.EXPECT().SendMessageWithReplyKeyboard(adminID, statusChangedText(userID, common.UserStatusActive), adminKeyboard).Return(nil),
	)

	f.svc.HandleUpdate(f.ctx, callbackUpdate(adminID, CallbackAdminBlock))
	f.svc.HandleUpdate(f.ctx, textUpdate(adminID, "forty-two"))
	assert.Equal(t, SessionStateCollectingBlockID, f.svc.sessions.GetSession(adminID).State)
	f.svc.HandleUpdate(f.ctx, textUpdate(adminID, "42"))

	user, err := f.repo.GetUser(f.ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, common.UserStatusBlocked, user.Status)

	f.svc.HandleUpdate(f.ctx, callbackUpdate(adminID, CallbackAdminActivate))
	f.svc.HandleUpdate(f.ctx, textUpdate(adminID, "999"))
	assert.Equal(t, SessionStateIdle, f.svc.sessions.GetSession(adminID).State)

	f.svc.HandleUpdate(f.ctx, callbackUpdate(adminID, CallbackAdminActivate))
	f.svc.HandleUpdate(f.ctx, textUpdate(adminID, "42"))

	user, err = f.repo.GetUser(f.ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, common.UserStatusActive, user.Status)
	assert.Equal(t, 0, user.ReminderCount)
}

func TestDelivery_Reminder(t *testing.T) {
	f := newBotFixture(t)

	event := events.ReminderDue{
		Event:           events.NewEvent(),
		UserID:          userID,
		ReminderOrdinal: 1,
		CurrentDay:      3,
		TotalDays:       75,
		ChallengeName:   "75 days",
		TaskDescription: "push-ups",
	}
	f.provider.EXPECT().SendMessage(userID, reminderText(event)).Return(nil)

	require.NoError(t, f.bus.Publish(events.TopicReminderDue, event))
	assert.Contains(t, reminderText(event), "Today you need to do: 3 push-ups")
}

func TestDelivery_BlockedNoticeFailureIsCounted(t *testing.T) {
	f := newBotFixture(t)

	f.provider.EXPECT().SendMessage(userID, textBlockedNotice).Return(TelegramAPIError{StatusCode: 403, Description: "bot was blocked by the user"})

	require.NoError(t, f.bus.Publish(events.TopicUserBlocked, events.UserBlocked{Event: events.NewEvent(), UserID: userID, ReminderCount: 2}))

	count, err := testutil.GatherAndCount(f.registry, "challengebot_delivery_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDelivery_NoChannelConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.ChannelID = ""
	f := newBotFixtureWithConfig(t, cfg)

	require.NoError(t, f.bus.Publish(events.TopicSubmissionAccepted, events.SubmissionAccepted{Event: events.NewEvent(), UserID: userID, MediaRef: "file-1"}))
	require.NoError(t, f.bus.Publish(events.TopicChallengeCreated, events.ChallengeCreated{Event: events.NewEvent(), Name: "75 days"}))
}

func TestHandleWebhook(t *testing.T) {
	f := newBotFixture(t)

	err := f.svc.HandleWebhook(f.ctx, []byte("{not json"))
	require.Error(t, err)
	assert.True(t, IsWebhookParsingError(err))

	err = f.svc.HandleWebhook(f.ctx, nil)
	assert.True(t, IsWebhookParsingError(err))

	f.provider.EXPECT().SendMessage(adminID, textTestOK).Return(nil)
	body := []byte(`{"update_id":10,"message":{"message_id":1,"date":1709276400,` +
		`"from":{"id":1000,"is_bot":false,"first_name":"Admin"},` +
		`"chat":{"id":1000,"type":"private"},"text":"/test",` +
		`"entities":[{"type":"bot_command","offset":0,"length":5}]}}`)
	require.NoError(t, f.svc.HandleWebhook(f.ctx, body))
}

func TestHandleUpdate_IgnoresUnsupportedUpdates(t *testing.T) {
	f := newBotFixture(t)

	f.svc.HandleUpdate(f.ctx, tgbotapi.Update{UpdateID: 5})
	f.svc.HandleUpdate(f.ctx, tgbotapi.Update{UpdateID: 6, Message: &tgbotapi.Message{Text: "no sender"}})
	f.svc.HandleUpdate(f.ctx, tgbotapi.Update{UpdateID: 7, Message: &tgbotapi.Message{Text: "no chat", From: &tgbotapi.User{ID: userID}}})
	f.svc.HandleUpdate(f.ctx, textUpdate(userID, "hello"))
	f.svc.HandleUpdate(f.ctx, commandUpdate(adminID, "stop"))
}

func TestRun_PollingDispatchesUntilCancelled(t *testing.T) {
	f := newBotFixture(t)

	updates := make(chan tgbotapi.Update, 1)
	handled := make(chan struct{})

	f.provider.EXPECT().GetUpdatesChan(60).Return(tgbotapi.UpdatesChannel(updates))
	f.provider.EXPECT().SendMessage(adminID, textTestOK).DoAndReturn(func(int64, string) error {
		close(handled)
		return nil
	})
	f.provider.EXPECT().StopReceivingUpdates()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.svc.Run(ctx) }()

	updates <- commandUpdate(adminID, "test")
	select {
	case <-handled:
	case <-time.After(2 * time.Second):
		t.Fatal("update was not handled")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_WebhookModeBlocksUntilCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = ModeWebhook
	cfg.WebhookURL = "https://bot.example.com/hook"
	cfg.WebhookSecret = "hook-secret"
	f := newBotFixtureWithConfig(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.NoError(t, f.svc.Run(ctx))
}
