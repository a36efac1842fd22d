//go:build integration

package integration

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"challengebot/internal/challenge"
	"challengebot/internal/chatbot"
	"challengebot/internal/common"
	"challengebot/internal/config"
	"challengebot/internal/database"
	"challengebot/internal/events"
	"challengebot/internal/metrics"
	"challengebot/internal/mocks"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

const (
	adminID int64 = 1
	userID  int64 = 500
	channel       = "@challenge_feed"

	webhookSecret = "integration-secret"
)

var msk = time.FixedZone("MSK", 3*60*60)

// sentMessage is one outbound Telegram call captured by the outbox.
type sentMessage struct {
	ChatID    int64
	Channel   string
	Text      string
	VideoNote string
}

// outbox records every send made through the mocked provider. Event
// deliveries run on bus goroutines, so reads go through waitFor.
type outbox struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (o *outbox) record(m sentMessage) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, m)
	return nil
}

func (o *outbox) find(match func(sentMessage) bool) (sentMessage, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, m := range o.sent {
		if match(m) {
			return m, true
		}
	}
	return sentMessage{}, false
}

func (o *outbox) waitFor(t *testing.T, description string, match func(sentMessage) bool) sentMessage {
	t.Helper()
	var found sentMessage
	require.Eventually(t, func() bool {
		m, ok := o.find(match)
		found = m
		return ok
	}, 3*time.Second, 10*time.Millisecond, "no message: %s", description)
	return found
}

func (o *outbox) count(match func(sentMessage) bool) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, m := range o.sent {
		if match(m) {
			n++
		}
	}
	return n
}

func toUser(id int64, substr string) func(sentMessage) bool {
	return func(m sentMessage) bool {
		return m.Channel == "" && m.ChatID == id && strings.Contains(m.Text, substr)
	}
}

func toChannel(substr string) func(sentMessage) bool {
	return func(m sentMessage) bool {
		return m.Channel == channel && strings.Contains(m.Text, substr)
	}
}

// testEnv wires the bot the way cmd/server does, on an in-memory sqlite
// database, the real event bus and a mocked Telegram provider.
type testEnv struct {
	ctx        context.Context
	db         *gorm.DB
	clock      *common.MockClock
	bus        events.EventBus
	challenges challenge.Service
	bot        chatbot.ChatbotService
	outbox     *outbox
	registry   *prometheus.Registry
	updateID   int
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewSQLiteConnection(":memory:")
	require.NoError(t, err)
	require.NoError(t, challenge.RunMigrations(db))

	logger := zaptest.NewLogger(t)
	bus := events.NewEventBus(logger)
	t.Cleanup(func() {
		_ = bus.Close()
		_ = database.Close(db)
	})

	clock := common.NewMockClock(time.Date(2024, 3, 1, 9, 0, 0, 0, msk))
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	challenges := challenge.NewChallengeService(bus, logger, challenge.NewGormRepository(db, logger), challenge.Options{
		Location: msk,
		Clock:    clock,
		Metrics:  m,
	})

	out := &outbox{}
	provider := mocks.NewMockTelegramProvider(gomock.NewController(t))
	provider.EXPECT().SendMessage(gomock.Any(), gomock.Any()).DoAndReturn(func(chatID int64, text string) error {
		return out.record(sentMessage{ChatID: chatID, Text: text})
	}).AnyTimes()
	provider.EXPECT().SendMessageWithReplyKeyboard(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(chatID int64, text string, _ tgbotapi.ReplyKeyboardMarkup) error {
			return out.record(sentMessage{ChatID: chatID, Text: text})
		}).AnyTimes()
	provider.EXPECT().SendMessageWithKeyboard(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(chatID int64, text string, _ tgbotapi.InlineKeyboardMarkup) error {
			return out.record(sentMessage{ChatID: chatID, Text: text})
		}).AnyTimes()
	provider.EXPECT().SendChannelMessage(gomock.Any(), gomock.Any()).DoAndReturn(func(ch, text string) error {
		return out.record(sentMessage{Channel: ch, Text: text})
	}).AnyTimes()
	provider.EXPECT().SendChannelVideoNote(gomock.Any(), gomock.Any()).DoAndReturn(func(ch, fileID string) error {
		return out.record(sentMessage{Channel: ch, VideoNote: fileID})
	}).AnyTimes()
	provider.EXPECT().AnswerCallback(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	provider.EXPECT().IsChannelMember(channel, gomock.Any()).Return(true, nil).AnyTimes()

	cfg := config.ChatbotConfig{
		Mode:                chatbot.ModeWebhook,
		WebhookURL:          "https://bot.example.com/api/v1/telegram/webhook",
		WebhookSecret:       webhookSecret,
		AdminIDs:            []int64{adminID},
		ChannelID:           channel,
		ChannelLink:         "https://t.me/challenge_feed",
		RequireSubscription: true,
	}
	bot, err := chatbot.NewChatbotService(bus, logger, cfg, provider, challenges, clock, m)
	require.NoError(t, err)

	return &testEnv{
		ctx:        context.Background(),
		db:         db,
		clock:      clock,
		bus:        bus,
		challenges: challenges,
		bot:        bot,
		outbox:     out,
		registry:   registry,
	}
}

func (e *testEnv) nextUpdateID() int {
	e.updateID++
	return e.updateID
}

func (e *testEnv) message(from int64, username string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: e.nextUpdateID(),
		From:      &tgbotapi.User{ID: from, UserName: username},
		Chat:      &tgbotapi.Chat{ID: from, Type: "private"},
	}
}

func (e *testEnv) sendText(from int64, text string) {
	msg := e.message(from, "athlete")
	msg.Text = text
	e.bot.HandleUpdate(e.ctx, tgbotapi.Update{UpdateID: e.nextUpdateID(), Message: msg})
}

func (e *testEnv) sendCommand(from int64, command string) {
	msg := e.message(from, "athlete")
	msg.Text = "/" + command
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command) + 1}}
	e.bot.HandleUpdate(e.ctx, tgbotapi.Update{UpdateID: e.nextUpdateID(), Message: msg})
}

func (e *testEnv) sendVideoNote(from int64, fileID string) {
	msg := e.message(from, "athlete")
	msg.VideoNote = &tgbotapi.VideoNote{FileID: fileID, Length: 240, Duration: 12}
	e.bot.HandleUpdate(e.ctx, tgbotapi.Update{UpdateID: e.nextUpdateID(), Message: msg})
}

func (e *testEnv) pressButton(from int64, data string) {
	e.bot.HandleUpdate(e.ctx, tgbotapi.Update{
		UpdateID: e.nextUpdateID(),
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb",
			From:    &tgbotapi.User{ID: from},
			Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: from, Type: "private"}},
			Data:    data,
		},
	})
}

// at moves the clock to the given wall time in the challenge zone.
func (e *testEnv) at(day, hour, minute int) time.Time {
	now := time.Date(2024, 3, day, hour, minute, 0, 0, msk)
	e.clock.SetTime(now)
	return now
}

func (e *testEnv) user(t *testing.T, id int64) *challenge.User {
	t.Helper()
	var u challenge.User
	require.NoError(t, e.db.First(&u, "id = ?", id).Error)
	return &u
}
