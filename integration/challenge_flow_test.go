//go:build integration

package integration

import (
	"testing"

	"challengebot/internal/chatbot"
	"challengebot/internal/common"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeFlow_FullCycle(t *testing.T) {
	env := setupTestEnv(t)

	// Admin defines a three day challenge through the bot.
	env.at(1, 9, 0)
	env.sendCommand(adminID, "admin")
	env.pressButton(adminID, chatbot.CallbackCreateChallenge)
	env.sendText(adminID, "Spring squats")
	env.sendText(adminID, "squats")
	env.sendText(adminID, "3")

	env.outbox.waitFor(t, "challenge announcement", toChannel("A new challenge has started: Spring squats"))
	env.outbox.waitFor(t, "creation confirmation", toUser(adminID, "New challenge created"))

	// A subscriber joins and submits day one.
	env.sendText(userID, chatbot.ButtonJoin)
	env.outbox.waitFor(t, "registration reply", toUser(userID, "Your current day: 1/3"))

	env.sendVideoNote(userID, "note-day-1")
	env.outbox.waitFor(t, "submission reply", toUser(userID, "You completed day 1"))
	env.outbox.waitFor(t, "channel video", func(m sentMessage) bool { return m.VideoNote == "note-day-1" })
	env.outbox.waitFor(t, "channel caption", toChannel("@athlete completed day 1 of the challenge 'Spring squats'"))

	// Submitted users are not reminded.
	report, err := env.challenges.RunReminderSweep(env.ctx, env.at(1, 15, 0))
	require.NoError(t, err)
	assert.Zero(t, report.Candidates)

	// Midnight rollover starts day two.
	rollover := env.at(2, 0, 0)
	require.NoError(t, env.challenges.RunDailyRollover(env.ctx, common.DateIn(rollover, msk)))
	assert.Nil(t, env.user(t, userID).LastSubmissionDate)

	active, err := env.challenges.GetActiveChallenge(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, active.CurrentDay)

	// Morning reminder, then an afternoon block after it is ignored.
	report, err = env.challenges.RunReminderSweep(env.ctx, env.at(2, 7, 30))
	require.NoError(t, err)
	assert.Equal(t, 1, report.RemindersSent)
	env.outbox.waitFor(t, "reminder", toUser(userID, "Reminder #1"))
	env.outbox.waitFor(t, "reminder day", toUser(userID, "Day: 2/3"))

	report, err = env.challenges.RunReminderSweep(env.ctx, env.at(2, 15, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, report.UsersBlocked)
	env.outbox.waitFor(t, "block notice", toUser(userID, "You have been blocked"))
	assert.Equal(t, common.UserStatusBlocked, env.user(t, userID).Status)

	env.sendVideoNote(userID, "note-late")
	env.outbox.waitFor(t, "blocked submission reply", toUser(userID, "You are blocked"))

	// The admin unblocks the user, who can then submit day two.
	env.pressButton(adminID, chatbot.CallbackAdminActivate)
	env.sendText(adminID, "500")
	env.outbox.waitFor(t, "activation confirmation", toUser(adminID, "User 500 activated"))

	user := env.user(t, userID)
	assert.Equal(t, common.UserStatusActive, user.Status)
	assert.Zero(t, user.ReminderCount)

	env.sendVideoNote(userID, "note-day-2")
	env.outbox.waitFor(t, "day two accepted", toUser(userID, "You completed day 2"))

	count, err := testutil.GatherAndCount(env.registry, "challengebot_submissions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "accepted and blocked outcomes")
}

func TestChallengeFlow_ReplacingChallengeResetsUsers(t *testing.T) {
	env := setupTestEnv(t)

	env.at(1, 9, 0)
	_, err := env.challenges.CreateChallenge(env.ctx, "First", "push-ups", 10)
	require.NoError(t, err)
	env.sendText(userID, chatbot.ButtonJoin)
	env.sendVideoNote(userID, "note-1")
	env.outbox.waitFor(t, "first submission", toUser(userID, "You completed day 1"))

	// Five days later the admin replaces the challenge.
	env.at(6, 12, 0)
	env.sendCommand(userID, "start")
	env.outbox.waitFor(t, "progress on day six", toUser(userID, "Day: 6/10"))

	env.pressButton(adminID, chatbot.CallbackCreateChallenge)
	env.sendText(adminID, "Second")
	env.sendText(adminID, "pull-ups")
	env.sendText(adminID, "0")
	env.outbox.waitFor(t, "days validation", toUser(adminID, "must be a positive number"))
	env.sendText(adminID, "5")
	env.outbox.waitFor(t, "second announcement", toChannel("A new challenge has started: Second"))

	user := env.user(t, userID)
	require.NotNil(t, user.ChallengeStartDate)
	assert.Equal(t, 1, user.CurrentDay)
	assert.Nil(t, user.LastSubmissionDate)
	assert.Zero(t, user.ReminderCount)

	env.sendCommand(userID, "start")
	env.outbox.waitFor(t, "progress after reset", toUser(userID, "Day: 1/5"))

	// Only one challenge stays active.
	var active int64
	require.NoError(t, env.db.Table("challenges").Where("is_active = ?", true).Count(&active).Error)
	assert.Equal(t, int64(1), active)
}

func TestChallengeFlow_DuplicateSubmissionSameDay(t *testing.T) {
	env := setupTestEnv(t)

	env.at(1, 9, 0)
	_, err := env.challenges.CreateChallenge(env.ctx, "Spring", "squats", 30)
	require.NoError(t, err)
	env.sendText(userID, chatbot.ButtonJoin)

	env.sendVideoNote(userID, "first")
	env.outbox.waitFor(t, "accepted", toUser(userID, "You completed day 1"))

	env.at(1, 23, 59)
	env.sendVideoNote(userID, "second")
	env.outbox.waitFor(t, "duplicate rejected", toUser(userID, "already completed today's task"))

	// Only the first note reaches the channel.
	env.outbox.waitFor(t, "first note broadcast", func(m sentMessage) bool { return m.VideoNote == "first" })
	assert.Zero(t, env.outbox.count(func(m sentMessage) bool { return m.VideoNote == "second" }))
}
