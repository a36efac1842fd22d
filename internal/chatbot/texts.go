package chatbot

import (
	"fmt"
	"strings"
	"time"

	"challengebot/internal/challenge"
	"challengebot/internal/common"
	"challengebot/internal/events"
)

// maxMessageLength is the Telegram limit for one text message.
const maxMessageLength = 4096

const dateLayout = "2006-01-02"

const (
	textGreeting             = "Hi! Shall I sign you up for the challenge?"
	textDeclined             = "Okay, if you change your mind just press /start again!"
	textNoActiveChallenge    = "There is no active challenge right now."
	textRegisteredNoActive   = "You are registered, but there is no active challenge right now."
	textRegisterFirst        = "You need to register first with /start"
	textSubmissionBlocked    = "You are blocked. Contact an administrator to be unblocked."
	textNotStarted           = "The challenge has not started yet!"
	textAlreadySubmitted     = "You have already completed today's task!"
	textBlockedNotice        = "❌ You have been blocked for not completing the task! Contact an administrator to be unblocked."
	textTryAgainLater        = "Something went wrong. Please try again later."
	textAdminPanel           = "Admin panel"
	textNoAccess             = "You do not have access to the admin panel."
	textNoCommandAccess      = "You do not have access to this command."
	textTestOK               = "✅ The bot is working! Test message received."
	textCancelled            = "Action cancelled."
	textChooseAction         = "Choose an action:"
	textNoUsers              = "No users."
	textEnterChallengeName   = "Enter the name of the new challenge:"
	textEnterChallengeTask   = "Enter the challenge task (for example: 'push-ups', 'squats', 'pull-ups'):"
	textEnterChallengeDays   = "Enter the number of days for the challenge:"
	textEnterNewTask         = "Enter the new task for the challenge (for example: 'push-ups', 'squats', 'pull-ups'):"
	textDaysMustBePositive   = "The number of days must be a positive number. Try again:"
	textDaysInvalid          = "Invalid format. Enter the number of days:"
	textEmptyValue           = "The value must not be empty. Try again:"
	textEnterBlockUserID     = "Enter the user ID to block:"
	textEnterActivateUserID  = "Enter the user ID to activate:"
	textUserIDInvalid        = "Invalid ID format. Enter a numeric ID."
	textUserNotFound         = "No user with this ID was found."
	textNoActiveChallengeSet = "No active challenge is set"
)

func subscriptionRequiredText(channelLink string) string {
	text := "📢 To take part in the challenge you need to subscribe to our channel!"
	if channelLink != "" {
		text += "\n\nSubscribe to the channel " + channelLink
	}
	return text
}

func formatDate(d time.Time) string {
	return d.Format(dateLayout)
}

// progressText is the /start answer for a registered user.
func progressText(p *challenge.Progress) string {
	c := p.Challenge
	if c == nil {
		return textNoActiveChallenge
	}
	if p.CurrentDay == 0 {
		return fmt.Sprintf("🏆 Upcoming challenge: %s\n📅 Start: %s\n💪 Total days: %d\n\nThe challenge has not started yet! First day: %s",
			c.Name, formatDate(c.StartDate), c.TotalDays, formatDate(c.StartDate))
	}
	return fmt.Sprintf("🏆 Active challenge: %s\n📅 Day: %d/%d\n💪 Task: %d %s\n\nSend a video note to mark the task as done!",
		c.Name, p.CurrentDay, c.TotalDays, p.CurrentDay, c.TaskDescription)
}

// registeredText confirms a new registration.
func registeredText(p *challenge.Progress) string {
	c := p.Challenge
	if c == nil {
		return textRegisteredNoActive
	}
	if p.CurrentDay == 0 {
		return fmt.Sprintf("🎉 Great! You are signed up for the challenge: %s\n\n📅 Start: %s\n💪 Total days: %d\n\nThe challenge has not started yet! First day: %s",
			c.Name, formatDate(c.StartDate), c.TotalDays, formatDate(c.StartDate))
	}
	return fmt.Sprintf("🎉 Great! You are signed up for the challenge: %s\n\n📅 Your current day: %d/%d\n💪 Today you need to do: %d %s\n\n"+
		"Send a video note every day to mark the task as done. If a reminder goes unanswered, you will be blocked at the next check, even if it falls on the following day.",
		c.Name, p.CurrentDay, c.TotalDays, p.CurrentDay, c.TaskDescription)
}

func submissionAcceptedText(o *challenge.SubmissionOutcome) string {
	return fmt.Sprintf("🎉 Great! You completed day %d of the challenge!\n💪 You did %d %s!\n📹 Your video note is being posted to the channel.",
		o.Day, o.Day, o.TaskDescription)
}

func reminderText(ev events.ReminderDue) string {
	return fmt.Sprintf("🔔 Reminder #%d!\n🏆 Challenge: %s\n📅 Day: %d/%d\n💪 Today you need to do: %d %s\n\n"+
		"Send a video note to mark the task as done!\nIf you have not sent it by the next check, you will be blocked.",
		ev.ReminderOrdinal, ev.ChallengeName, ev.CurrentDay, ev.TotalDays, ev.CurrentDay, ev.TaskDescription)
}

func displayUsername(username string) string {
	if username == "" {
		return "no username"
	}
	return username
}

// channelCaption accompanies a re-posted video note.
func channelCaption(ev events.SubmissionAccepted) string {
	return fmt.Sprintf("🎉 User: @%s completed day %d of the challenge '%s'!\n💪 Done: %d %s",
		displayUsername(ev.Username), ev.Day, ev.ChallengeName, ev.Day, ev.TaskDescription)
}

func challengeAnnouncementText(ev events.ChallengeCreated) string {
	return fmt.Sprintf("🏁 A new challenge has started: %s\n📅 Start: %s\n💪 Total days: %d",
		ev.Name, formatDate(ev.StartDate), ev.TotalDays)
}

func challengeInfoText(c *challenge.Challenge) string {
	if c == nil {
		return textNoActiveChallengeSet
	}
	return fmt.Sprintf("Current challenge:\n🏆 Name: %s\n💪 Task: %s\n📅 Total days: %d\n📅 Start: %s\n📅 Current day: %d",
		c.Name, c.TaskDescription, c.TotalDays, formatDate(c.StartDate), c.DisplayDay())
}

func challengeCreatedText(c *challenge.Challenge) string {
	return fmt.Sprintf("✅ New challenge created!\n🏆 Name: %s\n💪 Task: %s\n📅 Days: %d\n📅 Start: %s\n🔄 All users start from day 1",
		c.Name, c.TaskDescription, c.TotalDays, formatDate(c.StartDate))
}

func taskUpdatedText(task string) string {
	return fmt.Sprintf("✅ Challenge task updated!\n💪 New task: %s", task)
}

func statusChangedText(userID int64, status common.UserStatus) string {
	if status == common.UserStatusActive {
		return fmt.Sprintf("User %d activated (reminder counter reset).", userID)
	}
	return fmt.Sprintf("User %d %s.", userID, status)
}

func statsText(s *challenge.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Statistics:\n👥 Total users: %d\n✅ Active: %d\n🚫 Blocked: %d\n📅 Completed today: %d\n⏰ Not completed today: %d\n🔔 Users with reminders: %d",
		s.TotalUsers, s.ActiveUsers, s.BlockedUsers, s.CompletedToday, s.PendingToday, s.UsersWithReminders)

	if c := s.Challenge; c != nil {
		fmt.Fprintf(&b, "\n\n🏆 Current challenge: %s\n💪 Task: %s\n📅 Total days: %d\n📅 Start: %s\n📅 Current day: %d",
			c.Name, c.TaskDescription, c.TotalDays, formatDate(c.StartDate), c.DisplayDay())
	}
	return b.String()
}

func statusEmoji(status common.UserStatus) string {
	switch status {
	case common.UserStatusActive:
		return "✅"
	case common.UserStatusBlocked:
		return "🚫"
	default:
		return "❓"
	}
}

// usersListMessages renders the user list split into sendable messages.
func usersListMessages(users []*challenge.User) []string {
	if len(users) == 0 {
		return []string{textNoUsers}
	}

	lines := make([]string, 0, len(users)+1)
	lines = append(lines, "All users:")
	for _, u := range users {
		username := u.Username
		if username == "" {
			username = "none"
		}
		lines = append(lines, fmt.Sprintf("%s ID: %d, Username: @%s, Status: %s, Day: %d, Reminders: %d",
			statusEmoji(u.Status), u.ID, username, u.Status, u.CurrentDay, u.ReminderCount))
	}
	return splitMessage(strings.Join(lines, "\n"), maxMessageLength)
}

// splitMessage cuts text into chunks of at most limit runes, preferring
// line boundaries.
func splitMessage(text string, limit int) []string {
	if len([]rune(text)) <= limit {
		return []string{text}
	}

	var parts []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			parts = append(parts, string(current))
			current = current[:0:0]
		}
	}

	for i, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		if i > 0 && len(current) > 0 {
			if len(current)+1+len(runes) > limit {
				flush()
			} else {
				current = append(current, '\n')
			}
		}
		for len(runes) > limit {
			flush()
			parts = append(parts, string(runes[:limit]))
			runes = runes[limit:]
		}
		current = append(current, runes...)
	}
	flush()
	return parts
}
