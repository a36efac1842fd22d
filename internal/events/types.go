package events

import (
	"time"

	"challengebot/internal/common"
)

// Event represents the base event structure with common fields
type Event struct {
	CorrelationID string    `json:"correlation_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewEvent creates a new base event with generated correlation ID
func NewEvent() Event {
	return Event{
		CorrelationID: common.NewID().String(),
		Timestamp:     time.Now(),
	}
}

func (e Event) GetCorrelationID() string {
	return e.CorrelationID
}

// SubmissionAccepted is published after a daily proof has been recorded.
type SubmissionAccepted struct {
	Event
	UserID          int64  `json:"user_id"`
	Username        string `json:"username"`
	Day             int    `json:"day"`
	TotalDays       int    `json:"total_days"`
	ChallengeName   string `json:"challenge_name"`
	TaskDescription string `json:"task_description"`
	MediaRef        string `json:"media_ref"`
}

// ReminderDue asks the messaging layer to remind a user about today's task.
type ReminderDue struct {
	Event
	UserID          int64  `json:"user_id"`
	ReminderOrdinal int    `json:"reminder_ordinal"`
	CurrentDay      int    `json:"current_day"`
	TotalDays       int    `json:"total_days"`
	ChallengeName   string `json:"challenge_name"`
	TaskDescription string `json:"task_description"`
}

// UserBlocked is published when the reminder sweep auto-blocks a user.
type UserBlocked struct {
	Event
	UserID        int64 `json:"user_id"`
	ReminderCount int   `json:"reminder_count"`
}

// ChallengeCreated is published after a challenge replaced the previous one.
type ChallengeCreated struct {
	Event
	ChallengeID uint      `json:"challenge_id"`
	Name        string    `json:"name"`
	TotalDays   int       `json:"total_days"`
	StartDate   time.Time `json:"start_date"`
	UsersReset  int64     `json:"users_reset"`
}

// Event topics constants
const (
	TopicSubmissionAccepted = "submission.accepted"
	TopicReminderDue        = "reminder.due"
	TopicUserBlocked        = "user.blocked"
	TopicChallengeCreated   = "challenge.created"
)
