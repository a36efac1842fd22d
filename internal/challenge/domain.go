package challenge

import (
	"time"

	"challengebot/internal/common"
)

// User is a registered challenge participant keyed by Telegram user id.
// Date columns hold calendar dates as UTC midnight values.
type User struct {
	ID                 int64             `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Username           string            `gorm:"size:64" json:"username"`
	Status             common.UserStatus `gorm:"size:16;not null;default:active;index" json:"status"`
	ChallengeStartDate *time.Time        `gorm:"type:date" json:"challenge_start_date,omitempty"`
	CurrentDay         int               `gorm:"not null;default:0" json:"current_day"`
	LastSubmissionDate *time.Time        `gorm:"type:date;index" json:"last_submission_date,omitempty"`
	ReminderCount      int               `gorm:"not null;default:0" json:"reminder_count"`
	LastReminderTime   *time.Time        `json:"last_reminder_time,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsActive reports whether reminders and submissions are processed for the user.
func (u *User) IsActive() bool {
	return u.Status == common.UserStatusActive
}

// SubmittedOn reports whether the user's last accepted submission is on today's date.
func (u *User) SubmittedOn(today time.Time) bool {
	return common.SameDate(u.LastSubmissionDate, today)
}

// Challenge is one generation of the campaign. Exactly one row is active.
type Challenge struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	TaskDescription string    `gorm:"type:text;not null" json:"task_description"`
	TotalDays       int       `gorm:"not null" json:"total_days"`
	StartDate       time.Time `gorm:"type:date;not null" json:"start_date"`
	CurrentDay      int       `gorm:"not null;default:1" json:"current_day"`
	IsActive        bool      `gorm:"not null;default:false;index" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Challenge) TableName() string {
	return "challenges"
}

// DisplayDay is the challenge-wide day counter capped at TotalDays.
func (c *Challenge) DisplayDay() int {
	if c.CurrentDay > c.TotalDays {
		return c.TotalDays
	}
	return c.CurrentDay
}

// SubmissionRequest carries one daily proof from the transport layer.
type SubmissionRequest struct {
	UserID      int64
	Username    string
	MediaRef    string
	SubmittedAt time.Time
}

// SubmissionOutcome is returned for an accepted submission.
type SubmissionOutcome struct {
	Day             int
	TotalDays       int
	ChallengeName   string
	TaskDescription string
}

// ReminderSweepReport summarizes one reminder sweep.
type ReminderSweepReport struct {
	Candidates    int `json:"candidates"`
	RemindersSent int `json:"reminders_sent"`
	UsersBlocked  int `json:"users_blocked"`
	Skipped       int `json:"skipped"`
	Failed        int `json:"failed"`
}

// Progress is a user's view of the running challenge.
type Progress struct {
	User       *User
	Challenge  *Challenge
	CurrentDay int
}

// Stats aggregates user state for the admin panel and the ops API.
type Stats struct {
	TotalUsers         int        `json:"total_users"`
	ActiveUsers        int        `json:"active_users"`
	BlockedUsers       int        `json:"blocked_users"`
	BannedUsers        int        `json:"banned_users"`
	UsersWithReminders int        `json:"users_with_reminders"`
	CompletedToday     int        `json:"completed_today"`
	PendingToday       int        `json:"pending_today"`
	Challenge          *Challenge `json:"challenge,omitempty"`
}
