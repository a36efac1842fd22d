package chatbot

import (
	"time"
)

// SessionState is the step of an administrator's multi-step conversation.
type SessionState string

const (
	SessionStateIdle                 SessionState = "idle"
	SessionStateCollectingName       SessionState = "collecting_name"
	SessionStateCollectingTask       SessionState = "collecting_task"
	SessionStateCollectingDays       SessionState = "collecting_days"
	SessionStateCollectingTaskUpdate SessionState = "collecting_task_update"
	SessionStateCollectingBlockID    SessionState = "collecting_block_id"
	SessionStateCollectingActivateID SessionState = "collecting_activate_id"
)

// AdminSession holds the state of one administrator's conversation and
// the values collected so far.
type AdminSession struct {
	UserID        int64        `json:"user_id"`
	State         SessionState `json:"state"`
	ChallengeName string       `json:"challenge_name,omitempty"`
	ChallengeTask string       `json:"challenge_task,omitempty"`
	LastActivity  time.Time    `json:"last_activity"`
}

// Command represents supported bot commands
type Command string

const (
	CommandStart Command = "start"
	CommandAdmin Command = "admin"
	CommandTest  Command = "test"
)

// Inline keyboard callback data.
const (
	CallbackCreateChallenge = "create_challenge"
	CallbackUpdateTask      = "update_task"
	CallbackAdminBlock      = "admin_block"
	CallbackAdminActivate   = "admin_activate"
)

// IsValid checks if the session state is valid
func (ss SessionState) IsValid() bool {
	switch ss {
	case SessionStateIdle, SessionStateCollectingName, SessionStateCollectingTask,
		SessionStateCollectingDays, SessionStateCollectingTaskUpdate,
		SessionStateCollectingBlockID, SessionStateCollectingActivateID:
		return true
	default:
		return false
	}
}

// IsValid checks if the command is valid
func (c Command) IsValid() bool {
	switch c {
	case CommandStart, CommandAdmin, CommandTest:
		return true
	default:
		return false
	}
}
