package challenge

import (
	"context"
	"time"
)

// Repository is the persistent store for users and challenge generations.
//
// Every mutation of a single user row goes through UpdateUser, which runs fn
// against a locked copy of the row and persists it only when fn returns nil.
// Challenge mutations are single statements or single transactions against
// the active row.
type Repository interface {
	// CreateUserIfAbsent inserts user unless a row with the same id exists.
	CreateUserIfAbsent(ctx context.Context, user *User) (bool, error)
	// GetUser returns ErrUserNotFound for unknown ids.
	GetUser(ctx context.Context, id int64) (*User, error)
	UpdateUser(ctx context.Context, id int64, fn func(*User) error) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	ListActiveUsers(ctx context.Context) ([]*User, error)
	// ResetUsersForChallenge puts every user at day 1 of a challenge
	// starting on start and clears submission and reminder state.
	ResetUsersForChallenge(ctx context.Context, start time.Time) (int64, error)
	// ClearSubmissions nulls last submission dates earlier than before.
	// Submissions already dated before are kept.
	ClearSubmissions(ctx context.Context, before time.Time) (int64, error)

	// GetActiveChallenge returns nil without error when no challenge is active.
	GetActiveChallenge(ctx context.Context) (*Challenge, error)
	AnyChallengeExists(ctx context.Context) (bool, error)
	// ReplaceActiveChallenge deactivates the current challenge and inserts c
	// as the active one. It returns the number of rows deactivated.
	ReplaceActiveChallenge(ctx context.Context, c *Challenge) (int64, error)
	UpdateActiveChallengeTask(ctx context.Context, task string) (*Challenge, error)
	IncrementChallengeDay(ctx context.Context) (int64, error)
}
