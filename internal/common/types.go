package common

import (
	"fmt"

	"github.com/google/uuid"
)

// ID is a correlation identifier attached to events and requests.
type ID string

// NewID generates a new unique identifier
func NewID() ID {
	return ID(uuid.New().String())
}

func (id ID) String() string {
	return string(id)
}

// UserStatus governs whether reminders and submissions are processed for a user.
type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
	UserStatusBanned  UserStatus = "banned"
)

func (s UserStatus) String() string {
	return string(s)
}

// IsValid checks if the UserStatus is valid
func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusActive, UserStatusBlocked, UserStatusBanned:
		return true
	default:
		return false
	}
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
}
