package challenge

import (
	"errors"
	"fmt"
)

// Error codes for challenge module
const (
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeRepository       = "REPOSITORY_ERROR"
)

// Domain rule violations surfaced to end users. No state is mutated when
// one of these is returned.
var (
	ErrNotRegistered         = errors.New("user is not registered")
	ErrUserBlocked           = errors.New("user is blocked")
	ErrNoActiveChallenge     = errors.New("no active challenge")
	ErrNotStarted            = errors.New("challenge has not started for user")
	ErrAlreadySubmittedToday = errors.New("already submitted today")
	ErrUserNotFound          = errors.New("user not found")
)

// ChallengeError interface for challenge-specific errors
type ChallengeError interface {
	error
	Code() string
	Message() string
	Temporary() bool
}

// ValidationError represents bad admin input
type ValidationError struct {
	Field      string
	Value      interface{}
	ErrMessage string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s (value: %v)", e.Field, e.ErrMessage, e.Value)
}

func (e ValidationError) Code() string {
	return ErrCodeValidationFailed
}

func (e ValidationError) Message() string {
	return e.ErrMessage
}

func (e ValidationError) Temporary() bool {
	return false
}

// RepositoryError represents database operation failures
type RepositoryError struct {
	Operation string
	Details   string
	Cause     error
}

func (e RepositoryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("repository error during %s: %s (caused by: %v)", e.Operation, e.Details, e.Cause)
	}
	return fmt.Sprintf("repository error during %s: %s", e.Operation, e.Details)
}

func (e RepositoryError) Code() string {
	return ErrCodeRepository
}

func (e RepositoryError) Message() string {
	return e.Details
}

func (e RepositoryError) Temporary() bool {
	return true
}

func (e RepositoryError) Unwrap() error {
	return e.Cause
}

// WrapRepositoryError wraps an error as a RepositoryError. Domain sentinel
// errors pass through unchanged.
func WrapRepositoryError(err error, operation string) error {
	if err == nil || IsDomainError(err) {
		return err
	}
	var repoErr RepositoryError
	if errors.As(err, &repoErr) {
		return err
	}
	return RepositoryError{
		Operation: operation,
		Details:   "database operation failed",
		Cause:     err,
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) error {
	return ValidationError{
		Field:      field,
		Value:      value,
		ErrMessage: message,
	}
}

// IsDomainError reports whether err is a rule violation meant for the end user.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrNotRegistered, ErrUserBlocked, ErrNoActiveChallenge,
		ErrNotStarted, ErrAlreadySubmittedToday, ErrUserNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

// IsTemporaryError checks if the error is temporary and can be retried
func IsTemporaryError(err error) bool {
	var ce ChallengeError
	if errors.As(err, &ce) {
		return ce.Temporary()
	}
	return false
}
