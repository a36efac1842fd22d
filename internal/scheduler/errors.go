package scheduler

import (
	"errors"
	"fmt"
)

// SchedulerError defines the interface for scheduler-specific errors
type SchedulerError interface {
	error
	Code() string
	Message() string
	Temporary() bool
}

// schedulerError implements the SchedulerError interface
type schedulerError struct {
	code      string
	message   string
	temporary bool
}

func (e *schedulerError) Error() string {
	return fmt.Sprintf("scheduler error [%s]: %s", e.code, e.message)
}

func (e *schedulerError) Code() string {
	return e.code
}

func (e *schedulerError) Message() string {
	return e.message
}

func (e *schedulerError) Temporary() bool {
	return e.temporary
}

// Error constants
const (
	ErrSchedulerNotRunning     = "scheduler_not_running"
	ErrSchedulerAlreadyRunning = "scheduler_already_running"
	ErrInvalidConfiguration    = "invalid_configuration"
	ErrJobFailed               = "job_failed"
	ErrShutdownFailed          = "shutdown_failed"
)

// JobError wraps a failed run of a scheduled job.
type JobError struct {
	schedulerError
	Job   string
	Cause error
}

func (e *JobError) Unwrap() error {
	return e.Cause
}

type ConfigurationError struct {
	schedulerError
	Field string
	Value interface{}
}

// Constructor functions
func NewSchedulerError(code, message string) error {
	return &schedulerError{
		code:      code,
		message:   message,
		temporary: false,
	}
}

func NewJobError(job string, err error) error {
	return &JobError{
		schedulerError: schedulerError{
			code:      ErrJobFailed,
			message:   fmt.Sprintf("job %s failed: %v", job, err),
			temporary: true,
		},
		Job:   job,
		Cause: err,
	}
}

func NewConfigurationError(field string, value interface{}, message string) error {
	return &ConfigurationError{
		schedulerError: schedulerError{
			code:      ErrInvalidConfiguration,
			message:   fmt.Sprintf("invalid configuration for field %s (value: %v): %s", field, value, message),
			temporary: false,
		},
		Field: field,
		Value: value,
	}
}

// Error classification helpers
func IsTemporaryError(err error) bool {
	var schedErr SchedulerError
	if errors.As(err, &schedErr) {
		return schedErr.Temporary()
	}
	return false
}

func IsConfigurationError(err error) bool {
	var schedErr SchedulerError
	if errors.As(err, &schedErr) {
		return schedErr.Code() == ErrInvalidConfiguration
	}
	return false
}
