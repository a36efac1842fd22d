package scheduler

import (
	"sync"
	"time"

	"challengebot/internal/challenge"
)

// SchedulerMetrics tracks job runs for the health endpoint
type SchedulerMetrics struct {
	mu                sync.RWMutex
	SweepsRun         int64
	RolloversRun      int64
	RemindersSent     int64
	UsersBlocked      int64
	JobErrors         int64
	LastSweepTime     time.Time
	LastRolloverTime  time.Time
	LastSweepDuration time.Duration
	LastSweepReport   challenge.ReminderSweepReport
	LastError         string
}

// MetricsSummary provides a summary of scheduler metrics
type MetricsSummary struct {
	SweepsRun         int64                         `json:"sweeps_run"`
	RolloversRun      int64                         `json:"rollovers_run"`
	RemindersSent     int64                         `json:"reminders_sent"`
	UsersBlocked      int64                         `json:"users_blocked"`
	JobErrors         int64                         `json:"job_errors"`
	LastSweepTime     time.Time                     `json:"last_sweep_time"`
	LastRolloverTime  time.Time                     `json:"last_rollover_time"`
	LastSweepDuration string                        `json:"last_sweep_duration"`
	LastSweepReport   challenge.ReminderSweepReport `json:"last_sweep_report"`
	LastError         string                        `json:"last_error,omitempty"`
}

// NewSchedulerMetrics creates a new metrics instance
func NewSchedulerMetrics() *SchedulerMetrics {
	return &SchedulerMetrics{}
}

// RecordSweep records a completed reminder sweep
func (m *SchedulerMetrics) RecordSweep(report *challenge.ReminderSweepReport, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SweepsRun++
	m.LastSweepTime = time.Now()
	m.LastSweepDuration = duration
	if report != nil {
		m.RemindersSent += int64(report.RemindersSent)
		m.UsersBlocked += int64(report.UsersBlocked)
		m.LastSweepReport = *report
	}
}

// RecordRollover records a completed daily rollover
func (m *SchedulerMetrics) RecordRollover() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RolloversRun++
	m.LastRolloverTime = time.Now()
}

// RecordJobError increments the error counter
func (m *SchedulerMetrics) RecordJobError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.JobErrors++
	if err != nil {
		m.LastError = err.Error()
	}
}

// GetMetricsSummary returns a consistent snapshot of the metrics
func (m *SchedulerMetrics) GetMetricsSummary() MetricsSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MetricsSummary{
		SweepsRun:         m.SweepsRun,
		RolloversRun:      m.RolloversRun,
		RemindersSent:     m.RemindersSent,
		UsersBlocked:      m.UsersBlocked,
		JobErrors:         m.JobErrors,
		LastSweepTime:     m.LastSweepTime,
		LastRolloverTime:  m.LastRolloverTime,
		LastSweepDuration: m.LastSweepDuration.String(),
		LastSweepReport:   m.LastSweepReport,
		LastError:         m.LastError,
	}
}

// Reset resets all metrics to zero
func (m *SchedulerMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SweepsRun = 0
	m.RolloversRun = 0
	m.RemindersSent = 0
	m.UsersBlocked = 0
	m.JobErrors = 0
	m.LastSweepTime = time.Time{}
	m.LastRolloverTime = time.Time{}
	m.LastSweepDuration = 0
	m.LastSweepReport = challenge.ReminderSweepReport{}
	m.LastError = ""
}
