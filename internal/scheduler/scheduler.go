package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"challengebot/internal/challenge"
	"challengebot/internal/common"
	"challengebot/internal/config"
	"challengebot/internal/metrics"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const (
	JobReminderSweep = "reminder_sweep"
	JobDailyRollover = "daily_rollover"
)

// Jobs is the work fired by the scheduler.
type Jobs interface {
	RunReminderSweep(ctx context.Context, now time.Time) (*challenge.ReminderSweepReport, error)
	RunDailyRollover(ctx context.Context, today time.Time) error
}

// Scheduler defines the interface for the wall-clock job scheduler
type Scheduler interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
	GetMetrics() *SchedulerMetrics
	// NextRuns reports the next firing time of each registered job.
	NextRuns() map[string]time.Time
}

// clockTime is a time of day in the scheduler's location.
type clockTime struct {
	hour, minute uint
}

func (c clockTime) atTime() gocron.AtTime {
	return gocron.NewAtTime(c.hour, c.minute, 0)
}

// scheduler implements the Scheduler interface on top of gocron
type scheduler struct {
	config      config.SchedulerConfig
	location    *time.Location
	jobs        Jobs
	clock       common.Clock
	logger      *zap.Logger
	metrics     *SchedulerMetrics
	promMetrics *metrics.Metrics

	rolloverAt  clockTime
	reminderAts []clockTime

	mu      sync.Mutex
	cron    gocron.Scheduler
	ctx     context.Context
	cancel  context.CancelFunc
	running atomic.Bool
}

// NewScheduler validates the configured times and creates a stopped scheduler.
func NewScheduler(cfg config.SchedulerConfig, location *time.Location, jobs Jobs, clock common.Clock, logger *zap.Logger, promMetrics *metrics.Metrics) (Scheduler, error) {
	if jobs == nil {
		return nil, NewConfigurationError("jobs", nil, "must not be nil")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, NewConfigurationError("shutdown_timeout", cfg.ShutdownTimeout, "must be greater than 0")
	}
	if len(cfg.ReminderTimes) == 0 {
		return nil, NewConfigurationError("reminder_times", cfg.ReminderTimes, "at least one reminder time is required")
	}

	rolloverAt, err := parseClockTime(cfg.RolloverTime)
	if err != nil {
		return nil, NewConfigurationError("rollover_time", cfg.RolloverTime, err.Error())
	}

	reminderAts := make([]clockTime, 0, len(cfg.ReminderTimes))
	for _, raw := range cfg.ReminderTimes {
		at, err := parseClockTime(raw)
		if err != nil {
			return nil, NewConfigurationError("reminder_times", raw, err.Error())
		}
		reminderAts = append(reminderAts, at)
	}

	if location == nil {
		location = time.UTC
	}
	if clock == nil {
		clock = common.NewRealClock()
	}

	return &scheduler{
		config:      cfg,
		location:    location,
		jobs:        jobs,
		clock:       clock,
		logger:      logger,
		metrics:     NewSchedulerMetrics(),
		promMetrics: promMetrics,
		rolloverAt:  rolloverAt,
		reminderAts: reminderAts,
	}, nil
}

// parseClockTime parses "HH:MM" in 24-hour format.
func parseClockTime(value string) (clockTime, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return clockTime{}, fmt.Errorf("expected HH:MM, got %q", value)
	}
	hour, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil || hour > 23 {
		return clockTime{}, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil || minute > 59 {
		return clockTime{}, fmt.Errorf("invalid minute in %q", value)
	}
	return clockTime{hour: uint(hour), minute: uint(minute)}, nil
}

// Start registers the rollover and reminder jobs and starts firing them
func (s *scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return NewSchedulerError(ErrSchedulerAlreadyRunning, "scheduler is already running")
	}

	cron, err := gocron.NewScheduler(
		gocron.WithLocation(s.location),
		gocron.WithStopTimeout(time.Duration(s.config.ShutdownTimeout)*time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to create cron scheduler: %w", err)
	}

	_, err = cron.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(s.rolloverAt.atTime())),
		gocron.NewTask(s.runDailyRollover),
		gocron.WithName(JobDailyRollover),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = cron.Shutdown()
		return fmt.Errorf("failed to register %s job: %w", JobDailyRollover, err)
	}

	atTimes := make([]gocron.AtTime, 0, len(s.reminderAts))
	for _, at := range s.reminderAts {
		atTimes = append(atTimes, at.atTime())
	}
	_, err = cron.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(atTimes[0], atTimes[1:]...)),
		gocron.NewTask(s.runReminderSweep),
		gocron.WithName(JobReminderSweep),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = cron.Shutdown()
		return fmt.Errorf("failed to register %s job: %w", JobReminderSweep, err)
	}

	// Summaries describe the current run only.
	s.metrics.Reset()

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron = cron
	s.cron.Start()
	s.running.Store(true)

	s.logger.Info("Scheduler started",
		zap.String("location", s.location.String()),
		zap.String("rollover_time", s.config.RolloverTime),
		zap.Strings("reminder_times", s.config.ReminderTimes))
	return nil
}

// Stop deregisters all jobs, waiting up to the shutdown timeout for running ones.
func (s *scheduler) Stop() error {
	s.mu.Lock()
	if !s.running.Load() {
		s.mu.Unlock()
		return NewSchedulerError(ErrSchedulerNotRunning, "scheduler is not running")
	}
	cron, cancel := s.cron, s.cancel
	s.running.Store(false)
	s.mu.Unlock()

	s.logger.Info("Stopping scheduler...")

	// Shutdown waits for in-flight jobs, which read the job context under s.mu.
	err := cron.Shutdown()
	if cancel != nil {
		cancel()
	}

	if err != nil {
		s.logger.Warn("Scheduler shutdown did not complete cleanly", zap.Error(err))
		return NewSchedulerError(ErrShutdownFailed, err.Error())
	}

	s.logger.Info("Scheduler stopped successfully")
	return nil
}

// IsRunning returns true if the scheduler is currently running
func (s *scheduler) IsRunning() bool {
	return s.running.Load()
}

// GetMetrics returns the current scheduler metrics
func (s *scheduler) GetMetrics() *SchedulerMetrics {
	return s.metrics
}

func (s *scheduler) NextRuns() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs := make(map[string]time.Time)
	if s.cron == nil || !s.running.Load() {
		return runs
	}
	for _, job := range s.cron.Jobs() {
		next, err := job.NextRun()
		if err != nil {
			continue
		}
		runs[job.Name()] = next
	}
	return runs
}

func (s *scheduler) jobContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

func (s *scheduler) runReminderSweep() {
	defer s.recoverJob(JobReminderSweep)

	started := time.Now()
	report, err := s.jobs.RunReminderSweep(s.jobContext(), s.clock.Now())
	duration := time.Since(started)
	s.promMetrics.ObserveJob(JobReminderSweep, duration, err)

	if err != nil {
		jobErr := NewJobError(JobReminderSweep, err)
		s.metrics.RecordJobError(jobErr)
		s.logger.Error("Reminder sweep failed", zap.Error(err))
		return
	}
	s.metrics.RecordSweep(report, duration)
}

func (s *scheduler) runDailyRollover() {
	defer s.recoverJob(JobDailyRollover)

	started := time.Now()
	today := common.DateIn(s.clock.Now(), s.location)
	err := s.jobs.RunDailyRollover(s.jobContext(), today)
	s.promMetrics.ObserveJob(JobDailyRollover, time.Since(started), err)

	if err != nil {
		jobErr := NewJobError(JobDailyRollover, err)
		s.metrics.RecordJobError(jobErr)
		s.logger.Error("Daily rollover failed", zap.Error(err))
		return
	}
	s.metrics.RecordRollover()
}

// recoverJob keeps a panicking job from taking down the scheduler; the job
// fires again at its next scheduled time.
func (s *scheduler) recoverJob(job string) {
	if r := recover(); r != nil {
		s.metrics.RecordJobError(NewJobError(job, fmt.Errorf("panic: %v", r)))
		s.logger.Error("Scheduled job panic recovered",
			zap.String("job", job),
			zap.Any("panic", r))
	}
}
