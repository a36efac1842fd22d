package challenge

import (
	"context"
	"errors"
	"strings"
	"time"

	"challengebot/internal/common"
	"challengebot/internal/events"
	"challengebot/internal/metrics"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// DefaultReminderInterval is the minimum spacing between an ignored
// reminder and the auto-block it escalates to.
const DefaultReminderInterval = 7*time.Hour + 30*time.Minute

// Service defines the challenge operations used by the transport layer,
// the scheduler and the ops API.
type Service interface {
	Register(ctx context.Context, userID int64, username string) (*User, bool, error)
	GetProgress(ctx context.Context, userID int64) (*Progress, error)
	RecordSubmission(ctx context.Context, req SubmissionRequest) (*SubmissionOutcome, error)

	RunReminderSweep(ctx context.Context, now time.Time) (*ReminderSweepReport, error)
	RunDailyRollover(ctx context.Context, today time.Time) error

	CreateChallenge(ctx context.Context, name, task string, totalDays int) (*Challenge, error)
	EnsureChallenge(ctx context.Context, name, task string, totalDays int) (*Challenge, bool, error)
	UpdateTask(ctx context.Context, task string) (*Challenge, error)
	SetUserStatus(ctx context.Context, userID int64, status common.UserStatus) (*User, error)
	GetActiveChallenge(ctx context.Context) (*Challenge, error)
	ListUsers(ctx context.Context) ([]*User, error)
	GetStats(ctx context.Context) (*Stats, error)
}

// Options configures a challenge service.
type Options struct {
	// Location defines calendar days. Defaults to UTC.
	Location         *time.Location
	ReminderInterval time.Duration
	Clock            common.Clock
	Metrics          *metrics.Metrics
}

// challengeService implements the Service interface
type challengeService struct {
	eventBus         events.EventBus
	logger           *zap.Logger
	repository       Repository
	clock            common.Clock
	location         *time.Location
	reminderInterval time.Duration
	metrics          *metrics.Metrics
	newBackOff       func() backoff.BackOff
}

// NewChallengeService creates a new instance of Service
func NewChallengeService(eventBus events.EventBus, logger *zap.Logger, repository Repository, opts Options) Service {
	s := &challengeService{
		eventBus:         eventBus,
		logger:           logger,
		repository:       repository,
		clock:            opts.Clock,
		location:         opts.Location,
		reminderInterval: opts.ReminderInterval,
		metrics:          opts.Metrics,
	}
	if s.clock == nil {
		s.clock = common.NewRealClock()
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.reminderInterval <= 0 {
		s.reminderInterval = DefaultReminderInterval
	}
	s.newBackOff = func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 200 * time.Millisecond
		b.MaxElapsedTime = 10 * time.Second
		return backoff.WithMaxRetries(b, 5)
	}
	return s
}

// today returns the current calendar date in the challenge location.
func (s *challengeService) today() time.Time {
	return common.DateIn(s.clock.Now(), s.location)
}

func (s *challengeService) Register(ctx context.Context, userID int64, username string) (*User, bool, error) {
	active, err := s.repository.GetActiveChallenge(ctx)
	if err != nil {
		return nil, false, err
	}

	user := &User{
		ID:       userID,
		Username: username,
		Status:   common.UserStatusActive,
	}
	if active != nil {
		today := s.today()
		user.ChallengeStartDate = &today
		user.CurrentDay = CurrentDayFor(&today, today, active.TotalDays)
	}

	created, err := s.repository.CreateUserIfAbsent(ctx, user)
	if err != nil {
		s.logger.Error("Failed to register user", zap.Int64("user_id", userID), zap.Error(err))
		return nil, false, err
	}

	if !created {
		existing, err := s.repository.GetUser(ctx, userID)
		return existing, false, err
	}

	s.logger.Info("User registered",
		zap.Int64("user_id", userID),
		zap.String("username", username),
		zap.Bool("enrolled", user.ChallengeStartDate != nil))
	return user, true, nil
}

// GetProgress returns ErrNotRegistered for unknown users.
func (s *challengeService) GetProgress(ctx context.Context, userID int64) (*Progress, error) {
	user, err := s.repository.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}

	active, err := s.repository.GetActiveChallenge(ctx)
	if err != nil {
		return nil, err
	}

	return &Progress{
		User:       user,
		Challenge:  active,
		CurrentDay: dayFor(user, active, s.today()),
	}, nil
}

func (s *challengeService) RecordSubmission(ctx context.Context, req SubmissionRequest) (*SubmissionOutcome, error) {
	submittedAt := req.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = s.clock.Now()
	}
	today := common.DateIn(submittedAt, s.location)

	active, err := s.repository.GetActiveChallenge(ctx)
	if err != nil {
		return nil, err
	}

	var day int
	_, err = s.repository.UpdateUser(ctx, req.UserID, func(u *User) error {
		if !u.IsActive() {
			return ErrUserBlocked
		}
		if active == nil {
			return ErrNoActiveChallenge
		}
		day = dayFor(u, active, today)
		if day == 0 {
			return ErrNotStarted
		}
		if u.SubmittedOn(today) {
			return ErrAlreadySubmittedToday
		}

		u.LastSubmissionDate = &today
		u.ReminderCount = 0
		u.CurrentDay = day
		if req.Username != "" {
			u.Username = req.Username
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			err = ErrNotRegistered
		}
		s.metrics.Submission(submissionOutcome(err))
		if IsDomainError(err) {
			s.logger.Info("Submission rejected", zap.Int64("user_id", req.UserID), zap.Error(err))
		} else {
			s.logger.Error("Failed to record submission", zap.Int64("user_id", req.UserID), zap.Error(err))
		}
		return nil, err
	}
	s.metrics.Submission(submissionOutcome(nil))

	s.logger.Info("Submission recorded",
		zap.Int64("user_id", req.UserID),
		zap.Int("day", day),
		zap.Int("total_days", active.TotalDays))

	event := events.SubmissionAccepted{
		Event:           events.NewEvent(),
		UserID:          req.UserID,
		Username:        req.Username,
		Day:             day,
		TotalDays:       active.TotalDays,
		ChallengeName:   active.Name,
		TaskDescription: active.TaskDescription,
		MediaRef:        req.MediaRef,
	}
	if err := s.eventBus.Publish(events.TopicSubmissionAccepted, event); err != nil {
		s.logger.Warn("Failed to publish SubmissionAccepted event",
			zap.Int64("user_id", req.UserID),
			zap.Error(err))
	}

	return &SubmissionOutcome{
		Day:             day,
		TotalDays:       active.TotalDays,
		ChallengeName:   active.Name,
		TaskDescription: active.TaskDescription,
	}, nil
}

func submissionOutcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, ErrNotRegistered):
		return "not_registered"
	case errors.Is(err, ErrUserBlocked):
		return "blocked"
	case errors.Is(err, ErrNoActiveChallenge):
		return "no_active_challenge"
	case errors.Is(err, ErrNotStarted):
		return "not_started"
	case errors.Is(err, ErrAlreadySubmittedToday):
		return "already_submitted"
	default:
		return "error"
	}
}

func (s *challengeService) CreateChallenge(ctx context.Context, name, task string, totalDays int) (*Challenge, error) {
	name = strings.TrimSpace(name)
	task = strings.TrimSpace(task)
	if name == "" {
		return nil, NewValidationError("name", name, "challenge name is required")
	}
	if task == "" {
		return nil, NewValidationError("task", task, "task description is required")
	}
	if totalDays <= 0 {
		return nil, NewValidationError("total_days", totalDays, "number of days must be positive")
	}

	start := s.today()
	c := &Challenge{
		Name:            name,
		TaskDescription: task,
		TotalDays:       totalDays,
		StartDate:       start,
		CurrentDay:      1,
		IsActive:        true,
	}

	deactivated, err := s.repository.ReplaceActiveChallenge(ctx, c)
	if err != nil {
		s.logger.Error("Failed to create challenge", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	usersReset, err := s.resetUsers(ctx, start)
	if err != nil {
		s.logger.Error("Challenge created but user reset failed",
			zap.Uint("challenge_id", c.ID),
			zap.Error(err))
		return c, err
	}

	s.logger.Info("Challenge created",
		zap.Uint("challenge_id", c.ID),
		zap.String("name", name),
		zap.Int("total_days", totalDays),
		zap.Int64("deactivated", deactivated),
		zap.Int64("users_reset", usersReset))

	event := events.ChallengeCreated{
		Event:       events.NewEvent(),
		ChallengeID: c.ID,
		Name:        c.Name,
		TotalDays:   c.TotalDays,
		StartDate:   c.StartDate,
		UsersReset:  usersReset,
	}
	if err := s.eventBus.Publish(events.TopicChallengeCreated, event); err != nil {
		s.logger.Warn("Failed to publish ChallengeCreated event", zap.Error(err))
	}

	return c, nil
}

// resetUsers retries the broadcast reset so a transient store failure does
// not leave users on the previous challenge.
func (s *challengeService) resetUsers(ctx context.Context, start time.Time) (int64, error) {
	var reset int64
	operation := func() error {
		n, err := s.repository.ResetUsersForChallenge(ctx, start)
		if err != nil {
			if !IsTemporaryError(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		reset = n
		return nil
	}
	notify := func(err error, wait time.Duration) {
		s.logger.Warn("Retrying user reset", zap.Duration("wait", wait), zap.Error(err))
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(s.newBackOff(), ctx), notify)
	return reset, err
}

// EnsureChallenge creates the bootstrap challenge when the store has never
// held one. It reports whether a challenge was created.
func (s *challengeService) EnsureChallenge(ctx context.Context, name, task string, totalDays int) (*Challenge, bool, error) {
	exists, err := s.repository.AnyChallengeExists(ctx)
	if err != nil {
		return nil, false, err
	}
	if exists {
		active, err := s.repository.GetActiveChallenge(ctx)
		return active, false, err
	}

	c, err := s.CreateChallenge(ctx, name, task, totalDays)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (s *challengeService) UpdateTask(ctx context.Context, task string) (*Challenge, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return nil, NewValidationError("task", task, "task description is required")
	}

	c, err := s.repository.UpdateActiveChallengeTask(ctx, task)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Challenge task updated", zap.Uint("challenge_id", c.ID), zap.String("task", task))
	return c, nil
}

// SetUserStatus changes a user's status. Activation resets the reminder
// count so the next sweep treats the user as a fresh target.
func (s *challengeService) SetUserStatus(ctx context.Context, userID int64, status common.UserStatus) (*User, error) {
	if !status.IsValid() {
		return nil, NewValidationError("status", status, "unknown user status")
	}

	user, err := s.repository.UpdateUser(ctx, userID, func(u *User) error {
		u.Status = status
		if status == common.UserStatusActive {
			u.ReminderCount = 0
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User status changed",
		zap.Int64("user_id", userID),
		zap.String("status", status.String()))
	return user, nil
}

func (s *challengeService) GetActiveChallenge(ctx context.Context) (*Challenge, error) {
	return s.repository.GetActiveChallenge(ctx)
}

// ListUsers returns every user with CurrentDay recomputed for today.
func (s *challengeService) ListUsers(ctx context.Context) ([]*User, error) {
	users, err := s.repository.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.repository.GetActiveChallenge(ctx)
	if err != nil {
		return nil, err
	}

	today := s.today()
	for _, u := range users {
		u.CurrentDay = dayFor(u, active, today)
	}
	return users, nil
}

func (s *challengeService) GetStats(ctx context.Context) (*Stats, error) {
	users, err := s.repository.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.repository.GetActiveChallenge(ctx)
	if err != nil {
		return nil, err
	}

	today := s.today()
	stats := &Stats{TotalUsers: len(users), Challenge: active}
	for _, u := range users {
		switch u.Status {
		case common.UserStatusActive:
			stats.ActiveUsers++
			if u.SubmittedOn(today) {
				stats.CompletedToday++
			} else {
				stats.PendingToday++
			}
		case common.UserStatusBlocked:
			stats.BlockedUsers++
		case common.UserStatusBanned:
			stats.BannedUsers++
		}
		if u.ReminderCount > 0 {
			stats.UsersWithReminders++
		}
	}
	return stats, nil
}
