package challenge

import (
	"context"
	"errors"
	"time"

	"challengebot/internal/common"
	"challengebot/internal/events"

	"go.uber.org/zap"
)

// errSkipUser aborts a per-user update without writing when the user no
// longer qualifies for a reminder.
var errSkipUser = errors.New("user no longer eligible for reminder")

// RunReminderSweep reminds every active user who has not submitted today
// and auto-blocks users who ignored a reminder for at least the reminder
// interval. Store failures while loading the batch abort the sweep; a
// failure for one user is counted and logged and the sweep moves on.
func (s *challengeService) RunReminderSweep(ctx context.Context, now time.Time) (*ReminderSweepReport, error) {
	today := common.DateIn(now, s.location)

	active, err := s.repository.GetActiveChallenge(ctx)
	if err != nil {
		s.logger.Error("Reminder sweep aborted: cannot load challenge", zap.Error(err))
		return nil, err
	}
	users, err := s.repository.ListActiveUsers(ctx)
	if err != nil {
		s.logger.Error("Reminder sweep aborted: cannot load users", zap.Error(err))
		return nil, err
	}

	report := &ReminderSweepReport{}
	for _, candidate := range users {
		if candidate.SubmittedOn(today) {
			continue
		}
		report.Candidates++

		if dayFor(candidate, active, today) == 0 {
			report.Skipped++
			continue
		}

		s.remindUser(ctx, candidate.ID, active, now, today, report)
	}

	s.logger.Info("Reminder sweep completed",
		zap.Time("now", now),
		zap.Int("candidates", report.Candidates),
		zap.Int("reminders_sent", report.RemindersSent),
		zap.Int("users_blocked", report.UsersBlocked),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))

	return report, nil
}

func (s *challengeService) remindUser(ctx context.Context, userID int64, active *Challenge, now, today time.Time, report *ReminderSweepReport) {
	var (
		block bool
		day   int
	)

	// Eligibility is re-checked under the row lock so a submission or
	// status change that landed after the batch was loaded wins.
	updated, err := s.repository.UpdateUser(ctx, userID, func(u *User) error {
		if !u.IsActive() || u.SubmittedOn(today) {
			return errSkipUser
		}
		day = dayFor(u, active, today)
		if day == 0 {
			return errSkipUser
		}

		block = shouldBlock(u, now, s.reminderInterval)

		reminderAt := now.UTC()
		u.ReminderCount++
		u.LastReminderTime = &reminderAt
		u.CurrentDay = day
		if block {
			u.Status = common.UserStatusBlocked
		}
		return nil
	})
	switch {
	case errors.Is(err, errSkipUser):
		report.Skipped++
		return
	case err != nil:
		report.Failed++
		s.logger.Error("Failed to update reminder state",
			zap.Int64("user_id", userID),
			zap.String("operation", "reminder_sweep"),
			zap.Error(err))
		return
	}

	if block {
		event := events.UserBlocked{
			Event:         events.NewEvent(),
			UserID:        userID,
			ReminderCount: updated.ReminderCount,
		}
		if err := s.eventBus.Publish(events.TopicUserBlocked, event); err != nil {
			report.Failed++
			s.logger.Error("Failed to publish UserBlocked event", zap.Int64("user_id", userID), zap.Error(err))
		}
		// The block is persisted regardless of notification.
		report.UsersBlocked++
		s.metrics.UserBlocked()
		s.logger.Info("User auto-blocked",
			zap.Int64("user_id", userID),
			zap.Int("reminder_count", updated.ReminderCount))
		return
	}

	event := events.ReminderDue{
		Event:           events.NewEvent(),
		UserID:          userID,
		ReminderOrdinal: updated.ReminderCount,
		CurrentDay:      day,
		TotalDays:       active.TotalDays,
		ChallengeName:   active.Name,
		TaskDescription: active.TaskDescription,
	}
	if err := s.eventBus.Publish(events.TopicReminderDue, event); err != nil {
		report.Failed++
		s.logger.Error("Failed to publish ReminderDue event", zap.Int64("user_id", userID), zap.Error(err))
		return
	}
	report.RemindersSent++
	s.metrics.ReminderSent()
}

// shouldBlock decides escalation from the state before this sweep's
// increment: a user is blocked only after at least one earlier reminder
// that is at least interval old.
func shouldBlock(u *User, now time.Time, interval time.Duration) bool {
	if u.ReminderCount < 1 || u.LastReminderTime == nil {
		return false
	}
	return now.Sub(*u.LastReminderTime) >= interval
}
