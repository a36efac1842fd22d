package challenge

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunDailyRollover clears submission flags dated before today and advances
// the active challenge's day counter. Submissions made on today itself
// survive, so a rollover scheduled after midnight keeps them. Reminder
// counts are left untouched. A second invocation on the same day advances
// the counter again.
func (s *challengeService) RunDailyRollover(ctx context.Context, today time.Time) error {
	cleared, err := s.repository.ClearSubmissions(ctx, today)
	if err != nil {
		s.logger.Error("Daily rollover failed to clear submissions", zap.Error(err))
		return err
	}

	advanced, err := s.repository.IncrementChallengeDay(ctx)
	if err != nil {
		s.logger.Error("Daily rollover failed to advance challenge day", zap.Error(err))
		return err
	}

	s.logger.Info("Daily rollover completed",
		zap.Time("date", today),
		zap.Int64("submissions_cleared", cleared),
		zap.Int64("challenges_advanced", advanced))
	return nil
}
