package challenge

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"challengebot/internal/common"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormRepository implements the Repository interface using GORM
type gormRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormRepository creates a new GORM-based challenge repository
func NewGormRepository(db *gorm.DB, logger *zap.Logger) Repository {
	return &gormRepository{
		db:     db,
		logger: logger,
	}
}

func (r *gormRepository) CreateUserIfAbsent(ctx context.Context, user *User) (bool, error) {
	r.logger.Debug("Creating user if absent", zap.Int64("user_id", user.ID))

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(user)
	if result.Error != nil {
		return false, WrapRepositoryError(result.Error, "create user")
	}

	return result.RowsAffected == 1, nil
}

func (r *gormRepository) GetUser(ctx context.Context, id int64) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userNotFound(id)
		}
		return nil, WrapRepositoryError(err, "get user")
	}
	return &user, nil
}

// UpdateUser locks the user row for the duration of fn. SQLite ignores the
// locking clause and relies on its single-writer transaction instead.
func (r *gormRepository) UpdateUser(ctx context.Context, id int64, fn func(*User) error) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return userNotFound(id)
			}
			return err
		}

		if err := fn(&user); err != nil {
			return err
		}

		return tx.Save(&user).Error
	})
	if err != nil {
		var notRepo ChallengeError
		if errors.As(err, &notRepo) || IsDomainError(err) || errors.Is(err, errSkipUser) {
			return nil, err
		}
		return nil, WrapRepositoryError(err, "update user")
	}

	return &user, nil
}

func (r *gormRepository) ListUsers(ctx context.Context) ([]*User, error) {
	var users []*User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, WrapRepositoryError(err, "list users")
	}
	return users, nil
}

func (r *gormRepository) ListActiveUsers(ctx context.Context) ([]*User, error) {
	var users []*User
	err := r.db.WithContext(ctx).
		Where("status = ?", common.UserStatusActive).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, WrapRepositoryError(err, "list active users")
	}
	return users, nil
}

func (r *gormRepository) ResetUsersForChallenge(ctx context.Context, start time.Time) (int64, error) {
	r.logger.Debug("Resetting users for challenge", zap.Time("start_date", start))

	result := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Model(&User{}).
		Updates(map[string]interface{}{
			"challenge_start_date": start,
			"current_day":          1,
			"reminder_count":       0,
			"last_submission_date": nil,
			"last_reminder_time":   nil,
		})
	if result.Error != nil {
		return 0, WrapRepositoryError(result.Error, "reset users")
	}
	return result.RowsAffected, nil
}

func (r *gormRepository) ClearSubmissions(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&User{}).
		Where("last_submission_date < ?", common.Date(before)).
		Update("last_submission_date", nil)
	if result.Error != nil {
		return 0, WrapRepositoryError(result.Error, "clear submissions")
	}
	return result.RowsAffected, nil
}

func (r *gormRepository) GetActiveChallenge(ctx context.Context) (*Challenge, error) {
	var c Challenge
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id DESC").First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapRepositoryError(err, "get active challenge")
	}
	return &c, nil
}

func (r *gormRepository) AnyChallengeExists(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Challenge{}).Count(&count).Error; err != nil {
		return false, WrapRepositoryError(err, "count challenges")
	}
	return count > 0, nil
}

func (r *gormRepository) ReplaceActiveChallenge(ctx context.Context, c *Challenge) (int64, error) {
	var deactivated int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Challenge{}).Where("is_active = ?", true).Update("is_active", false)
		if result.Error != nil {
			return result.Error
		}
		deactivated = result.RowsAffected

		c.IsActive = true
		return tx.Create(c).Error
	})
	if err != nil {
		return 0, WrapRepositoryError(err, "replace active challenge")
	}

	r.logger.Info("Active challenge replaced",
		zap.Uint("challenge_id", c.ID),
		zap.Int64("deactivated", deactivated))
	return deactivated, nil
}

func (r *gormRepository) UpdateActiveChallengeTask(ctx context.Context, task string) (*Challenge, error) {
	var c Challenge
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("is_active = ?", true).
			Order("id DESC").
			First(&c).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoActiveChallenge
			}
			return err
		}
		c.TaskDescription = task
		return tx.Model(&c).Update("task_description", task).Error
	})
	if err != nil {
		return nil, WrapRepositoryError(err, "update challenge task")
	}
	return &c, nil
}

func (r *gormRepository) IncrementChallengeDay(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&Challenge{}).
		Where("is_active = ?", true).
		UpdateColumn("current_day", gorm.Expr("current_day + ?", 1))
	if result.Error != nil {
		return 0, WrapRepositoryError(result.Error, "increment challenge day")
	}
	return result.RowsAffected, nil
}

func userNotFound(id int64) error {
	return fmt.Errorf("%w: %w", ErrUserNotFound, common.NotFoundError{Resource: "user", ID: strconv.FormatInt(id, 10)})
}
