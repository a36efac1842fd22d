package challenge

import (
	"fmt"

	"gorm.io/gorm"
)

// RunMigrations performs auto-migration for the users and challenges tables
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &Challenge{}); err != nil {
		return fmt.Errorf("failed to auto-migrate challenge tables: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_status_submission ON users(status, last_submission_date)",
		"CREATE INDEX IF NOT EXISTS idx_challenges_active_id ON challenges(is_active, id)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
