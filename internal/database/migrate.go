package database

import (
	"fmt"

	"tasktimer/backend/internal/models"

	"gorm.io/gorm"
)

// runningEntryIndex allows at most one open (end_time IS NULL) entry per
// task. Both PostgreSQL and SQLite support partial unique indexes.
const runningEntryIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_time_entries_running
	ON time_entries (task_id) WHERE end_time IS NULL`

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TimeEntry{},
		&models.RefreshToken{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	if err := db.Exec(runningEntryIndex).Error; err != nil {
		return fmt.Errorf("failed to create running entry index: %w", err)
	}

	return nil
}
