package services

import (
	"errors"
	"fmt"
	"time"

	"tasktimer/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TimerService interface {
	StartTimer(db *gorm.DB, userID, taskID uuid.UUID) (*models.TimeEntry, error)
	StopTimer(db *gorm.DB, userID, taskID uuid.UUID) (*models.TimeEntry, error)
	ListTimeEntries(db *gorm.DB, userID, taskID uuid.UUID) ([]models.TimeEntry, error)
}

type TimerServiceImpl struct {
	summaries *SummaryCache
	now       func() time.Time
}

func NewTimerService(summaries *SummaryCache) *TimerServiceImpl {
	return &TimerServiceImpl{summaries: summaries, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (s *TimerServiceImpl) WithClock(now func() time.Time) *TimerServiceImpl {
	s.now = now
	return s
}

// StartTimer opens a new entry for the task. The existence check and the
// insert share a transaction, and the partial unique index on running
// entries rejects whatever slips past the check.
func (s *TimerServiceImpl) StartTimer(db *gorm.DB, userID, taskID uuid.UUID) (*models.TimeEntry, error) {
	var entry models.TimeEntry

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := findOwnedTask(tx, userID, taskID, true); err != nil {
			return err
		}

		var running int64
		if err := tx.Model(&models.TimeEntry{}).
			Where("task_id = ? AND end_time IS NULL", taskID).
			Count(&running).Error; err != nil {
			return fmt.Errorf("failed to check running timer: %w", err)
		}
		if running > 0 {
			return ErrTimerAlreadyRunning
		}

		entryID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("failed to generate entry ID: %w", err)
		}
		entry = models.TimeEntry{
			ID:        entryID,
			TaskID:    taskID,
			StartTime: s.now().UTC(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrTimerAlreadyRunning
			}
			return fmt.Errorf("failed to start timer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// StopTimer closes the running entry. The update is conditional on the
// entry still being open, so two concurrent stops cannot both succeed.
func (s *TimerServiceImpl) StopTimer(db *gorm.DB, userID, taskID uuid.UUID) (*models.TimeEntry, error) {
	var entry models.TimeEntry

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := findOwnedTask(tx, userID, taskID, true); err != nil {
			return err
		}

		if err := tx.Where("task_id = ? AND end_time IS NULL", taskID).First(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoActiveTimer
			}
			return fmt.Errorf("failed to load running timer: %w", err)
		}

		entry.Stop(s.now())

		result := tx.Model(&models.TimeEntry{}).
			Where("id = ? AND end_time IS NULL", entry.ID).
			Updates(map[string]interface{}{
				"end_time":         entry.EndTime,
				"duration_seconds": entry.DurationSeconds,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to stop timer: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNoActiveTimer
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.summaries.Invalidate(db.Statement.Context, userID)
	return &entry, nil
}

func (s *TimerServiceImpl) ListTimeEntries(db *gorm.DB, userID, taskID uuid.UUID) ([]models.TimeEntry, error) {
	if _, err := findOwnedTask(db, userID, taskID, false); err != nil {
		return nil, err
	}

	entries := []models.TimeEntry{}
	if err := db.Where("task_id = ?", taskID).Order("start_time DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	return entries, nil
}
