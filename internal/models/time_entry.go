package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// TimeEntry is one timer run against a task. EndTime and DurationSeconds
// stay nil while the timer is running and are set together on stop.
type TimeEntry struct {
	ID              uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	TaskID          uuid.UUID  `json:"task_id" gorm:"type:uuid;not null;index"`
	StartTime       time.Time  `json:"start_time" gorm:"not null;index"`
	EndTime         *time.Time `json:"end_time"`
	DurationSeconds *float64   `json:"duration_seconds"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (e *TimeEntry) IsRunning() bool {
	return e.EndTime == nil
}

// Stop closes a running entry at end. The start time is normalised to UTC
// before subtracting and a negative span (clock skew) is recorded as 0.
func (e *TimeEntry) Stop(end time.Time) float64 {
	start := e.StartTime.UTC()
	end = end.UTC()

	duration := end.Sub(start).Seconds()
	if duration < 0 {
		duration = 0
	}

	e.StartTime = start
	e.EndTime = &end
	e.DurationSeconds = &duration
	return duration
}
