package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// NormalizeStatus maps the legacy "completed" label onto StatusDone.
func NormalizeStatus(s string) Status {
	if s == "completed" {
		return StatusDone
	}
	return Status(s)
}

type Task struct {
	ID          uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Title       string     `json:"title" gorm:"size:255;not null"`
	Description *string    `json:"description" gorm:"size:1000"`
	Priority    Priority   `json:"priority" gorm:"size:20;not null;default:'medium'"`
	Status      Status     `json:"status" gorm:"size:20;not null;default:'pending';index"`
	DueDate     *time.Time `json:"due_date" gorm:"type:date"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time  `json:"updated_at"`

	TimeEntries []TimeEntry `json:"-" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

// TaskPatch carries the optional fields of a partial update. A nil pointer
// leaves the column untouched; Description and DueDate use Optional so an
// explicit null clears them.
type TaskPatch struct {
	Title       *string
	Description Optional[string]
	Priority    *Priority
	Status      *Status
	DueDate     Optional[Date]
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && !p.Description.Set && p.Priority == nil && p.Status == nil && !p.DueDate.Set
}

// Apply copies every present field onto task and reports whether
// anything was assigned.
func (p TaskPatch) Apply(task *Task) bool {
	changed := false
	if p.Title != nil {
		task.Title = *p.Title
		changed = true
	}
	if p.Description.Set {
		task.Description = p.Description.Value
		changed = true
	}
	if p.Priority != nil {
		task.Priority = *p.Priority
		changed = true
	}
	if p.Status != nil {
		task.Status = *p.Status
		changed = true
	}
	if p.DueDate.Set {
		task.DueDate = p.DueDate.Value.TimePtr()
		changed = true
	}
	return changed
}
