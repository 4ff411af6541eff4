package services

import (
	"time"

	"tasktimer/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// TaskResponse is a task plus the live timing fields derived from its
// entries. Nothing here is stored; it is recomputed on every read.
type TaskResponse struct {
	ID               uuid.UUID       `json:"id"`
	Title            string          `json:"title"`
	Description      *string         `json:"description"`
	Priority         models.Priority `json:"priority"`
	Status           models.Status   `json:"status"`
	DueDate          *models.Date    `json:"due_date"`
	UserID           uuid.UUID       `json:"user_id"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	TotalTimeSeconds float64         `json:"total_time_seconds"`
	IsTiming         bool            `json:"is_timing"`
	ActiveEntryID    *uuid.UUID      `json:"active_entry_id"`
}

// TaskDetail adds the task's entries, most recent start first.
type TaskDetail struct {
	TaskResponse
	TimeEntries []models.TimeEntry `json:"time_entries"`
}

func ComposeTask(task models.Task, entries []models.TimeEntry) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      task.Status,
		DueDate:     models.DateFromTime(task.DueDate),
		UserID:      task.UserID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	for i := range entries {
		if entries[i].DurationSeconds != nil {
			resp.TotalTimeSeconds += *entries[i].DurationSeconds
		}
		if entries[i].IsRunning() && resp.ActiveEntryID == nil {
			id := entries[i].ID
			resp.IsTiming = true
			resp.ActiveEntryID = &id
		}
	}

	return resp
}

// loadEntries fetches the entries of every task in one query, grouped by
// task and ordered by start time descending.
func loadEntries(db *gorm.DB, taskIDs []uuid.UUID) (map[uuid.UUID][]models.TimeEntry, error) {
	grouped := make(map[uuid.UUID][]models.TimeEntry, len(taskIDs))
	if len(taskIDs) == 0 {
		return grouped, nil
	}

	var entries []models.TimeEntry
	if err := db.Where("task_id IN ?", taskIDs).Order("start_time DESC").Find(&entries).Error; err != nil {
		return nil, err
	}

	for _, e := range entries {
		grouped[e.TaskID] = append(grouped[e.TaskID], e)
	}
	return grouped, nil
}

func composeTasks(db *gorm.DB, tasks []models.Task) ([]TaskResponse, error) {
	ids := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}

	entries, err := loadEntries(db, ids)
	if err != nil {
		return nil, err
	}

	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, ComposeTask(t, entries[t.ID]))
	}
	return out, nil
}
