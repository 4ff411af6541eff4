package services

import (
	"errors"
	"fmt"

	"tasktimer/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateTaskInput struct {
	Title       string
	Description *string
	Priority    models.Priority
	Status      models.Status
	DueDate     *models.Date
}

// TaskFilter narrows a task listing. Empty fields match everything.
type TaskFilter struct {
	Status   string
	Priority string
}

type TaskService interface {
	CreateTask(db *gorm.DB, userID uuid.UUID, input CreateTaskInput) (*TaskResponse, error)
	ListTasks(db *gorm.DB, userID uuid.UUID, filter TaskFilter) ([]TaskResponse, error)
	GetTask(db *gorm.DB, userID, taskID uuid.UUID) (*TaskDetail, error)
	UpdateTask(db *gorm.DB, userID, taskID uuid.UUID, patch models.TaskPatch) (*TaskResponse, error)
	DeleteTask(db *gorm.DB, userID, taskID uuid.UUID) error
}

type TaskServiceImpl struct {
	summaries *SummaryCache
}

func NewTaskService(summaries *SummaryCache) *TaskServiceImpl {
	return &TaskServiceImpl{summaries: summaries}
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, userID uuid.UUID, input CreateTaskInput) (*TaskResponse, error) {
	taskID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate task ID: %w", err)
	}

	task := models.Task{
		ID:          taskID,
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      models.NormalizeStatus(string(input.Status)),
		DueDate:     input.DueDate.TimePtr(),
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Status == "" {
		task.Status = models.StatusPending
	}

	if err := db.Create(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	resp := ComposeTask(task, nil)
	return &resp, nil
}

func (s *TaskServiceImpl) ListTasks(db *gorm.DB, userID uuid.UUID, filter TaskFilter) ([]TaskResponse, error) {
	query := db.Where("user_id = ?", userID)
	if filter.Status != "" {
		query = query.Where("status = ?", models.NormalizeStatus(filter.Status))
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return composeTasks(db, tasks)
}

func (s *TaskServiceImpl) GetTask(db *gorm.DB, userID, taskID uuid.UUID) (*TaskDetail, error) {
	task, err := findOwnedTask(db, userID, taskID, false)
	if err != nil {
		return nil, err
	}

	entries, err := loadEntries(db, []uuid.UUID{task.ID})
	if err != nil {
		return nil, err
	}

	detail := &TaskDetail{
		TaskResponse: ComposeTask(*task, entries[task.ID]),
		TimeEntries:  entries[task.ID],
	}
	if detail.TimeEntries == nil {
		detail.TimeEntries = []models.TimeEntry{}
	}
	return detail, nil
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, userID, taskID uuid.UUID, patch models.TaskPatch) (*TaskResponse, error) {
	if patch.Status != nil {
		normalized := models.NormalizeStatus(string(*patch.Status))
		patch.Status = &normalized
	}

	var resp TaskResponse
	err := db.Transaction(func(tx *gorm.DB) error {
		task, err := findOwnedTask(tx, userID, taskID, true)
		if err != nil {
			return err
		}

		if patch.Apply(task) {
			if err := tx.Save(task).Error; err != nil {
				return fmt.Errorf("failed to update task: %w", err)
			}
		}

		entries, err := loadEntries(tx, []uuid.UUID{task.ID})
		if err != nil {
			return err
		}
		resp = ComposeTask(*task, entries[task.ID])
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.summaries.Invalidate(db.Statement.Context, userID)
	return &resp, nil
}

// DeleteTask removes the task and its entries in one transaction.
func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, userID, taskID uuid.UUID) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		task, err := findOwnedTask(tx, userID, taskID, true)
		if err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TimeEntry{}).Error; err != nil {
			return fmt.Errorf("failed to delete time entries: %w", err)
		}
		if err := tx.Delete(task).Error; err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.summaries.Invalidate(db.Statement.Context, userID)
	return nil
}

// findOwnedTask loads a task scoped to its owner. A task owned by someone
// else is reported exactly like a missing one. With lock set, PostgreSQL
// holds the row until the surrounding transaction ends; SQLite already
// serialises writers.
func findOwnedTask(db *gorm.DB, userID, taskID uuid.UUID, lock bool) (*models.Task, error) {
	query := db.Where("id = ? AND user_id = ?", taskID, userID)
	if lock && db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var task models.Task
	if err := query.First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return &task, nil
}
