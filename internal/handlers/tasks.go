package handlers

import (
	"fmt"
	"net/http"
	"unicode/utf8"

	"tasktimer/backend/internal/models"
	"tasktimer/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxDescriptionLength = 1000

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
}

type CreateTaskRequest struct {
	Title       string       `json:"title" binding:"required,min=1,max=255"`
	Description *string      `json:"description" binding:"omitempty,max=1000"`
	Priority    string       `json:"priority" binding:"omitempty,oneof=low medium high"`
	Status      string       `json:"status" binding:"omitempty,oneof=pending in_progress done completed"`
	DueDate     *models.Date `json:"due_date"`
}

// UpdateTaskRequest holds a partial update. Description and DueDate
// distinguish an explicit null (clear) from an omitted key (keep).
type UpdateTaskRequest struct {
	Title       *string                      `json:"title" binding:"omitempty,min=1,max=255"`
	Description models.Optional[string]      `json:"description"`
	Priority    *string                      `json:"priority" binding:"omitempty,oneof=low medium high"`
	Status      *string                      `json:"status" binding:"omitempty,oneof=pending in_progress done completed"`
	DueDate     models.Optional[models.Date] `json:"due_date"`
}

func (r UpdateTaskRequest) validate() error {
	if r.Description.Value != nil && utf8.RuneCountInString(*r.Description.Value) > maxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", maxDescriptionLength)
	}
	return nil
}

func (r UpdateTaskRequest) patch() models.TaskPatch {
	patch := models.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
	}
	if r.Priority != nil {
		priority := models.Priority(*r.Priority)
		patch.Priority = &priority
	}
	if r.Status != nil {
		status := models.NormalizeStatus(*r.Status)
		patch.Status = &status
	}
	return patch
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService}
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	task, err := h.taskService.CreateTask(requestDB(h.db, c), userID, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.Priority(req.Priority),
		Status:      models.NormalizeStatus(req.Status),
		DueDate:     req.DueDate,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	filter := services.TaskFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
	}
	tasks, err := h.taskService.ListTasks(requestDB(h.db, c), userID, filter)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(requestDB(h.db, c), userID, taskID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}
	if err := req.validate(); err != nil {
		validationError(c, err)
		return
	}

	task, err := h.taskService.UpdateTask(requestDB(h.db, c), userID, taskID, req.patch())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(requestDB(h.db, c), userID, taskID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
