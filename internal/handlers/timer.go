package handlers

import (
	"net/http"

	"tasktimer/backend/internal/models"
	"tasktimer/backend/internal/monitoring"
	"tasktimer/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TimerHandler struct {
	db           *gorm.DB
	timerService services.TimerService
}

type TimerStartResponse struct {
	Message   string            `json:"message"`
	TimeEntry *models.TimeEntry `json:"time_entry"`
}

type TimerStopResponse struct {
	Message         string            `json:"message"`
	TimeEntry       *models.TimeEntry `json:"time_entry"`
	DurationSeconds float64           `json:"duration_seconds"`
}

func NewTimerHandler(db *gorm.DB, timerService services.TimerService) *TimerHandler {
	return &TimerHandler{db: db, timerService: timerService}
}

func (h *TimerHandler) StartTimer(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	entry, err := h.timerService.StartTimer(requestDB(h.db, c), userID, taskID)
	if err != nil {
		handleError(c, err)
		return
	}
	monitoring.TimersStarted.Inc()

	c.JSON(http.StatusOK, TimerStartResponse{
		Message:   "Timer started",
		TimeEntry: entry,
	})
}

func (h *TimerHandler) StopTimer(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	entry, err := h.timerService.StopTimer(requestDB(h.db, c), userID, taskID)
	if err != nil {
		handleError(c, err)
		return
	}

	var duration float64
	if entry.DurationSeconds != nil {
		duration = *entry.DurationSeconds
	}
	monitoring.RecordTimerStop(duration)

	c.JSON(http.StatusOK, TimerStopResponse{
		Message:         "Timer stopped",
		TimeEntry:       entry,
		DurationSeconds: duration,
	})
}

func (h *TimerHandler) GetTimeEntries(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	entries, err := h.timerService.ListTimeEntries(requestDB(h.db, c), userID, taskID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
