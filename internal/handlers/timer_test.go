package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"tasktimer/backend/internal/handlers"
	"tasktimer/backend/internal/middleware"
	"tasktimer/backend/internal/models"
	"tasktimer/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTimerRouter(t *testing.T) (*gin.Engine, *MockTimerService, *MockSummaryService, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userID := uuid.Must(uuid.NewV4())
	timerService := new(MockTimerService)
	summaryService := new(MockSummaryService)
	timerHandler := handlers.NewTimerHandler(nil, timerService)
	summaryHandler := handlers.NewSummaryHandler(nil, summaryService)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		middleware.SetUserID(c, userID)
		c.Next()
	})
	router.POST("/tasks/:id/start", timerHandler.StartTimer)
	router.POST("/tasks/:id/stop", timerHandler.StopTimer)
	router.GET("/tasks/:id/time-entries", timerHandler.GetTimeEntries)
	router.GET("/time-summary", summaryHandler.GetTimeSummary)

	t.Cleanup(func() {
		timerService.AssertExpectations(t)
		summaryService.AssertExpectations(t)
	})
	return router, timerService, summaryService, userID
}

func TestStartTimer_Success(t *testing.T) {
	router, timerService, _, userID := setupTimerRouter(t)
	taskID := uuid.Must(uuid.NewV4())
	entry := &models.TimeEntry{
		ID:        uuid.Must(uuid.NewV4()),
		TaskID:    taskID,
		StartTime: time.Date(2026, 2, 18, 9, 0, 0, 0, time.UTC),
	}
	timerService.On("StartTimer", mock.Anything, userID, taskID).Return(entry, nil)

	w := performJSON(router, http.MethodPost, "/tasks/"+taskID.String()+"/start", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(w)
	assert.Equal(t, "Timer started", body["message"])
	timeEntry, ok := body["time_entry"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, entry.ID.String(), timeEntry["id"])
	assert.Nil(t, timeEntry["end_time"])
	assert.Nil(t, timeEntry["duration_seconds"])
}

func TestStartTimer_AlreadyRunning(t *testing.T) {
	router, timerService, _, userID := setupTimerRouter(t)
	taskID := uuid.Must(uuid.NewV4())
	timerService.On("StartTimer", mock.Anything, userID, taskID).Return(nil, services.ErrTimerAlreadyRunning)

	w := performJSON(router, http.MethodPost, "/tasks/"+taskID.String()+"/start", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(w)
	assert.Equal(t, "timer_already_running", body["error"])
	assert.Equal(t, "Timer is already running for this task", body["detail"])
}

func TestStartTimer_MalformedTaskID(t *testing.T) {
	router, _, _, _ := setupTimerRouter(t)

	w := performJSON(router, http.MethodPost, "/tasks/not-a-uuid/start", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStopTimer_ReturnsDuration(t *testing.T) {
	router, timerService, _, userID := setupTimerRouter(t)
	taskID := uuid.Must(uuid.NewV4())

	entry := &models.TimeEntry{
		ID:        uuid.Must(uuid.NewV4()),
		TaskID:    taskID,
		StartTime: time.Date(2026, 2, 18, 9, 0, 0, 0, time.UTC),
	}
	entry.Stop(entry.StartTime.Add(125 * time.Second))
	timerService.On("StopTimer", mock.Anything, userID, taskID).Return(entry, nil)

	w := performJSON(router, http.MethodPost, "/tasks/"+taskID.String()+"/stop", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(w)
	assert.Equal(t, "Timer stopped", body["message"])
	assert.Equal(t, float64(125), body["duration_seconds"])
	timeEntry := body["time_entry"].(map[string]interface{})
	assert.Equal(t, float64(125), timeEntry["duration_seconds"])
	assert.Equal(t, "2026-02-18T09:02:05Z", timeEntry["end_time"])
}

func TestStopTimer_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"no active timer", services.ErrNoActiveTimer, http.StatusBadRequest, "No active timer for this task"},
		{"foreign task", services.ErrTaskNotFound, http.StatusNotFound, "Task not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, timerService, _, userID := setupTimerRouter(t)
			taskID := uuid.Must(uuid.NewV4())
			timerService.On("StopTimer", mock.Anything, userID, taskID).Return(nil, tt.err)

			w := performJSON(router, http.MethodPost, "/tasks/"+taskID.String()+"/stop", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantDetail, decodeBody(w)["detail"])
		})
	}
}

func TestGetTimeEntries(t *testing.T) {
	router, timerService, _, userID := setupTimerRouter(t)
	taskID := uuid.Must(uuid.NewV4())
	timerService.On("ListTimeEntries", mock.Anything, userID, taskID).Return([]models.TimeEntry{}, nil)

	w := performJSON(router, http.MethodGet, "/tasks/"+taskID.String()+"/time-entries", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetTimeSummary_PassesQuery(t *testing.T) {
	router, _, summaryService, userID := setupTimerRouter(t)
	taskID := uuid.Must(uuid.NewV4())

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	summary := &services.PeriodSummary{
		Period:       "custom",
		StartDate:    from,
		EndDate:      from.AddDate(0, 0, 1),
		TotalSeconds: 125,
		TaskSummaries: []services.TaskTimeSummary{
			{TaskID: taskID, TaskTitle: "Report", TotalSeconds: 125, EntryCount: 1},
		},
	}
	summaryService.On("Summarize", mock.Anything, userID, services.SummaryQuery{
		Period:    "custom",
		StartDate: "2026-02-01",
		EndDate:   "2026-02-01",
	}).Return(summary, nil)

	w := performJSON(router, http.MethodGet, "/time-summary?period=custom&start_date=2026-02-01&end_date=2026-02-01", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(w)
	assert.Equal(t, "2026-02-01T00:00:00Z", body["start_date"])
	assert.Equal(t, "2026-02-02T00:00:00Z", body["end_date"])
	assert.Equal(t, float64(125), body["total_seconds"])
	assert.Len(t, body["task_summaries"], 1)
}

func TestGetTimeSummary_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"unknown period", services.ErrInvalidPeriod, "invalid_period"},
		{"missing dates", services.ErrMissingDates, "missing_dates"},
		{"bad date", services.ErrInvalidDate, "invalid_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _, summaryService, userID := setupTimerRouter(t)
			summaryService.On("Summarize", mock.Anything, userID, mock.Anything).Return(nil, tt.err)

			w := performJSON(router, http.MethodGet, "/time-summary?period=whatever", nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeBody(w)
			assert.Equal(t, tt.code, body["error"])
			assert.Equal(t, tt.err.Error(), body["detail"])
		})
	}
}
