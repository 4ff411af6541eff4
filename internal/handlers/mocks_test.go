package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"tasktimer/backend/internal/models"
	"tasktimer/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) CreateTask(db *gorm.DB, userID uuid.UUID, input services.CreateTaskInput) (*services.TaskResponse, error) {
	args := m.Called(db, userID, input)
	if task := args.Get(0); task != nil {
		return task.(*services.TaskResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskService) ListTasks(db *gorm.DB, userID uuid.UUID, filter services.TaskFilter) ([]services.TaskResponse, error) {
	args := m.Called(db, userID, filter)
	if tasks := args.Get(0); tasks != nil {
		return tasks.([]services.TaskResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskService) GetTask(db *gorm.DB, userID, taskID uuid.UUID) (*services.TaskDetail, error) {
	args := m.Called(db, userID, taskID)
	if task := args.Get(0); task != nil {
		return task.(*services.TaskDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskService) UpdateTask(db *gorm.DB, userID, taskID uuid.UUID, patch models.TaskPatch) (*services.TaskResponse, error) {
	args := m.Called(db, userID, taskID, patch)
	if task := args.Get(0); task != nil {
		return task.(*services.TaskResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskService) DeleteTask(db *gorm.DB, userID, taskID uuid.UUID) error {
	args := m.Called(db, userID, taskID)
	return args.Error(0)
}

type MockTimerService struct {
	mock.Mock
}

func (m *MockTimerService) StartTimer(db *gorm.DB, userID, taskID uuid.UUID) (*models.TimeEntry, error) {
	args := m.Called(db, userID, taskID)
	if entry := args.Get(0); entry != nil {
		return entry.(*models.TimeEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTimerService) StopTimer(db *gorm.DB, userID, taskID uuid.UUID) (*models.TimeEntry, error) {
	args := m.Called(db, userID, taskID)
	if entry := args.Get(0); entry != nil {
		return entry.(*models.TimeEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTimerService) ListTimeEntries(db *gorm.DB, userID, taskID uuid.UUID) ([]models.TimeEntry, error) {
	args := m.Called(db, userID, taskID)
	if entries := args.Get(0); entries != nil {
		return entries.([]models.TimeEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockSummaryService struct {
	mock.Mock
}

func (m *MockSummaryService) Summarize(db *gorm.DB, userID uuid.UUID, query services.SummaryQuery) (*services.PeriodSummary, error) {
	args := m.Called(db, userID, query)
	if summary := args.Get(0); summary != nil {
		return summary.(*services.PeriodSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) LoginUser(db *gorm.DB, username, password string) (*models.User, error) {
	args := m.Called(db, username, password)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) GenerateToken(db *gorm.DB, userID uuid.UUID) (*services.TokenPair, error) {
	args := m.Called(db, userID)
	if pair := args.Get(0); pair != nil {
		return pair.(*services.TokenPair), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) RefreshToken(db *gorm.DB, refreshToken string) (*services.TokenPair, error) {
	args := m.Called(db, refreshToken)
	if pair := args.Get(0); pair != nil {
		return pair.(*services.TokenPair), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) RevokeRefreshToken(db *gorm.DB, refreshToken string) error {
	args := m.Called(db, refreshToken)
	return args.Error(0)
}

func (m *MockAuthService) ParseAccessToken(tokenString string) (uuid.UUID, error) {
	args := m.Called(tokenString)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type MockRegisterService struct {
	mock.Mock
}

func (m *MockRegisterService) RegisterUser(db *gorm.DB, req services.RegistrationRequest) (*models.User, error) {
	args := m.Called(db, req)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUser(db *gorm.DB, userID uuid.UUID) (*models.User, error) {
	args := m.Called(db, userID)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) FindByUsername(db *gorm.DB, username string) (*models.User, error) {
	args := m.Called(db, username)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) DeleteUser(db *gorm.DB, userID uuid.UUID) error {
	args := m.Called(db, userID)
	return args.Error(0)
}

func performJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		payload, _ := json.Marshal(v)
		reader = bytes.NewReader(payload)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body
}
