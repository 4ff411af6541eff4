package handlers

import (
	"errors"
	"log"
	"net/http"

	"tasktimer/backend/internal/middleware"
	"tasktimer/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type errorResponse struct {
	err    error
	status int
	code   string
	// Empty detail means the error text is shown as is.
	detail string
}

var errorResponses = []errorResponse{
	{services.ErrTaskNotFound, http.StatusNotFound, "task_not_found", "Task not found"},
	{services.ErrTimerAlreadyRunning, http.StatusBadRequest, "timer_already_running", "Timer is already running for this task"},
	{services.ErrNoActiveTimer, http.StatusBadRequest, "no_active_timer", "No active timer for this task"},
	{services.ErrUsernameTaken, http.StatusBadRequest, "username_taken", "Username already taken"},
	{services.ErrEmailTaken, http.StatusBadRequest, "email_taken", "Email already registered"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password"},
	{services.ErrInvalidToken, http.StatusUnauthorized, "invalid_token", "Could not validate credentials"},
	{services.ErrUserNotFound, http.StatusUnauthorized, "invalid_token", "Could not validate credentials"},
	{services.ErrMissingDates, http.StatusBadRequest, "missing_dates", ""},
	{services.ErrInvalidPeriod, http.StatusBadRequest, "invalid_period", ""},
	{services.ErrInvalidDate, http.StatusBadRequest, "invalid_date", ""},
}

// handleError writes the response for a service error. Unknown errors are
// logged and reported as 500 without their text.
func handleError(c *gin.Context, err error) {
	for _, r := range errorResponses {
		if !errors.Is(err, r.err) {
			continue
		}
		detail := r.detail
		if detail == "" {
			detail = err.Error()
		}
		if r.status == http.StatusUnauthorized {
			c.Header("WWW-Authenticate", "Bearer")
		}
		c.JSON(r.status, gin.H{"error": r.code, "detail": detail})
		return
	}

	log.Printf("request %s failed: %v", middleware.GetRequestID(c), err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":  "internal_error",
		"detail": "Internal server error",
	})
}

func validationError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":  "validation_error",
		"detail": err.Error(),
	})
}

// taskIDParam parses the :id path segment. A malformed id cannot name an
// existing task, so it is answered like a missing one.
func taskIDParam(c *gin.Context) (uuid.UUID, bool) {
	taskID, err := uuid.FromString(c.Param("id"))
	if err != nil {
		handleError(c, services.ErrTaskNotFound)
		return uuid.Nil, false
	}
	return taskID, true
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":  "missing_token",
			"detail": "Not authenticated",
		})
	}
	return userID, ok
}

// requestDB scopes the handle to the request context.
func requestDB(db *gorm.DB, c *gin.Context) *gorm.DB {
	if db == nil {
		return nil
	}
	return db.WithContext(c.Request.Context())
}
