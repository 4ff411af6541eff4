package services

import (
	"errors"

	"tasktimer/backend/internal/timeutil"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrTimerAlreadyRunning = errors.New("timer is already running for this task")
	ErrNoActiveTimer       = errors.New("no active timer for this task")

	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")

	ErrInvalidPeriod = timeutil.ErrInvalidPeriod
	ErrMissingDates  = timeutil.ErrMissingDates
	ErrInvalidDate   = timeutil.ErrInvalidDate
)
