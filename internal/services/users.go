package services

import (
	"errors"
	"fmt"

	"tasktimer/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type UserService interface {
	GetUser(db *gorm.DB, userID uuid.UUID) (*models.User, error)
	FindByUsername(db *gorm.DB, username string) (*models.User, error)
	DeleteUser(db *gorm.DB, userID uuid.UUID) error
}

type UserServiceImpl struct {
	summaries *SummaryCache
}

func NewUserService(summaries *SummaryCache) *UserServiceImpl {
	return &UserServiceImpl{summaries: summaries}
}

func (s *UserServiceImpl) GetUser(db *gorm.DB, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserServiceImpl) FindByUsername(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes the user with its refresh tokens, tasks and their
// time entries in one transaction.
func (s *UserServiceImpl) DeleteUser(db *gorm.DB, userID uuid.UUID) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		userTasks := tx.Model(&models.Task{}).Select("id").Where("user_id = ?", userID)

		steps := []struct {
			what  string
			query *gorm.DB
			model interface{}
		}{
			{"refresh tokens", tx.Where("user_id = ?", userID), &models.RefreshToken{}},
			{"time entries", tx.Where("task_id IN (?)", userTasks), &models.TimeEntry{}},
			{"tasks", tx.Where("user_id = ?", userID), &models.Task{}},
		}
		for _, step := range steps {
			if err := step.query.Delete(step.model).Error; err != nil {
				return fmt.Errorf("failed to delete %s: %w", step.what, err)
			}
		}

		return tx.Delete(&user).Error
	})
	if err != nil {
		return err
	}

	s.summaries.Invalidate(db.Statement.Context, userID)
	return nil
}
