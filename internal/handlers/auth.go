package handlers

import (
	"net/http"
	"strings"

	"tasktimer/backend/internal/models"
	"tasktimer/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db          *gorm.DB
	authService services.AuthService
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	*services.TokenPair
	User *models.User `json:"user"`
}

func NewAuthHandler(db *gorm.DB, authService services.AuthService) *AuthHandler {
	return &AuthHandler{db: db, authService: authService}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	db := requestDB(h.db, c)
	user, err := h.authService.LoginUser(db, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		handleError(c, err)
		return
	}

	tokens, err := h.authService.GenerateToken(db, user.ID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{TokenPair: tokens, User: user})
}
