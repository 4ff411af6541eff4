package handlers

import (
	"log"
	"net/http"

	"tasktimer/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LogoutHandler struct {
	db          *gorm.DB
	authService services.AuthService
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func NewLogoutHandler(db *gorm.DB, authService services.AuthService) *LogoutHandler {
	return &LogoutHandler{db: db, authService: authService}
}

// Logout revokes the refresh token. It succeeds whether or not the token
// was still stored.
func (h *LogoutHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	if err := h.authService.RevokeRefreshToken(requestDB(h.db, c), req.RefreshToken); err != nil {
		log.Printf("failed to revoke refresh token: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully logged out",
	})
}
