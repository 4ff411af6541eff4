package handlers

import (
	"log"
	"net/http"

	"tasktimer/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterHandler struct {
	db              *gorm.DB
	registerService services.RegisterService
	authService     services.AuthService
}

func NewRegisterHandler(db *gorm.DB, registerService services.RegisterService, authService services.AuthService) *RegisterHandler {
	return &RegisterHandler{db: db, registerService: registerService, authService: authService}
}

// Registration creates the account and signs the new user in.
func (h *RegisterHandler) Registration(c *gin.Context) {
	var req services.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	db := requestDB(h.db, c)
	user, err := h.registerService.RegisterUser(db, req)
	if err != nil {
		handleError(c, err)
		return
	}

	tokens, err := h.authService.GenerateToken(db, user.ID)
	if err != nil {
		log.Printf("registered user %s but token issue failed: %v", user.ID, err)
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{TokenPair: tokens, User: user})
}
