package services

import (
	"errors"
	"fmt"
	"time"

	"tasktimer/backend/internal/models"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthConfig struct {
	Secret          []byte
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	BCryptCost      int
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type AuthService interface {
	LoginUser(db *gorm.DB, username, password string) (*models.User, error)
	GenerateToken(db *gorm.DB, userID uuid.UUID) (*TokenPair, error)
	RefreshToken(db *gorm.DB, refreshToken string) (*TokenPair, error)
	RevokeRefreshToken(db *gorm.DB, refreshToken string) error
	ParseAccessToken(tokenString string) (uuid.UUID, error)
}

type AuthServiceImpl struct {
	config AuthConfig
	now    func() time.Time
}

func NewAuthService(config AuthConfig) *AuthServiceImpl {
	if config.AccessTokenTTL <= 0 {
		config.AccessTokenTTL = 24 * time.Hour
	}
	if config.RefreshTokenTTL <= 0 {
		config.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if config.BCryptCost == 0 {
		config.BCryptCost = bcrypt.DefaultCost
	}
	return &AuthServiceImpl{config: config, now: time.Now}
}

func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func (s *AuthServiceImpl) LoginUser(db *gorm.DB, username, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !VerifyPassword(user.HashedPassword, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GenerateToken signs an access token and stores a fresh refresh token.
func (s *AuthServiceImpl) GenerateToken(db *gorm.DB, userID uuid.UUID) (*TokenPair, error) {
	now := s.now().UTC()

	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    s.config.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTokenTTL)),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	tokenID, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	refreshValue, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	refresh := models.RefreshToken{
		ID:        tokenID,
		UserID:    userID,
		Token:     refreshValue.String(),
		ExpiresAt: now.Add(s.config.RefreshTokenTTL),
	}
	if err := db.Create(&refresh).Error; err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refresh.Token,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.config.AccessTokenTTL.Seconds()),
	}, nil
}

// RefreshToken exchanges a refresh token for a new pair. The old token is
// deleted in the same transaction, so it can be used only once.
func (s *AuthServiceImpl) RefreshToken(db *gorm.DB, refreshToken string) (*TokenPair, error) {
	var pair *TokenPair

	err := db.Transaction(func(tx *gorm.DB) error {
		var token models.RefreshToken
		if err := tx.Where("token = ?", refreshToken).First(&token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidToken
			}
			return err
		}

		if token.IsExpired(s.now()) {
			return ErrInvalidToken
		}

		result := tx.Where("id = ?", token.ID).Delete(&models.RefreshToken{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvalidToken
		}

		var err error
		pair, err = s.GenerateToken(tx, token.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// RevokeRefreshToken deletes the token. Unknown tokens are ignored.
func (s *AuthServiceImpl) RevokeRefreshToken(db *gorm.DB, refreshToken string) error {
	return db.Where("token = ?", refreshToken).Delete(&models.RefreshToken{}).Error
}

func (s *AuthServiceImpl) ParseAccessToken(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(s.config.Issuer))
	}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.config.Secret, nil
	}, options...)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.FromString(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}
