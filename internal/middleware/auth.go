package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

const userIDKey = "user_id"

// TokenParser resolves a bearer token to the id of the user it was issued
// to.
type TokenParser interface {
	ParseAccessToken(token string) (uuid.UUID, error)
}

// UserLookup reports whether the user a token was issued to still exists.
type UserLookup func(ctx context.Context, userID uuid.UUID) (bool, error)

// AuthMiddleware rejects requests without a valid bearer token and stores
// the caller's id in the context under "user_id". When lookup is set, a
// token whose user no longer exists is rejected as invalid.
func AuthMiddleware(parser TokenParser, lookup UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":  "missing_token",
				"detail": "Not authenticated",
			})
			return
		}

		scheme, tokenStr, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenStr) == "" {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":  "invalid_token_format",
				"detail": "Authorization header must use Bearer token",
			})
			return
		}

		userID, err := parser.ParseAccessToken(strings.TrimSpace(tokenStr))
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":  "invalid_token",
				"detail": "Could not validate credentials",
			})
			return
		}

		if lookup != nil {
			exists, err := lookup(c.Request.Context(), userID)
			if err != nil {
				log.Printf("request %s: failed to resolve user %s: %v", GetRequestID(c), userID, err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":  "internal_error",
					"detail": "Internal server error",
				})
				return
			}
			if !exists {
				c.Header("WWW-Authenticate", "Bearer")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":  "invalid_token",
					"detail": "Could not validate credentials",
				})
				return
			}
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the caller's id stored by AuthMiddleware.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}

// SetUserID is used by tests that bypass token parsing.
func SetUserID(c *gin.Context, userID uuid.UUID) {
	c.Set(userIDKey, userID)
}
