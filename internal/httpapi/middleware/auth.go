package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/auth"
)

// UserIDKey is where AuthRequired stores the authenticated user ID.
const UserIDKey = "auth.user_id"

// AuthRequired rejects requests without a valid bearer token with a 401.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Authentication credentials were not provided.",
			})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Invalid authorization header.",
			})
			return
		}

		uid, err := auth.ParseJWT(parts[1], secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Token is invalid or expired.",
			})
			return
		}

		c.Set(UserIDKey, uid)
		c.Next()
	}
}
