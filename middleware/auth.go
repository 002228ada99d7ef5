package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Rajangupta9/tasktracker/utils"
)

const userIDKey = "user_id"

// AuthMiddleware requires a bearer token issued by /api/login and stores
// the token's user in the gin context.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ResponseWithError(c, http.StatusUnauthorized, "Authorization header required")
			return
		}
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			utils.ResponseWithError(c, http.StatusUnauthorized, "Authorization header must be a Bearer token")
			return
		}

		userID, err := utils.ValidateJwt(secret, strings.TrimSpace(tokenString))
		if err != nil {
			utils.ResponseWithError(c, http.StatusUnauthorized, "Invalid Token")
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user, if AuthMiddleware ran.
func UserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
