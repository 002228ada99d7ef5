package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ResponseWithError writes {"message": ...} for client errors and
// {"error": ...} for server errors.
func ResponseWithError(c *gin.Context, status int, message string) {
	key := "message"
	if status >= http.StatusInternalServerError {
		key = "error"
	}
	c.AbortWithStatusJSON(status, gin.H{key: message})
}

func ResponseWithJson(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}
