package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rajangupta9/tasktracker/utils"
)

type LoginRequest struct {
	Name string `json:"name"`
}

// AuthHandler issues tokens for a login name. There is no user table, so
// login never fails for a non-empty name.
type AuthHandler struct {
	secret  []byte
	enabled bool
}

func NewAuthHandler(secret []byte, enabled bool) *AuthHandler {
	return &AuthHandler{secret: secret, enabled: enabled}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "Invalid Request")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		utils.ResponseWithError(c, http.StatusBadRequest, "name is required")
		return
	}

	resp := gin.H{
		"message": "Login successful",
		"user":    name,
	}
	if h.enabled {
		token, err := utils.GenerateJwt(h.secret, name, time.Now())
		if err != nil {
			utils.ResponseWithError(c, http.StatusInternalServerError, "Failed to generate token")
			return
		}
		resp["token"] = token
	}

	utils.ResponseWithJson(c, http.StatusOK, resp)
}
