package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"llamachat/internal/auth"
	"llamachat/internal/common"
)

type registerReq struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid request body")
		return
	}

	user, err := h.Auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateUsername) {
			common.Fail(c, http.StatusBadRequest, 10002, "username already exists")
			return
		}
		h.Log.Error("register failed", "error", err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	common.JSON(c, http.StatusCreated, gin.H{
		"user_id":  user.ID,
		"username": user.Username,
	})
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid request body")
		return
	}

	user, err := h.Auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			common.Fail(c, http.StatusUnauthorized, 40103, "invalid credentials")
			return
		}
		h.Log.Error("login failed", "error", err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	session, err := h.Auth.CreateSession(c.Request.Context(), user.ID)
	if err != nil {
		h.Log.Error("create session failed", "error", err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	common.OK(c, gin.H{
		"session_id": session.ID,
		"user_id":    user.ID,
		"username":   user.Username,
	})
}

// Logout deletes the presented session. Deleting an already-gone session is
// still a successful logout.
func (h *Handler) Logout(c *gin.Context) {
	token := ""
	if parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2); len(parts) == 2 {
		token = strings.TrimSpace(parts[1])
	}
	if token == "" {
		common.Fail(c, http.StatusUnauthorized, 40101, "invalid token")
		return
	}

	deleted, err := h.Auth.DeleteSession(c.Request.Context(), token)
	if err != nil {
		h.Log.Error("logout failed", "error", err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	if !deleted {
		common.OK(c, gin.H{"message": "Logged out (session was already expired or not found)"})
		return
	}
	common.OK(c, gin.H{"message": "Logged out successfully"})
}
