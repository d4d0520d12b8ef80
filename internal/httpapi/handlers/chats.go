package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"llamachat/internal/common"
	"llamachat/internal/httpapi/middleware"
)

func (h *Handler) CreateChat(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "invalid token")
		return
	}

	chat, err := h.ChatSvc.CreateChat(c.Request.Context(), uid)
	if err != nil {
		h.Log.Error("create chat failed", "error", err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	common.JSON(c, http.StatusCreated, chat)
}

func (h *Handler) ListChats(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "invalid token")
		return
	}

	chats, err := h.ChatSvc.ListChats(c.Request.Context(), uid)
	if err != nil {
		h.Log.Error("list chats failed", "error", err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	common.OK(c, gin.H{"chats": chats})
}

func (h *Handler) DeleteChat(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "invalid token")
		return
	}

	chatID := c.Param("chat_id")
	if err := h.ChatSvc.DeleteChat(c.Request.Context(), uid, chatID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			failNotFound(c, "chat not found")
			return
		}
		h.Log.Error("delete chat failed", "chat_id", chatID, "error", err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListChatMessages(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "invalid token")
		return
	}

	chatID := c.Param("chat_id")
	msgs, err := h.ChatSvc.Messages(c.Request.Context(), uid, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			failNotFound(c, "chat not found")
			return
		}
		h.Log.Error("list messages failed", "chat_id", chatID, "error", err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	common.OK(c, gin.H{"messages": msgs})
}
