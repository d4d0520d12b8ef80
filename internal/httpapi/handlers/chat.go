package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"llamachat/internal/common"
	"llamachat/internal/httpapi/middleware"
)

type chatMessageReq struct {
	Message     string   `json:"message" binding:"required"`
	Temperature *float64 `json:"temperature" binding:"omitempty,gte=0,lte=2"`
}

func (r chatMessageReq) temperature() float64 {
	if r.Temperature == nil {
		return 0.7
	}
	return *r.Temperature
}

// SendChatMessage is the blocking chat turn: POST /api/chat?chat_id=...
func (h *Handler) SendChatMessage(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "invalid token")
		return
	}

	chatID := c.Query("chat_id")
	if chatID == "" {
		common.Fail(c, http.StatusBadRequest, 10003, "chat_id required")
		return
	}

	var req chatMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid request body")
		return
	}

	response, model, err := h.ChatSvc.SendMessage(c.Request.Context(), uid, chatID, req.Message, req.temperature())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			failNotFound(c, "chat not found")
			return
		}
		h.Log.Error("send message failed", "chat_id", chatID, "error", err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	common.OK(c, gin.H{
		"response": response,
		"model":    model,
	})
}

// SendChatMessageStream is the SSE chat turn: POST /api/chat/stream?chat_id=...
// Events: chunk {delta}, ping, error, done.
func (h *Handler) SendChatMessageStream(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "invalid token")
		return
	}

	chatID := c.Query("chat_id")
	if chatID == "" {
		common.Fail(c, http.StatusBadRequest, 10003, "chat_id required")
		return
	}

	var req chatMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid request body")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		fmt.Fprintf(c.Writer, "event: error\ndata: {\"message\":\"streaming unsupported\"}\n\n")
		return
	}

	writeEvent := func(event string, payload any) {
		b, err := json.Marshal(payload)
		if err != nil {
			fmt.Fprintf(c.Writer, "event: error\ndata: {\"message\":\"json marshal failed\"}\n\n")
			flusher.Flush()
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, b)
		flusher.Flush()
	}

	ctx := c.Request.Context()
	fragments, errs := h.ChatSvc.SendMessageStream(ctx, uid, chatID, req.Message, req.temperature())

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case frag, open := <-fragments:
			if !open {
				// drain a possible late persistence error before closing out
				select {
				case err := <-errs:
					if err != nil {
						writeEvent("error", gin.H{"message": "failed to save response"})
						return
					}
				default:
				}
				writeEvent("done", gin.H{"type": "done"})
				return
			}
			writeEvent("chunk", gin.H{"delta": frag})

		case err, open := <-errs:
			if !open {
				errs = nil
				continue
			}
			if err == nil {
				continue
			}
			if errors.Is(err, gorm.ErrRecordNotFound) {
				writeEvent("error", gin.H{"message": "chat not found"})
				return
			}
			h.Log.Error("stream failed", "chat_id", chatID, "error", err)
			writeEvent("error", gin.H{"message": "internal error"})
			return

		case <-ticker.C:
			writeEvent("ping", gin.H{"ts": time.Now().Unix()})

		case <-ctx.Done():
			return
		}
	}
}
