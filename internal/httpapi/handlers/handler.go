package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"llamachat/internal/auth"
	"llamachat/internal/chat"
	"llamachat/internal/common"
	"llamachat/internal/stats"
)

// Handler carries the request-scoped view of the service graph. Everything
// is constructed once at startup and injected; no package-level state.
type Handler struct {
	Log       *slog.Logger
	Auth      *auth.Service
	ChatSvc   *chat.Service
	StatsSvc  *stats.Service
	StatsRepo *stats.Repo
}

func New(log *slog.Logger, authSvc *auth.Service, chatSvc *chat.Service, statsSvc *stats.Service, statsRepo *stats.Repo) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		Log:       log,
		Auth:      authSvc,
		ChatSvc:   chatSvc,
		StatsSvc:  statsSvc,
		StatsRepo: statsRepo,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"status": "ok"})
}

func (h *Handler) Info(c *gin.Context) {
	common.OK(c, gin.H{
		"message": "Welcome to the Llama Chat API",
		"endpoints": gin.H{
			"auth": gin.H{
				"register": "/api/auth/register",
				"login":    "/api/auth/login",
				"logout":   "/api/auth/logout",
			},
			"chats": gin.H{
				"create":   "/api/chats",
				"list":     "/api/chats",
				"delete":   "/api/chats/{chat_id}",
				"messages": "/api/chats/{chat_id}/messages",
			},
			"chat": gin.H{
				"send":   "/api/chat?chat_id={chat_id}",
				"stream": "/api/chat/stream?chat_id={chat_id}",
			},
			"statistics": gin.H{
				"create": "/api/statistics",
				"list":   "/api/statistics",
				"get":    "/api/statistics/{request_id}",
			},
		},
	})
}

func failNotFound(c *gin.Context, msg string) {
	common.Fail(c, http.StatusNotFound, 40400, msg)
}
