package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"llamachat/internal/common"
	"llamachat/internal/httpapi/handlers"
	"llamachat/internal/httpapi/middleware"
)

func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery(h.Log))
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", h.Ping)

	api := r.Group("/api")
	api.GET("/info", h.Info)
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)

	authed := api.Group("/")
	authed.Use(middleware.AuthRequired(h.Auth))

	authed.POST("/chats", h.CreateChat)
	authed.GET("/chats", h.ListChats)
	authed.DELETE("/chats/:chat_id", h.DeleteChat)
	authed.GET("/chats/:chat_id/messages", h.ListChatMessages)

	authed.POST("/chat", h.SendChatMessage)
	authed.POST("/chat/stream", h.SendChatMessageStream)

	authed.POST("/statistics", h.CreateStatistics)
	authed.GET("/statistics", h.ListStatistics)
	authed.GET("/statistics/:request_id", h.GetStatistics)

	return r
}
