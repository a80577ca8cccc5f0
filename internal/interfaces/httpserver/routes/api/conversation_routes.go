package api

import (
	"github.com/gin-gonic/gin"

	"policylens/services/chat-api/internal/interfaces/httpserver/handlers"
)

func registerConversationRoutes(group *gin.RouterGroup, handler *handlers.ConversationHandler) {
	conversations := group.Group("/conversations")
	conversations.POST("", handler.Create)
	conversations.GET("", handler.List)
	conversations.POST("/upload", handler.Upload)
	conversations.GET("/:conversation_id", handler.Get)
	conversations.PATCH("/:conversation_id", handler.Update)
	conversations.DELETE("/:conversation_id", handler.Delete)
	conversations.POST("/:conversation_id/messages", handler.SendMessage)
	conversations.POST("/:conversation_id/upload", handler.Upload)

	group.GET("/chat/:slug", handler.Resolve)
}
