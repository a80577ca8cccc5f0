package api

import (
	"github.com/gin-gonic/gin"

	"policylens/services/chat-api/internal/interfaces/httpserver/handlers"
)

func registerQueryRoutes(group *gin.RouterGroup, handler *handlers.QueryHandler) {
	group.POST("/q", handler.Ask)
}
