package api

import (
	"github.com/gin-gonic/gin"

	"policylens/services/chat-api/internal/interfaces/httpserver/handlers"
)

func registerMetaSummaryRoutes(group *gin.RouterGroup, handler *handlers.MetaSummaryHandler) {
	summaries := group.Group("/meta-summary")
	summaries.GET("/:slug", handler.Get)
	summaries.POST("/:slug/refresh", handler.Refresh)
}
