package api

import (
	"github.com/gin-gonic/gin"

	"policylens/services/chat-api/internal/interfaces/httpserver/handlers"
)

func registerCompanyRoutes(group *gin.RouterGroup, handler *handlers.CompanyHandler) {
	companies := group.Group("/companies")
	companies.GET("", handler.List)
	companies.GET("/logos", handler.Logo)
	companies.GET("/:slug", handler.Get)
	companies.GET("/:slug/documents", handler.Documents)
}
