package api

import (
	"github.com/gin-gonic/gin"

	"policylens/services/chat-api/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates the /api route registration.
type Routes struct {
	handlers *handlers.Provider
}

// NewRoutes builds the /api route registrar.
func NewRoutes(handlerProvider *handlers.Provider) *Routes {
	return &Routes{
		handlers: handlerProvider,
	}
}

// Register attaches all routes under the /api prefix.
func (r *Routes) Register(engine *gin.Engine) {
	group := engine.Group("/api")
	registerConversationRoutes(group, r.handlers.Conversation)
	registerCompanyRoutes(group, r.handlers.Company)
	registerMetaSummaryRoutes(group, r.handlers.MetaSummary)
	registerQueryRoutes(group, r.handlers.Query)
}
