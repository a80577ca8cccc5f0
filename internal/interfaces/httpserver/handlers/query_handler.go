package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"policylens/services/chat-api/internal/domain/query"
	"policylens/services/chat-api/internal/interfaces/httpserver/dto"
	"policylens/services/chat-api/internal/utils/platformerrors"
)

// QueryHandler serves one-shot questions outside any conversation.
type QueryHandler struct {
	service *query.Service
	log     zerolog.Logger
}

// NewQueryHandler constructs the handler.
func NewQueryHandler(service *query.Service, log zerolog.Logger) *QueryHandler {
	return &QueryHandler{
		service: service,
		log:     log.With().Str("handler", "query").Logger(),
	}
}

// Ask handles POST /api/q
// @Summary Ask an ad-hoc question about a company
// @Description Proxied to the analysis engine; nothing is persisted.
// @Tags Query
// @Accept json
// @Produce json
// @Param request body dto.QueryRequest true "Question"
// @Success 200 {object} dto.QueryResponse
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Failure 502 {object} platformerrors.HTTPErrorResponse
// @Router /api/q [post]
func (h *QueryHandler) Ask(c *gin.Context) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.Ask(withUpstreamAuth(c), query.Params{
		CompanySlug: req.CompanySlug,
		CompanyName: req.CompanyName,
		Question:    req.Question,
	})
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, dto.QueryResponse{
		Answer: resp.Answer,
		Model:  resp.Model,
	})
}
