package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"policylens/services/chat-api/internal/domain/metasummary"
	"policylens/services/chat-api/internal/utils/platformerrors"
)

// MetaSummaryHandler serves the cached risk artifact for a company.
type MetaSummaryHandler struct {
	service *metasummary.Service
	log     zerolog.Logger
}

// NewMetaSummaryHandler constructs the handler.
func NewMetaSummaryHandler(service *metasummary.Service, log zerolog.Logger) *MetaSummaryHandler {
	return &MetaSummaryHandler{
		service: service,
		log:     log.With().Str("handler", "metasummary").Logger(),
	}
}

// Get handles GET /api/meta-summary/:slug
// @Summary Get the meta-summary for a company
// @Description Lazily fetched from the analysis engine and cached with a TTL.
// @Tags MetaSummaries
// @Produce json
// @Param slug path string true "Company slug"
// @Success 200 {object} metasummary.MetaSummary
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /api/meta-summary/{slug} [get]
func (h *MetaSummaryHandler) Get(c *gin.Context) {
	summary, err := h.service.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Refresh handles POST /api/meta-summary/:slug/refresh
// @Summary Force a meta-summary refresh
// @Tags MetaSummaries
// @Produce json
// @Param slug path string true "Company slug"
// @Success 200 {object} metasummary.MetaSummary
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /api/meta-summary/{slug}/refresh [post]
func (h *MetaSummaryHandler) Refresh(c *gin.Context) {
	summary, err := h.service.Refresh(c.Request.Context(), c.Param("slug"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, summary)
}
