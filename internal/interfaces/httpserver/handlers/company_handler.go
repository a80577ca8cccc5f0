package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"policylens/services/chat-api/internal/domain/company"
	"policylens/services/chat-api/internal/interfaces/httpserver/dto"
	"policylens/services/chat-api/internal/utils/platformerrors"
)

// CompanyHandler exposes the company browser endpoints.
type CompanyHandler struct {
	service *company.Service
	log     zerolog.Logger
}

// NewCompanyHandler constructs the handler.
func NewCompanyHandler(service *company.Service, log zerolog.Logger) *CompanyHandler {
	return &CompanyHandler{
		service: service,
		log:     log.With().Str("handler", "company").Logger(),
	}
}

// List handles GET /api/companies
// @Summary List companies
// @Description Lists catalogued companies with server-side search and sort.
// @Tags Companies
// @Produce json
// @Param q query string false "Case-insensitive substring over name, description, industry"
// @Param sort query string false "name | risk | updated" default(name)
// @Success 200 {object} dto.CompanyList
// @Failure 502 {object} platformerrors.HTTPErrorResponse
// @Router /api/companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	term := c.Query("q")
	key := company.ParseSortKey(c.Query("sort"))

	companies, err := h.service.List(c.Request.Context(), term, key)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, dto.CompanyList{
		Data:  companies,
		Total: len(companies),
		Query: term,
		Sort:  string(key),
	})
}

// Get handles GET /api/companies/:slug
// @Summary Get a company with its lazily loaded artifacts
// @Description Returns the company enriched with its logo and meta-summary. Either artifact may be absent.
// @Tags Companies
// @Produce json
// @Param slug path string true "Company slug"
// @Success 200 {object} company.Enriched
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /api/companies/{slug} [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	comp, err := h.service.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, h.service.Enrich(c.Request.Context(), *comp))
}

// Documents handles GET /api/companies/:slug/documents
// @Summary List the tracked legal documents for a company
// @Tags Companies
// @Produce json
// @Param slug path string true "Company slug"
// @Success 200 {object} dto.DocumentList
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /api/companies/{slug}/documents [get]
func (h *CompanyHandler) Documents(c *gin.Context) {
	docs, err := h.service.Documents(c.Request.Context(), c.Param("slug"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, dto.DocumentList{
		Data:  docs,
		Total: len(docs),
	})
}

// Logo handles GET /api/companies/logos?slug=
// @Summary Get a company logo reference
// @Description Cached per slug; a failed fetch is not retried per request.
// @Tags Companies
// @Produce json
// @Param slug query string true "Company slug"
// @Success 200 {object} company.Logo
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /api/companies/logos [get]
func (h *CompanyHandler) Logo(c *gin.Context) {
	slug := c.Query("slug")
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug query parameter is required"})
		return
	}

	logo, err := h.service.Logo(c.Request.Context(), slug)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, logo)
}
