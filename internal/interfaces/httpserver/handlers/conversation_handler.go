package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"policylens/services/chat-api/internal/domain/analysis"
	"policylens/services/chat-api/internal/domain/conversation"
	"policylens/services/chat-api/internal/infrastructure/auth"
	"policylens/services/chat-api/internal/interfaces/httpserver/dto"
	"policylens/services/chat-api/internal/utils/platformerrors"
)

// acceptedDocumentTypes are the sniffed MIME types the upload flow accepts.
var acceptedDocumentTypes = map[string]bool{
	"application/pdf":    true,
	"text/plain":         true,
	"text/html":          true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// ConversationHandler exposes HTTP entrypoints for conversations.
type ConversationHandler struct {
	service        conversation.Service
	maxUploadBytes int64
	log            zerolog.Logger
}

// NewConversationHandler constructs the handler.
func NewConversationHandler(service conversation.Service, maxUploadBytes int64, log zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		log:            log.With().Str("handler", "conversation").Logger(),
	}
}

// Create handles POST /api/conversations
// @Summary Start a conversation
// @Description Creates a conversation against a company, optionally answering an initial question.
// @Tags Conversations
// @Accept json
// @Produce json
// @Param request body dto.CreateConversationRequest true "Create request"
// @Success 201 {object} conversation.Conversation
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Router /api/conversations [post]
func (h *ConversationHandler) Create(c *gin.Context) {
	var req dto.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := withUpstreamAuth(c)
	conv, err := h.service.Create(ctx, conversation.CreateParams{
		UserID:             auth.UserID(c),
		Title:              req.Title,
		CompanyName:        req.CompanyName,
		CompanySlug:        req.CompanySlug,
		CompanyDescription: req.CompanyDescription,
		Mode:               req.Mode,
		Metadata:           req.Metadata,
		InitialMessage:     req.Message,
	})
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusCreated, conv)
}

// List handles GET /api/conversations
// @Summary List conversations
// @Tags Conversations
// @Produce json
// @Success 200 {object} dto.ConversationList
// @Router /api/conversations [get]
func (h *ConversationHandler) List(c *gin.Context) {
	convs, err := h.service.ListByUser(c.Request.Context(), auth.UserID(c))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, dto.ConversationList{
		Data:  convs,
		Total: len(convs),
	})
}

// Get handles GET /api/conversations/:conversation_id
// @Summary Get a conversation with its messages
// @Tags Conversations
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Success 200 {object} conversation.Conversation
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /api/conversations/{conversation_id} [get]
func (h *ConversationHandler) Get(c *gin.Context) {
	conv, err := h.service.GetByPublicID(c.Request.Context(), c.Param("conversation_id"), auth.UserID(c))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// Update handles PATCH /api/conversations/:conversation_id
// @Summary Update conversation metadata
// @Description Updates the title, archived, or pinned flags. Omitted fields are untouched.
// @Tags Conversations
// @Accept json
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Param request body dto.UpdateConversationRequest true "Patch request"
// @Success 200 {object} conversation.Conversation
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /api/conversations/{conversation_id} [patch]
func (h *ConversationHandler) Update(c *gin.Context) {
	var req dto.UpdateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conv, err := h.service.UpdateMetadata(c.Request.Context(), c.Param("conversation_id"), auth.UserID(c),
		conversation.UpdateParams{
			Title:    req.Title,
			Archived: req.Archived,
			Pinned:   req.Pinned,
		})
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// Delete handles DELETE /api/conversations/:conversation_id
// @Summary Delete a conversation
// @Description Soft-deletes the conversation; it disappears from listings.
// @Tags Conversations
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /api/conversations/{conversation_id} [delete]
func (h *ConversationHandler) Delete(c *gin.Context) {
	id := c.Param("conversation_id")
	if err := h.service.Delete(c.Request.Context(), id, auth.UserID(c)); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

// SendMessage handles POST /api/conversations/:conversation_id/messages
// @Summary Send a message
// @Description Appends the user message, asks the analysis engine, and appends the reply. On upstream failure an apology message is appended instead.
// @Tags Conversations
// @Accept json
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Param request body dto.SendMessageRequest true "Message"
// @Success 200 {object} conversation.MessageExchange
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Router /api/conversations/{conversation_id}/messages [post]
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := withUpstreamAuth(c)
	exchange, err := h.service.SendMessage(ctx, c.Param("conversation_id"), auth.UserID(c), req.Content)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, exchange)
}

// Upload handles POST /api/conversations/upload and
// POST /api/conversations/:conversation_id/upload
// @Summary Upload a document for analysis
// @Description Multipart form: file, company_name, company_description. An empty company name is rejected before any conversation is created.
// @Tags Conversations
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document"
// @Param company_name formData string true "Company name"
// @Param company_description formData string false "Company description"
// @Success 202 {object} dto.UploadResponse
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Router /api/conversations/upload [post]
func (h *ConversationHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	companyName := strings.TrimSpace(c.PostForm("company_name"))
	if companyName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "company_name is required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}

	detected := mimetype.Detect(data)
	contentType := baseMIME(detected.String())
	if !acceptedDocumentTypes[contentType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported document type: " + contentType})
		return
	}

	ctx := withUpstreamAuth(c)
	conv, err := h.service.Upload(ctx, conversation.UploadParams{
		ConversationID:     c.Param("conversation_id"),
		UserID:             auth.UserID(c),
		FileName:           fileHeader.Filename,
		ContentType:        contentType,
		Data:               data,
		CompanyName:        companyName,
		CompanyDescription: strings.TrimSpace(c.PostForm("company_description")),
		Metadata:           uploadMetadata(c),
	})
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusAccepted, dto.UploadResponse{
		Conversation: conv,
		Status:       "queued",
	})
}

// Resolve handles GET /api/chat/:slug
// @Summary Resolve a chat path segment
// @Description A 22-character base62 segment is a conversation ID; anything else is a company slug.
// @Tags Conversations
// @Produce json
// @Param slug path string true "Conversation ID or company slug"
// @Success 200 {object} dto.ResolveResponse
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /api/chat/{slug} [get]
func (h *ConversationHandler) Resolve(c *gin.Context) {
	ctx := withUpstreamAuth(c)
	resolution, err := h.service.Resolve(ctx, c.Param("slug"), auth.UserID(c))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	resp := dto.ResolveResponse{
		Kind:         resolution.Kind,
		Conversation: resolution.Conversation,
		Company:      resolution.Company,
	}
	if resolution.Company != nil {
		resp.RedirectTo = "/companies/" + resolution.Company.Slug
	}
	c.JSON(http.StatusOK, resp)
}

// withUpstreamAuth forwards the caller's bearer token to the analysis engine.
func withUpstreamAuth(c *gin.Context) context.Context {
	return analysis.ContextWithAuthToken(c.Request.Context(), strings.TrimSpace(c.GetHeader("Authorization")))
}

// baseMIME strips parameters like "; charset=utf-8".
func baseMIME(full string) string {
	if idx := strings.Index(full, ";"); idx >= 0 {
		return strings.TrimSpace(full[:idx])
	}
	return full
}

// uploadMetadata lifts well-known form fields into conversation metadata.
func uploadMetadata(c *gin.Context) map[string]string {
	metadata := make(map[string]string)
	if webhook := strings.TrimSpace(c.PostForm("webhook_url")); webhook != "" {
		metadata["webhook_url"] = webhook
	}
	return metadata
}
