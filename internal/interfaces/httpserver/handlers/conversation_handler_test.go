package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policylens/services/chat-api/internal/domain/company"
	"policylens/services/chat-api/internal/domain/conversation"
	"policylens/services/chat-api/internal/interfaces/httpserver/handlers"
	"policylens/services/chat-api/internal/utils/platformerrors"
)

// MockConversationService is a func-field mock of conversation.Service.
type MockConversationService struct {
	CreateFunc         func(ctx context.Context, params conversation.CreateParams) (*conversation.Conversation, error)
	GetByPublicIDFunc  func(ctx context.Context, publicID, userID string) (*conversation.Conversation, error)
	ListByUserFunc     func(ctx context.Context, userID string) ([]*conversation.Conversation, error)
	UpdateMetadataFunc func(ctx context.Context, publicID, userID string, params conversation.UpdateParams) (*conversation.Conversation, error)
	DeleteFunc         func(ctx context.Context, publicID, userID string) error
	SendMessageFunc    func(ctx context.Context, publicID, userID, content string) (*conversation.MessageExchange, error)
	UploadFunc         func(ctx context.Context, params conversation.UploadParams) (*conversation.Conversation, error)
	ResolveFunc        func(ctx context.Context, slug, userID string) (*conversation.Resolution, error)

	UploadCalls int
}

func (m *MockConversationService) Create(ctx context.Context, params conversation.CreateParams) (*conversation.Conversation, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockConversationService) GetByPublicID(ctx context.Context, publicID, userID string) (*conversation.Conversation, error) {
	if m.GetByPublicIDFunc != nil {
		return m.GetByPublicIDFunc(ctx, publicID, userID)
	}
	return nil, nil
}

func (m *MockConversationService) ListByUser(ctx context.Context, userID string) ([]*conversation.Conversation, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockConversationService) UpdateMetadata(ctx context.Context, publicID, userID string, params conversation.UpdateParams) (*conversation.Conversation, error) {
	if m.UpdateMetadataFunc != nil {
		return m.UpdateMetadataFunc(ctx, publicID, userID, params)
	}
	return nil, nil
}

func (m *MockConversationService) Delete(ctx context.Context, publicID, userID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, publicID, userID)
	}
	return nil
}

func (m *MockConversationService) SendMessage(ctx context.Context, publicID, userID, content string) (*conversation.MessageExchange, error) {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, publicID, userID, content)
	}
	return nil, nil
}

func (m *MockConversationService) Upload(ctx context.Context, params conversation.UploadParams) (*conversation.Conversation, error) {
	m.UploadCalls++
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockConversationService) Resolve(ctx context.Context, slug, userID string) (*conversation.Resolution, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, slug, userID)
	}
	return nil, nil
}

func (m *MockConversationService) ExecuteIngest(ctx context.Context, task *conversation.IngestTask) error {
	return nil
}

func setupConversationTestRouter(handler *handlers.ConversationHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	conversations := r.Group("/api/conversations")
	{
		conversations.POST("", handler.Create)
		conversations.GET("", handler.List)
		conversations.POST("/upload", handler.Upload)
		conversations.GET("/:conversation_id", handler.Get)
		conversations.POST("/:conversation_id/messages", handler.SendMessage)
	}
	r.GET("/api/chat/:slug", handler.Resolve)

	return r
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestConversationHandler_UploadRequiresCompanyName(t *testing.T) {
	mockService := &MockConversationService{}
	handler := handlers.NewConversationHandler(mockService, 10<<20, zerolog.Nop())
	router := setupConversationTestRouter(handler)

	body, contentType := multipartBody(t, map[string]string{}, "file", "terms.pdf", []byte("%PDF-1.4 test"))
	req := httptest.NewRequest(http.MethodPost, "/api/conversations/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, mockService.UploadCalls, "the service must not be reached without a company name")
}

func TestConversationHandler_UploadRejectsUnsupportedType(t *testing.T) {
	mockService := &MockConversationService{}
	handler := handlers.NewConversationHandler(mockService, 10<<20, zerolog.Nop())
	router := setupConversationTestRouter(handler)

	// PNG magic bytes sniff as image/png.
	body, contentType := multipartBody(t,
		map[string]string{"company_name": "Acme"},
		"file", "logo.png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})
	req := httptest.NewRequest(http.MethodPost, "/api/conversations/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, mockService.UploadCalls)
}

func TestConversationHandler_UploadAccepted(t *testing.T) {
	mockService := &MockConversationService{
		UploadFunc: func(ctx context.Context, params conversation.UploadParams) (*conversation.Conversation, error) {
			assert.Equal(t, "Acme", params.CompanyName)
			assert.Equal(t, "terms.pdf", params.FileName)
			assert.Equal(t, "application/pdf", params.ContentType)
			assert.NotEmpty(t, params.Data)
			return &conversation.Conversation{PublicID: "A1b2C3d4E5f6G7h8J9k0L1"}, nil
		},
	}
	handler := handlers.NewConversationHandler(mockService, 10<<20, zerolog.Nop())
	router := setupConversationTestRouter(handler)

	body, contentType := multipartBody(t,
		map[string]string{"company_name": "Acme", "company_description": "Cloud storage"},
		"file", "terms.pdf", []byte("%PDF-1.4 fake pdf content"))
	req := httptest.NewRequest(http.MethodPost, "/api/conversations/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, mockService.UploadCalls)
}

func TestConversationHandler_ResolveConversation(t *testing.T) {
	publicID := "A1b2C3d4E5f6G7h8J9k0L1"
	mockService := &MockConversationService{
		ResolveFunc: func(ctx context.Context, slug, userID string) (*conversation.Resolution, error) {
			assert.Equal(t, publicID, slug)
			return &conversation.Resolution{
				Kind:         "conversation",
				Conversation: &conversation.Conversation{PublicID: slug},
			}, nil
		},
	}
	handler := handlers.NewConversationHandler(mockService, 10<<20, zerolog.Nop())
	router := setupConversationTestRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/"+publicID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Kind       string `json:"kind"`
		RedirectTo string `json:"redirect_to"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "conversation", resp.Kind)
	assert.Empty(t, resp.RedirectTo)
}

func TestConversationHandler_ResolveCompany(t *testing.T) {
	mockService := &MockConversationService{
		ResolveFunc: func(ctx context.Context, slug, userID string) (*conversation.Resolution, error) {
			return &conversation.Resolution{
				Kind:    "company",
				Company: &company.Company{Name: "Acme Corporation", Slug: slug},
			}, nil
		},
	}
	handler := handlers.NewConversationHandler(mockService, 10<<20, zerolog.Nop())
	router := setupConversationTestRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/acme-corporation", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Kind       string `json:"kind"`
		RedirectTo string `json:"redirect_to"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "company", resp.Kind)
	assert.Equal(t, "/companies/acme-corporation", resp.RedirectTo)
}

func TestConversationHandler_GetNotFound(t *testing.T) {
	mockService := &MockConversationService{
		GetByPublicIDFunc: func(ctx context.Context, publicID, userID string) (*conversation.Conversation, error) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
				"conversation not found", nil, "test")
		},
	}
	handler := handlers.NewConversationHandler(mockService, 10<<20, zerolog.Nop())
	router := setupConversationTestRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/A1b2C3d4E5f6G7h8J9k0L1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConversationHandler_SendMessage(t *testing.T) {
	mockService := &MockConversationService{
		SendMessageFunc: func(ctx context.Context, publicID, userID, content string) (*conversation.MessageExchange, error) {
			assert.Equal(t, "What data do they collect?", content)
			return &conversation.MessageExchange{
				UserMessage:      conversation.Message{Role: conversation.RoleUser, Content: content, Sequence: 1},
				AssistantMessage: conversation.Message{Role: conversation.RoleAssistant, Content: "Quite a lot.", Sequence: 2},
			}, nil
		},
	}
	handler := handlers.NewConversationHandler(mockService, 10<<20, zerolog.Nop())
	router := setupConversationTestRouter(handler)

	payload := strings.NewReader(`{"content": "What data do they collect?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/conversations/A1b2C3d4E5f6G7h8J9k0L1/messages", payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var exchange conversation.MessageExchange
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exchange))
	assert.Equal(t, conversation.RoleAssistant, exchange.AssistantMessage.Role)
	assert.Equal(t, exchange.UserMessage.Sequence+1, exchange.AssistantMessage.Sequence)
}
