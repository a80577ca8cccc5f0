package conversation_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policylens/services/chat-api/internal/domain/analysis"
	"policylens/services/chat-api/internal/domain/company"
	"policylens/services/chat-api/internal/domain/conversation"
	"policylens/services/chat-api/internal/domain/metasummary"
	"policylens/services/chat-api/internal/utils/platformerrors"
)

// MockRepository is a func-field mock of conversation.Repository.
type MockRepository struct {
	CreateFunc         func(ctx context.Context, conv *conversation.Conversation) error
	FindByPublicIDFunc func(ctx context.Context, publicID string) (*conversation.Conversation, error)
	FindByUserFunc     func(ctx context.Context, userID string) ([]*conversation.Conversation, error)
	UpdateFunc         func(ctx context.Context, conv *conversation.Conversation) error
	DeleteFunc         func(ctx context.Context, id uint) error

	CreateCalls int
}

func (m *MockRepository) Create(ctx context.Context, conv *conversation.Conversation) error {
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, conv)
	}
	conv.ID = 1
	return nil
}

func (m *MockRepository) FindByPublicID(ctx context.Context, publicID string) (*conversation.Conversation, error) {
	if m.FindByPublicIDFunc != nil {
		return m.FindByPublicIDFunc(ctx, publicID)
	}
	return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
		"conversation not found", nil, "test-not-found")
}

func (m *MockRepository) FindByUser(ctx context.Context, userID string) ([]*conversation.Conversation, error) {
	if m.FindByUserFunc != nil {
		return m.FindByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockRepository) Update(ctx context.Context, conv *conversation.Conversation) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, conv)
	}
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockMessageRepository records appended messages in order.
type MockMessageRepository struct {
	AppendFunc func(ctx context.Context, msg *conversation.Message) error

	Appended []conversation.Message
}

func (m *MockMessageRepository) Append(ctx context.Context, msg *conversation.Message) error {
	if m.AppendFunc != nil {
		if err := m.AppendFunc(ctx, msg); err != nil {
			return err
		}
	}
	m.Appended = append(m.Appended, *msg)
	return nil
}

func (m *MockMessageRepository) ListByConversation(ctx context.Context, conversationID uint) ([]conversation.Message, error) {
	return m.Appended, nil
}

func (m *MockMessageRepository) NextSequence(ctx context.Context, conversationID uint) (int, error) {
	return len(m.Appended) + 1, nil
}

// MockProvider is a func-field mock of analysis.Provider.
type MockProvider struct {
	AskFunc            func(ctx context.Context, req analysis.QueryRequest) (*analysis.QueryResponse, error)
	GetCompanyFunc     func(ctx context.Context, slug string) (*company.Company, error)
	IngestDocumentFunc func(ctx context.Context, req analysis.IngestRequest) (*analysis.IngestResult, error)
}

func (m *MockProvider) ListCompanies(ctx context.Context) ([]company.Company, error) {
	return nil, nil
}

func (m *MockProvider) GetCompany(ctx context.Context, slug string) (*company.Company, error) {
	if m.GetCompanyFunc != nil {
		return m.GetCompanyFunc(ctx, slug)
	}
	return nil, errors.New("not implemented")
}

func (m *MockProvider) ListDocuments(ctx context.Context, slug string) ([]company.Document, error) {
	return nil, nil
}

func (m *MockProvider) GetLogo(ctx context.Context, slug string) (*company.Logo, error) {
	return nil, errors.New("not implemented")
}

func (m *MockProvider) GetMetaSummary(ctx context.Context, slug string) (*metasummary.MetaSummary, error) {
	return nil, errors.New("not implemented")
}

func (m *MockProvider) Ask(ctx context.Context, req analysis.QueryRequest) (*analysis.QueryResponse, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, req)
	}
	return &analysis.QueryResponse{Answer: "canned answer"}, nil
}

func (m *MockProvider) IngestDocument(ctx context.Context, req analysis.IngestRequest) (*analysis.IngestResult, error) {
	if m.IngestDocumentFunc != nil {
		return m.IngestDocumentFunc(ctx, req)
	}
	return &analysis.IngestResult{DocumentID: "doc-1", Status: "completed"}, nil
}

// MockQueue records enqueued tasks.
type MockQueue struct {
	EnqueueFunc func(ctx context.Context, task *conversation.IngestTask) error

	Enqueued []*conversation.IngestTask
}

func (m *MockQueue) Enqueue(ctx context.Context, task *conversation.IngestTask) error {
	if m.EnqueueFunc != nil {
		if err := m.EnqueueFunc(ctx, task); err != nil {
			return err
		}
	}
	m.Enqueued = append(m.Enqueued, task)
	return nil
}

// MockWebhook records notifications.
type MockWebhook struct {
	Completed []string
	Failed    []string
}

func (m *MockWebhook) NotifyIngestCompleted(ctx context.Context, conversationID, documentID string, metadata map[string]string) error {
	m.Completed = append(m.Completed, conversationID)
	return nil
}

func (m *MockWebhook) NotifyIngestFailed(ctx context.Context, conversationID, errorMessage string, metadata map[string]string) error {
	m.Failed = append(m.Failed, conversationID)
	return nil
}

type fixture struct {
	repo     *MockRepository
	messages *MockMessageRepository
	provider *MockProvider
	queue    *MockQueue
	webhooks *MockWebhook
	service  conversation.Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:     &MockRepository{},
		messages: &MockMessageRepository{},
		provider: &MockProvider{},
		queue:    &MockQueue{},
		webhooks: &MockWebhook{},
	}
	f.service = conversation.NewService(f.repo, f.messages, f.provider, f.queue, f.webhooks, zerolog.Nop())
	return f
}

func activeConversation(publicID, userID string) *conversation.Conversation {
	conv := conversation.NewConversation(publicID, userID, nil)
	conv.ID = 42
	conv.CompanyName = "Acme"
	conv.CompanySlug = "acme"
	return conv
}

func TestSendMessageAppendsInOrder(t *testing.T) {
	f := newFixture()
	conv := activeConversation("A1b2C3d4E5f6G7h8J9k0L1", "user-1")
	f.repo.FindByPublicIDFunc = func(ctx context.Context, publicID string) (*conversation.Conversation, error) {
		return conv, nil
	}
	f.provider.AskFunc = func(ctx context.Context, req analysis.QueryRequest) (*analysis.QueryResponse, error) {
		return &analysis.QueryResponse{Answer: "They retain your data for 30 days."}, nil
	}

	exchange, err := f.service.SendMessage(context.Background(), conv.PublicID, "user-1", "How long is data retained?")
	require.NoError(t, err)

	assert.Equal(t, conversation.RoleUser, exchange.UserMessage.Role)
	assert.Equal(t, conversation.RoleAssistant, exchange.AssistantMessage.Role)
	assert.Equal(t, "They retain your data for 30 days.", exchange.AssistantMessage.Content)

	require.Len(t, f.messages.Appended, 2)
	assert.Equal(t, conversation.RoleUser, f.messages.Appended[0].Role)
	assert.Equal(t, conversation.RoleAssistant, f.messages.Appended[1].Role)
	assert.Equal(t, exchange.UserMessage.Sequence+1, exchange.AssistantMessage.Sequence)
}

func TestSendMessageSequencesStayMonotonic(t *testing.T) {
	f := newFixture()
	conv := activeConversation("A1b2C3d4E5f6G7h8J9k0L1", "user-1")
	f.repo.FindByPublicIDFunc = func(ctx context.Context, publicID string) (*conversation.Conversation, error) {
		return conv, nil
	}

	for i := 0; i < 3; i++ {
		_, err := f.service.SendMessage(context.Background(), conv.PublicID, "user-1", fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}

	require.Len(t, f.messages.Appended, 6)
	for i, msg := range f.messages.Appended {
		assert.Equal(t, i+1, msg.Sequence, "sequence must be append-ordered")
	}
}

func TestSendMessageApologyOnUpstreamFailure(t *testing.T) {
	f := newFixture()
	conv := activeConversation("A1b2C3d4E5f6G7h8J9k0L1", "user-1")
	f.repo.FindByPublicIDFunc = func(ctx context.Context, publicID string) (*conversation.Conversation, error) {
		return conv, nil
	}
	f.provider.AskFunc = func(ctx context.Context, req analysis.QueryRequest) (*analysis.QueryResponse, error) {
		return nil, errors.New("engine unavailable")
	}

	exchange, err := f.service.SendMessage(context.Background(), conv.PublicID, "user-1", "Is my data sold?")
	require.NoError(t, err, "upstream failure must not fail the send")

	// The optimistic user message stays; the reply is the canned apology.
	require.Len(t, f.messages.Appended, 2)
	assert.Equal(t, "Is my data sold?", f.messages.Appended[0].Content)
	assert.Equal(t, conversation.AssistantApology, exchange.AssistantMessage.Content)
}

func TestSendMessageRejectsEmptyContent(t *testing.T) {
	f := newFixture()

	_, err := f.service.SendMessage(context.Background(), "A1b2C3d4E5f6G7h8J9k0L1", "user-1", "   ")
	require.Error(t, err)
	assert.True(t, platformerrors.GetPlatformError(err) != nil)
	assert.Empty(t, f.messages.Appended)
}

func TestSendMessageForbiddenForOtherUser(t *testing.T) {
	f := newFixture()
	conv := activeConversation("A1b2C3d4E5f6G7h8J9k0L1", "owner")
	f.repo.FindByPublicIDFunc = func(ctx context.Context, publicID string) (*conversation.Conversation, error) {
		return conv, nil
	}

	_, err := f.service.SendMessage(context.Background(), conv.PublicID, "intruder", "hello")
	require.Error(t, err)
	platformErr := platformerrors.GetPlatformError(err)
	require.NotNil(t, platformErr)
	assert.Equal(t, platformerrors.ErrorTypeForbidden, platformErr.Type)
}

func TestGetByPublicIDHidesDeleted(t *testing.T) {
	f := newFixture()
	conv := activeConversation("A1b2C3d4E5f6G7h8J9k0L1", "user-1")
	conv.Status = conversation.StatusDeleted
	f.repo.FindByPublicIDFunc = func(ctx context.Context, publicID string) (*conversation.Conversation, error) {
		return conv, nil
	}

	_, err := f.service.GetByPublicID(context.Background(), conv.PublicID, "user-1")
	require.Error(t, err)
	platformErr := platformerrors.GetPlatformError(err)
	require.NotNil(t, platformErr)
	assert.Equal(t, platformerrors.ErrorTypeNotFound, platformErr.Type)
}

func TestUploadRejectsEmptyCompanyName(t *testing.T) {
	f := newFixture()

	_, err := f.service.Upload(context.Background(), conversation.UploadParams{
		UserID:   "user-1",
		FileName: "terms.pdf",
		Data:     []byte("%PDF-1.4"),
	})
	require.Error(t, err)
	platformErr := platformerrors.GetPlatformError(err)
	require.NotNil(t, platformErr)
	assert.Equal(t, platformerrors.ErrorTypeValidation, platformErr.Type)

	// Nothing is created and nothing is enqueued.
	assert.Zero(t, f.repo.CreateCalls)
	assert.Empty(t, f.queue.Enqueued)
}

func TestUploadCreatesConversationAndEnqueues(t *testing.T) {
	f := newFixture()

	conv, err := f.service.Upload(context.Background(), conversation.UploadParams{
		UserID:      "user-1",
		FileName:    "terms.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4"),
		CompanyName: "Acme",
	})
	require.NoError(t, err)

	assert.Equal(t, conversation.ModeDocument, conv.Mode)
	assert.Len(t, conv.PublicID, conversation.PublicIDLength)

	require.Len(t, f.queue.Enqueued, 1)
	task := f.queue.Enqueued[0]
	assert.Equal(t, conv.PublicID, task.ConversationID)
	assert.Equal(t, "terms.pdf", task.FileName)
	assert.Equal(t, []byte("%PDF-1.4"), task.Data)

	// A system status message is appended immediately.
	require.NotEmpty(t, f.messages.Appended)
	assert.Equal(t, conversation.RoleSystem, f.messages.Appended[0].Role)
}

func TestResolveConversationID(t *testing.T) {
	f := newFixture()
	conv := activeConversation("A1b2C3d4E5f6G7h8J9k0L1", "user-1")
	f.repo.FindByPublicIDFunc = func(ctx context.Context, publicID string) (*conversation.Conversation, error) {
		assert.Equal(t, conv.PublicID, publicID)
		return conv, nil
	}

	res, err := f.service.Resolve(context.Background(), conv.PublicID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "conversation", res.Kind)
	require.NotNil(t, res.Conversation)
	assert.Nil(t, res.Company)
}

func TestResolveCompanySlug(t *testing.T) {
	f := newFixture()
	f.provider.GetCompanyFunc = func(ctx context.Context, slug string) (*company.Company, error) {
		assert.Equal(t, "acme-corporation", slug)
		return &company.Company{Name: "Acme Corporation", Slug: slug}, nil
	}

	res, err := f.service.Resolve(context.Background(), "acme-corporation", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "company", res.Kind)
	require.NotNil(t, res.Company)
	assert.Nil(t, res.Conversation)
}

func TestResolveUnknownCompanyStaysNotFound(t *testing.T) {
	f := newFixture()
	f.provider.GetCompanyFunc = func(ctx context.Context, slug string) (*company.Company, error) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeNotFound,
			"analysis api: company not found", nil, "analysis-company")
	}

	_, err := f.service.Resolve(context.Background(), "no-such-company", "user-1")
	require.Error(t, err)
	assert.True(t, platformerrors.IsNotFound(err), "upstream not-found must survive the wrap")
}

func TestExecuteIngestSuccess(t *testing.T) {
	f := newFixture()
	conv := activeConversation("A1b2C3d4E5f6G7h8J9k0L1", "user-1")
	f.repo.FindByPublicIDFunc = func(ctx context.Context, publicID string) (*conversation.Conversation, error) {
		return conv, nil
	}

	err := f.service.ExecuteIngest(context.Background(), &conversation.IngestTask{
		ID:             "task-1",
		ConversationID: conv.PublicID,
		FileName:       "privacy.pdf",
		Data:           []byte("%PDF-1.4"),
		CompanyName:    "Acme",
	})
	require.NoError(t, err)

	require.Len(t, f.messages.Appended, 1)
	assert.Equal(t, conversation.RoleSystem, f.messages.Appended[0].Role)
	assert.Contains(t, f.messages.Appended[0].Content, "privacy.pdf")
	assert.Equal(t, []string{conv.PublicID}, f.webhooks.Completed)
}

func TestExecuteIngestFailureRecordsAndNotifies(t *testing.T) {
	f := newFixture()
	conv := activeConversation("A1b2C3d4E5f6G7h8J9k0L1", "user-1")
	f.repo.FindByPublicIDFunc = func(ctx context.Context, publicID string) (*conversation.Conversation, error) {
		return conv, nil
	}
	f.provider.IngestDocumentFunc = func(ctx context.Context, req analysis.IngestRequest) (*analysis.IngestResult, error) {
		return nil, errors.New("parse failure")
	}

	err := f.service.ExecuteIngest(context.Background(), &conversation.IngestTask{
		ID:             "task-1",
		ConversationID: conv.PublicID,
		FileName:       "privacy.pdf",
	})
	require.Error(t, err)

	require.Len(t, f.messages.Appended, 1)
	assert.Contains(t, f.messages.Appended[0].Content, "failed")
	assert.Equal(t, []string{conv.PublicID}, f.webhooks.Failed)
}
