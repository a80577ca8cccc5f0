package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"policylens/services/chat-api/internal/domain/analysis"
	"policylens/services/chat-api/internal/domain/company"
	"policylens/services/chat-api/internal/infrastructure/observability"
	"policylens/services/chat-api/internal/utils/platformerrors"
	"policylens/services/chat-api/internal/webhook"
)

// Service exposes conversation operations to the HTTP layer and workers.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*Conversation, error)
	GetByPublicID(ctx context.Context, publicID, userID string) (*Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]*Conversation, error)
	UpdateMetadata(ctx context.Context, publicID, userID string, params UpdateParams) (*Conversation, error)
	Delete(ctx context.Context, publicID, userID string) error
	SendMessage(ctx context.Context, publicID, userID, content string) (*MessageExchange, error)
	Upload(ctx context.Context, params UploadParams) (*Conversation, error)
	Resolve(ctx context.Context, slug, userID string) (*Resolution, error)
	ExecuteIngest(ctx context.Context, task *IngestTask) error
}

// CreateParams collects input for creating a conversation.
type CreateParams struct {
	UserID             string
	Title              *string
	CompanyName        string
	CompanySlug        string
	CompanyDescription string
	Mode               string
	Metadata           map[string]string
	InitialMessage     string
}

// UpdateParams carries the PATCHable conversation fields.
type UpdateParams struct {
	Title    *string
	Archived *bool
	Pinned   *bool
}

// UploadParams collects the multipart upload flow input. ConversationID is
// optional: when set the document extends an existing conversation, when
// empty a new document-mode conversation is created.
type UploadParams struct {
	ConversationID     string
	UserID             string
	FileName           string
	ContentType        string
	Data               []byte
	CompanyName        string
	CompanyDescription string
	Metadata           map[string]string
}

// MessageExchange is the result of a send: the optimistic user message plus
// the assistant reply (or apology).
type MessageExchange struct {
	UserMessage      Message `json:"user_message"`
	AssistantMessage Message `json:"assistant_message"`
}

// Resolution is the outcome of slug disambiguation: either an existing
// conversation or a company the caller should start a conversation with.
type Resolution struct {
	Kind         string           `json:"kind"` // "conversation" or "company"
	Conversation *Conversation    `json:"conversation,omitempty"`
	Company      *company.Company `json:"company,omitempty"`
}

type service struct {
	repo     Repository
	messages MessageRepository
	provider analysis.Provider
	queue    IngestQueue
	webhooks webhook.Service
	log      zerolog.Logger
}

// NewService wires the conversation service.
func NewService(
	repo Repository,
	messages MessageRepository,
	provider analysis.Provider,
	queue IngestQueue,
	webhooks webhook.Service,
	log zerolog.Logger,
) Service {
	return &service{
		repo:     repo,
		messages: messages,
		provider: provider,
		queue:    queue,
		webhooks: webhooks,
		log:      log.With().Str("component", "conversation-service").Logger(),
	}
}

func (s *service) Create(ctx context.Context, params CreateParams) (*Conversation, error) {
	if strings.TrimSpace(params.CompanyName) == "" && strings.TrimSpace(params.CompanySlug) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"a company name or slug is required", nil, "conversation-create-no-company")
	}

	publicID, err := GeneratePublicID()
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"failed to generate conversation id", err, "conversation-create-id")
	}

	conv := NewConversation(publicID, params.UserID, params.Metadata)
	conv.Title = params.Title
	conv.CompanyName = params.CompanyName
	conv.CompanySlug = params.CompanySlug
	conv.CompanyDescription = params.CompanyDescription
	conv.Mode = params.Mode
	if conv.Mode == "" {
		conv.Mode = ModeCompany
	}

	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, err
	}

	if question := strings.TrimSpace(params.InitialMessage); question != "" {
		exchange, err := s.appendExchange(ctx, conv, question)
		if err != nil {
			return nil, err
		}
		conv.Messages = append(conv.Messages, exchange.UserMessage, exchange.AssistantMessage)
	}

	return conv, nil
}

func (s *service) GetByPublicID(ctx context.Context, publicID, userID string) (*Conversation, error) {
	return s.findOwned(ctx, publicID, userID)
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]*Conversation, error) {
	return s.repo.FindByUser(ctx, userID)
}

func (s *service) UpdateMetadata(ctx context.Context, publicID, userID string, params UpdateParams) (*Conversation, error) {
	conv, err := s.findOwned(ctx, publicID, userID)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		conv.Title = params.Title
	}
	if params.Archived != nil {
		conv.Archived = *params.Archived
	}
	if params.Pinned != nil {
		conv.Pinned = *params.Pinned
	}
	conv.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *service) Delete(ctx context.Context, publicID, userID string) error {
	conv, err := s.findOwned(ctx, publicID, userID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, conv.ID)
}

// SendMessage appends the user message first, then asks the analysis
// engine. The user message is never rolled back: an upstream failure is
// surfaced as a canned assistant apology appended after it.
func (s *service) SendMessage(ctx context.Context, publicID, userID, content string) (*MessageExchange, error) {
	ctx, span := observability.StartConversationSpan(ctx, "send_message", publicID)
	defer span.End()

	if strings.TrimSpace(content) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"message content must not be empty", nil, "conversation-send-empty")
	}

	conv, err := s.findOwned(ctx, publicID, userID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	exchange, err := s.appendExchange(ctx, conv, content)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	return exchange, nil
}

func (s *service) appendExchange(ctx context.Context, conv *Conversation, content string) (*MessageExchange, error) {
	seq, err := s.messages.NextSequence(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	userMsg := NewMessage(conv.ID, seq, RoleUser, content)
	if err := s.messages.Append(ctx, userMsg); err != nil {
		return nil, err
	}

	history := buildHistory(conv.Messages)
	answer, askErr := s.provider.Ask(ctx, analysis.QueryRequest{
		CompanySlug:        conv.CompanySlug,
		CompanyName:        conv.CompanyName,
		CompanyDescription: conv.CompanyDescription,
		Question:           content,
		History:            history,
		Mode:               conv.Mode,
	})

	reply := AssistantApology
	if askErr != nil {
		s.log.Warn().Err(askErr).Str("conversation_id", conv.PublicID).Msg("analysis engine query failed")
	} else {
		reply = answer.Answer
	}

	assistantMsg := NewMessage(conv.ID, seq+1, RoleAssistant, reply)
	if err := s.messages.Append(ctx, assistantMsg); err != nil {
		return nil, err
	}

	conv.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, conv); err != nil {
		s.log.Warn().Err(err).Str("conversation_id", conv.PublicID).Msg("failed to touch conversation")
	}

	return &MessageExchange{
		UserMessage:      *userMsg,
		AssistantMessage: *assistantMsg,
	}, nil
}

// Upload validates the multipart form and either extends an existing
// conversation or creates a new one with a queued ingest task. An empty
// company name fails before anything is created or any upstream call is
// issued.
func (s *service) Upload(ctx context.Context, params UploadParams) (*Conversation, error) {
	if strings.TrimSpace(params.CompanyName) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"company_name is required", nil, "conversation-upload-no-company")
	}
	if len(params.Data) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"file must not be empty", nil, "conversation-upload-empty-file")
	}

	var conv *Conversation
	var err error
	if params.ConversationID != "" {
		conv, err = s.findOwned(ctx, params.ConversationID, params.UserID)
	} else {
		conv, err = s.Create(ctx, CreateParams{
			UserID:             params.UserID,
			CompanyName:        params.CompanyName,
			CompanyDescription: params.CompanyDescription,
			Mode:               ModeDocument,
			Metadata:           params.Metadata,
		})
	}
	if err != nil {
		return nil, err
	}

	seq, err := s.messages.NextSequence(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	statusMsg := NewMessage(conv.ID, seq, RoleSystem,
		fmt.Sprintf("Received %s. Analysis is in progress; ask your first question any time.", params.FileName))
	if err := s.messages.Append(ctx, statusMsg); err != nil {
		return nil, err
	}
	conv.Messages = append(conv.Messages, *statusMsg)

	task := &IngestTask{
		ID:                 uuid.NewString(),
		ConversationID:     conv.PublicID,
		FileName:           params.FileName,
		ContentType:        params.ContentType,
		Data:               params.Data,
		CompanyName:        params.CompanyName,
		CompanyDescription: params.CompanyDescription,
		QueuedAt:           time.Now(),
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "enqueue ingest task")
	}

	return conv, nil
}

// Resolve disambiguates a path segment: a 22-character base62 value is a
// conversation public ID, anything else is a company slug.
func (s *service) Resolve(ctx context.Context, slug, userID string) (*Resolution, error) {
	if IsPublicID(slug) {
		conv, err := s.findOwned(ctx, slug, userID)
		if err != nil {
			return nil, err
		}
		return &Resolution{Kind: "conversation", Conversation: conv}, nil
	}

	comp, err := s.provider.GetCompany(ctx, slug)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "resolve company slug")
	}
	return &Resolution{Kind: "company", Company: comp}, nil
}

// ExecuteIngest forwards a queued document to the analysis engine and
// records the outcome as a system message. Called by background workers.
func (s *service) ExecuteIngest(ctx context.Context, task *IngestTask) error {
	conv, err := s.repo.FindByPublicID(ctx, task.ConversationID)
	if err != nil {
		return err
	}

	result, ingestErr := s.provider.IngestDocument(ctx, analysis.IngestRequest{
		FileName:           task.FileName,
		ContentType:        task.ContentType,
		Data:               task.Data,
		CompanyName:        task.CompanyName,
		CompanyDescription: task.CompanyDescription,
		ConversationID:     task.ConversationID,
	})

	seq, err := s.messages.NextSequence(ctx, conv.ID)
	if err != nil {
		return err
	}

	if ingestErr != nil {
		failMsg := NewMessage(conv.ID, seq, RoleSystem,
			fmt.Sprintf("Analysis of %s failed. You can retry the upload.", task.FileName))
		if err := s.messages.Append(ctx, failMsg); err != nil {
			s.log.Error().Err(err).Str("conversation_id", conv.PublicID).Msg("failed to record ingest failure")
		}
		if err := s.webhooks.NotifyIngestFailed(ctx, conv.PublicID, ingestErr.Error(), conv.Metadata); err != nil {
			s.log.Warn().Err(err).Msg("ingest failure webhook not delivered")
		}
		return fmt.Errorf("ingest document: %w", ingestErr)
	}

	doneMsg := NewMessage(conv.ID, seq, RoleSystem,
		fmt.Sprintf("Analysis of %s is complete.", task.FileName))
	if err := s.messages.Append(ctx, doneMsg); err != nil {
		return err
	}

	conv.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, conv); err != nil {
		s.log.Warn().Err(err).Str("conversation_id", conv.PublicID).Msg("failed to touch conversation")
	}

	if err := s.webhooks.NotifyIngestCompleted(ctx, conv.PublicID, result.DocumentID, conv.Metadata); err != nil {
		s.log.Warn().Err(err).Msg("ingest completion webhook not delivered")
	}

	return nil
}

func (s *service) findOwned(ctx context.Context, publicID, userID string) (*Conversation, error) {
	conv, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if conv.Status == StatusDeleted {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("conversation not found: %s", publicID), nil, "conversation-deleted")
	}
	if userID != "" && conv.UserID != "" && conv.UserID != userID {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"conversation belongs to another user", nil, "conversation-forbidden")
	}
	return conv, nil
}

// buildHistory converts persisted messages into query context, keeping only
// user and assistant turns in order.
func buildHistory(messages []Message) []analysis.Turn {
	history := make([]analysis.Turn, 0, len(messages))
	for _, msg := range messages {
		if msg.Role != RoleUser && msg.Role != RoleAssistant {
			continue
		}
		history = append(history, analysis.Turn{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return history
}
