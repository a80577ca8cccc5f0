package handlers

import (
	"github.com/rs/zerolog"

	"policylens/services/chat-api/internal/domain/company"
	"policylens/services/chat-api/internal/domain/conversation"
	"policylens/services/chat-api/internal/domain/metasummary"
	"policylens/services/chat-api/internal/domain/query"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Conversation *ConversationHandler
	Company      *CompanyHandler
	MetaSummary  *MetaSummaryHandler
	Query        *QueryHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(
	conversationService conversation.Service,
	companyService *company.Service,
	summaryService *metasummary.Service,
	queryService *query.Service,
	maxUploadBytes int64,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Conversation: NewConversationHandler(conversationService, maxUploadBytes, log),
		Company:      NewCompanyHandler(companyService, log),
		MetaSummary:  NewMetaSummaryHandler(summaryService, log),
		Query:        NewQueryHandler(queryService, log),
	}
}
