package dto

import (
	"policylens/services/chat-api/internal/domain/company"
	"policylens/services/chat-api/internal/domain/conversation"
)

// ConversationList wraps the conversation listing payload.
type ConversationList struct {
	Data  []*conversation.Conversation `json:"data"`
	Total int                          `json:"total"`
}

// CompanyList wraps the company listing payload with the applied search
// and sort so the client can render the active controls.
type CompanyList struct {
	Data  []company.Company `json:"data"`
	Total int               `json:"total"`
	Query string            `json:"query,omitempty"`
	Sort  string            `json:"sort"`
}

// DocumentList wraps the tracked documents for a company.
type DocumentList struct {
	Data  []company.Document `json:"data"`
	Total int                `json:"total"`
}

// QueryResponse is the answer to an ad-hoc question.
type QueryResponse struct {
	Answer string `json:"answer"`
	Model  string `json:"model,omitempty"`
}

// ResolveResponse is the outcome of slug disambiguation.
type ResolveResponse struct {
	Kind         string                     `json:"kind"`
	Conversation *conversation.Conversation `json:"conversation,omitempty"`
	Company      *company.Company           `json:"company,omitempty"`
	RedirectTo   string                     `json:"redirect_to,omitempty"`
}

// UploadResponse returns the conversation that will receive the analysis
// outcome once the background ingest finishes.
type UploadResponse struct {
	Conversation *conversation.Conversation `json:"conversation"`
	Status       string                     `json:"status"`
}
