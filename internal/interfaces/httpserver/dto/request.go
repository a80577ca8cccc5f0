package dto

// CreateConversationRequest starts a conversation against a company.
type CreateConversationRequest struct {
	Title              *string           `json:"title,omitempty"`
	CompanyName        string            `json:"company_name,omitempty"`
	CompanySlug        string            `json:"company_slug,omitempty"`
	CompanyDescription string            `json:"company_description,omitempty"`
	Mode               string            `json:"mode,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	Message            string            `json:"message,omitempty"`
}

// UpdateConversationRequest carries the PATCHable fields. Pointers
// distinguish "not sent" from zero values.
type UpdateConversationRequest struct {
	Title    *string `json:"title,omitempty"`
	Archived *bool   `json:"archived,omitempty"`
	Pinned   *bool   `json:"pinned,omitempty"`
}

// SendMessageRequest appends a user message to a conversation.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// QueryRequest is an ad-hoc question outside any conversation.
type QueryRequest struct {
	CompanySlug string `json:"company_slug,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	Question    string `json:"question" binding:"required"`
}
