package webhook

import "context"

// Service sends webhook notifications for document ingest events. The
// webhook URL is carried in the conversation metadata under "webhook_url";
// conversations without one are skipped silently.
type Service interface {
	// NotifyIngestCompleted fires when a document finishes analysis.
	NotifyIngestCompleted(ctx context.Context, conversationID string, documentID string, metadata map[string]string) error

	// NotifyIngestFailed fires when document analysis fails.
	NotifyIngestFailed(ctx context.Context, conversationID string, errorMessage string, metadata map[string]string) error
}

// ErrorDetails contains machine readable error info.
type ErrorDetails struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Payload is the structure sent to webhook URLs.
type Payload struct {
	ConversationID string            `json:"conversation_id"`
	Event          string            `json:"event"` // "ingest.completed" or "ingest.failed"
	DocumentID     string            `json:"document_id,omitempty"`
	Error          *ErrorDetails     `json:"error,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}
