package conversation

import (
	"context"
	"time"
)

// Repository persists conversation metadata.
type Repository interface {
	Create(ctx context.Context, conv *Conversation) error
	FindByPublicID(ctx context.Context, publicID string) (*Conversation, error)
	FindByUser(ctx context.Context, userID string) ([]*Conversation, error)
	Update(ctx context.Context, conv *Conversation) error
	Delete(ctx context.Context, id uint) error
}

// MessageRepository persists conversation messages.
type MessageRepository interface {
	Append(ctx context.Context, msg *Message) error
	ListByConversation(ctx context.Context, conversationID uint) ([]Message, error)
	NextSequence(ctx context.Context, conversationID uint) (int, error)
}

// IngestTask is a queued document-ingest job created by the upload flow.
type IngestTask struct {
	ID                 string
	ConversationID     string // conversation public ID
	FileName           string
	ContentType        string
	Data               []byte
	CompanyName        string
	CompanyDescription string
	QueuedAt           time.Time
}

// IngestQueue hands ingest tasks to the background workers.
type IngestQueue interface {
	Enqueue(ctx context.Context, task *IngestTask) error
}
