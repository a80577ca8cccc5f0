package entities

import (
	"time"

	"policylens/services/chat-api/internal/domain/conversation"
)

// Message stores each conversation entry. Sequence fixes rendering order;
// the unique index makes concurrent appends collide instead of interleave.
type Message struct {
	ID             uint   `gorm:"primaryKey"`
	ConversationID uint   `gorm:"uniqueIndex:idx_message_conversation_sequence;not null"`
	PublicID       string `gorm:"type:varchar(50);uniqueIndex;not null"`
	Role           string `gorm:"type:varchar(16);not null"`
	Content        string `gorm:"type:text;not null"`
	Sequence       int    `gorm:"uniqueIndex:idx_message_conversation_sequence;not null"`
	CreatedAt      time.Time
}

// TableName specifies the table name for Message.
func (Message) TableName() string {
	return "messages"
}

// EtoD converts the database entity to the domain model.
func (m *Message) EtoD() *conversation.Message {
	return &conversation.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		PublicID:       m.PublicID,
		Role:           conversation.MessageRole(m.Role),
		Content:        m.Content,
		Sequence:       m.Sequence,
		CreatedAt:      m.CreatedAt,
	}
}

// NewSchemaMessage creates a database entity from the domain model.
func NewSchemaMessage(m *conversation.Message) *Message {
	return &Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		PublicID:       m.PublicID,
		Role:           string(m.Role),
		Content:        m.Content,
		Sequence:       m.Sequence,
		CreatedAt:      m.CreatedAt,
	}
}
