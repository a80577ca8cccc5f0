package entities

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"policylens/services/chat-api/internal/domain/conversation"
)

// Conversation represents the database schema for conversations.
type Conversation struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID           string                          `gorm:"type:varchar(50);uniqueIndex;not null"`
	UserID             string                          `gorm:"type:varchar(64);index:idx_conversation_user_status;not null"`
	Title              *string                         `gorm:"type:varchar(256)"`
	CompanyName        string                          `gorm:"type:varchar(256)"`
	CompanySlug        string                          `gorm:"type:varchar(128);index"`
	CompanyDescription string                          `gorm:"type:text"`
	Mode               string                          `gorm:"type:varchar(32);not null;default:'company'"`
	Status             conversation.ConversationStatus `gorm:"type:varchar(20);index:idx_conversation_user_status;not null;default:'active'"`
	Archived           bool                            `gorm:"not null;default:false"`
	Pinned             bool                            `gorm:"not null;default:false"`
	Metadata           JSONMap                         `gorm:"type:jsonb"`

	Messages []Message `gorm:"foreignKey:ConversationID"`
}

// TableName specifies the table name for Conversation.
func (Conversation) TableName() string {
	return "conversations"
}

// JSONMap is a custom type for map[string]string stored as JSON.
type JSONMap map[string]string

func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONMap) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// EtoD converts the database entity to the domain model.
func (c *Conversation) EtoD() *conversation.Conversation {
	metadata := make(map[string]string)
	if c.Metadata != nil {
		metadata = c.Metadata
	}

	messages := make([]conversation.Message, len(c.Messages))
	for i, msg := range c.Messages {
		messages[i] = *msg.EtoD()
	}

	return &conversation.Conversation{
		ID:                 c.ID,
		PublicID:           c.PublicID,
		UserID:             c.UserID,
		Title:              c.Title,
		CompanyName:        c.CompanyName,
		CompanySlug:        c.CompanySlug,
		CompanyDescription: c.CompanyDescription,
		Mode:               c.Mode,
		Status:             c.Status,
		Archived:           c.Archived,
		Pinned:             c.Pinned,
		Messages:           messages,
		Metadata:           metadata,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// NewSchemaConversation creates a database entity from the domain model.
func NewSchemaConversation(c *conversation.Conversation) *Conversation {
	return &Conversation{
		ID:                 c.ID,
		PublicID:           c.PublicID,
		UserID:             c.UserID,
		Title:              c.Title,
		CompanyName:        c.CompanyName,
		CompanySlug:        c.CompanySlug,
		CompanyDescription: c.CompanyDescription,
		Mode:               c.Mode,
		Status:             c.Status,
		Archived:           c.Archived,
		Pinned:             c.Pinned,
		Metadata:           c.Metadata,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}
