package conversation

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ConversationStatus tracks the lifecycle of a conversation.
type ConversationStatus string

const (
	StatusActive  ConversationStatus = "active"
	StatusDeleted ConversationStatus = "deleted"
)

// Mode tags how a conversation was started.
const (
	ModeCompany  = "company"  // chat against a catalogued company
	ModeDocument = "document" // chat against an uploaded document
)

// MessageRole indicates who authored a message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// AssistantApology is appended in place of an answer when the analysis
// engine fails. The optimistic user message stays; there is no rollback.
const AssistantApology = "Sorry, I encountered an error while answering your question. Please try again."

// Conversation is a persisted chat thread bound to a company (or an
// uploaded document) with an ordered message list.
type Conversation struct {
	ID                 uint               `json:"-"`
	PublicID           string             `json:"id"`
	UserID             string             `json:"-"`
	Title              *string            `json:"title,omitempty"`
	CompanyName        string             `json:"company_name,omitempty"`
	CompanySlug        string             `json:"company_slug,omitempty"`
	CompanyDescription string             `json:"company_description,omitempty"`
	Mode               string             `json:"mode,omitempty"`
	Status             ConversationStatus `json:"status"`
	Archived           bool               `json:"archived"`
	Pinned             bool               `json:"pinned"`
	Messages           []Message          `json:"messages,omitempty"`
	Metadata           map[string]string  `json:"metadata,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// Message is one markdown-formatted entry in a conversation. Messages are
// append-only; Sequence fixes the rendering order.
type Message struct {
	ID             uint        `json:"-"`
	ConversationID uint        `json:"-"`
	PublicID       string      `json:"id"`
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	Sequence       int         `json:"sequence"`
	CreatedAt      time.Time   `json:"created_at"`
}

// NewConversation creates an active conversation with a generated public ID.
func NewConversation(publicID, userID string, metadata map[string]string) *Conversation {
	now := time.Now()
	if metadata == nil {
		metadata = make(map[string]string)
	}
	return &Conversation{
		PublicID:  publicID,
		UserID:    userID,
		Status:    StatusActive,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewMessage creates a message ready to be appended.
func NewMessage(conversationID uint, sequence int, role MessageRole, content string) *Message {
	return &Message{
		ConversationID: conversationID,
		PublicID:       NewMessagePublicID(),
		Role:           role,
		Content:        content,
		Sequence:       sequence,
		CreatedAt:      time.Now(),
	}
}

// NewMessagePublicID returns a msg_-prefixed ULID.
func NewMessagePublicID() string {
	return "msg_" + strings.ToLower(ulid.Make().String())
}
