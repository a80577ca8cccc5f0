package conversation

import (
	"context"

	"gorm.io/gorm"

	domain "policylens/services/chat-api/internal/domain/conversation"
	"policylens/services/chat-api/internal/infrastructure/database/entities"
	"policylens/services/chat-api/internal/utils/platformerrors"
)

// MessageRepository persists conversation messages.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository builds a message repository.
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Append inserts a message. The (conversation, sequence) unique index
// guarantees append order survives concurrent writers.
func (r *MessageRepository) Append(ctx context.Context, msg *domain.Message) error {
	entity := entities.NewSchemaMessage(msg)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to append message", err, "message-append")
	}

	msg.ID = entity.ID
	msg.CreatedAt = entity.CreatedAt
	return nil
}

// ListByConversation fetches a conversation's messages ordered by sequence.
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID uint) ([]domain.Message, error) {
	var records []entities.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sequence ASC").
		Find(&records).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to list messages", err, "message-list")
	}

	result := make([]domain.Message, len(records))
	for i := range records {
		result[i] = *records[i].EtoD()
	}
	return result, nil
}

// NextSequence returns the next free sequence number for a conversation.
func (r *MessageRepository) NextSequence(ctx context.Context, conversationID uint) (int, error) {
	var max int
	if err := r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("conversation_id = ?", conversationID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&max).Error; err != nil {
		return 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to compute next sequence", err, "message-next-sequence")
	}
	return max + 1, nil
}

var _ domain.MessageRepository = (*MessageRepository)(nil)
