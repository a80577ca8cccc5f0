package conversation

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "policylens/services/chat-api/internal/domain/conversation"
	"policylens/services/chat-api/internal/infrastructure/database/entities"
	"policylens/services/chat-api/internal/utils/platformerrors"
)

// Repository persists conversation metadata.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a conversation repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the conversation record.
func (r *Repository) Create(ctx context.Context, conv *domain.Conversation) error {
	entity := entities.NewSchemaConversation(conv)

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to create conversation", err, "conversation-create")
	}

	conv.ID = entity.ID
	conv.CreatedAt = entity.CreatedAt
	conv.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindByPublicID fetches a conversation by its public ID with messages
// ordered by sequence.
func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*domain.Conversation, error) {
	var entity entities.Conversation
	if err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("public_id = ?", publicID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("conversation not found: %s", publicID), nil, "conversation-not-found")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to fetch conversation", err, "conversation-fetch")
	}

	return entity.EtoD(), nil
}

// FindByUser fetches a user's non-deleted conversations, pinned first, then
// most recently updated.
func (r *Repository) FindByUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	var records []entities.Conversation
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("status <> ?", domain.StatusDeleted).
		Order("pinned DESC, updated_at DESC").
		Find(&records).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to list conversations", err, "conversation-list")
	}

	result := make([]*domain.Conversation, len(records))
	for i := range records {
		result[i] = records[i].EtoD()
	}
	return result, nil
}

// Update updates a conversation record.
func (r *Repository) Update(ctx context.Context, conv *domain.Conversation) error {
	entity := entities.NewSchemaConversation(conv)
	if err := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", entity.ID).
		Updates(map[string]interface{}{
			"title":      entity.Title,
			"archived":   entity.Archived,
			"pinned":     entity.Pinned,
			"status":     entity.Status,
			"metadata":   entity.Metadata,
			"updated_at": entity.UpdatedAt,
		}).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to update conversation", err, "conversation-update")
	}
	return nil
}

// Delete soft-deletes a conversation record.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", id).
		Update("status", domain.StatusDeleted).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to delete conversation", err, "conversation-delete")
	}
	return nil
}

var _ domain.Repository = (*Repository)(nil)
