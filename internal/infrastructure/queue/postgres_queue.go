package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	domain "policylens/services/chat-api/internal/domain/conversation"
	"policylens/services/chat-api/internal/infrastructure/database/entities"
)

// taskPayload is the JSON carried in the ingest_tasks row.
type taskPayload struct {
	FileName           string `json:"file_name"`
	ContentType        string `json:"content_type"`
	CompanyName        string `json:"company_name"`
	CompanyDescription string `json:"company_description,omitempty"`
}

// PostgresQueue implements TaskQueue on the ingest_tasks table.
type PostgresQueue struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewPostgresQueue creates a new PostgreSQL-backed task queue.
func NewPostgresQueue(db *gorm.DB, log zerolog.Logger) *PostgresQueue {
	return &PostgresQueue{
		db:  db,
		log: log.With().Str("component", "postgres-queue").Logger(),
	}
}

// Enqueue inserts a queued ingest task.
func (q *PostgresQueue) Enqueue(ctx context.Context, task *domain.IngestTask) error {
	payload, err := json.Marshal(taskPayload{
		FileName:           task.FileName,
		ContentType:        task.ContentType,
		CompanyName:        task.CompanyName,
		CompanyDescription: task.CompanyDescription,
	})
	if err != nil {
		return fmt.Errorf("marshal task payload: %w", err)
	}

	entity := entities.IngestTask{
		PublicID:       task.ID,
		ConversationID: task.ConversationID,
		Status:         "queued",
		Payload:        datatypes.JSON(payload),
		FileData:       task.Data,
		QueuedAt:       task.QueuedAt,
	}
	if err := q.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}
	return nil
}

// Dequeue fetches the next queued task using FOR UPDATE SKIP LOCKED.
func (q *PostgresQueue) Dequeue(ctx context.Context) (*domain.IngestTask, error) {
	var entity entities.IngestTask

	err := q.db.WithContext(ctx).
		Raw("SELECT * FROM ingest_tasks WHERE status = ? ORDER BY queued_at ASC LIMIT 1 FOR UPDATE SKIP LOCKED", "queued").
		Scan(&entity).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil // No tasks available
		}
		return nil, fmt.Errorf("dequeue task: %w", err)
	}

	if entity.ID == 0 {
		return nil, nil // No tasks available
	}

	var payload taskPayload
	if len(entity.Payload) > 0 {
		if err := json.Unmarshal(entity.Payload, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal task payload: %w", err)
		}
	}

	return &domain.IngestTask{
		ID:                 entity.PublicID,
		ConversationID:     entity.ConversationID,
		FileName:           payload.FileName,
		ContentType:        payload.ContentType,
		Data:               entity.FileData,
		CompanyName:        payload.CompanyName,
		CompanyDescription: payload.CompanyDescription,
		QueuedAt:           entity.QueuedAt,
	}, nil
}

// MarkProcessing updates the task status to in_progress.
func (q *PostgresQueue) MarkProcessing(ctx context.Context, taskID string) error {
	now := time.Now()
	result := q.db.WithContext(ctx).
		Model(&entities.IngestTask{}).
		Where("public_id = ?", taskID).
		Updates(map[string]interface{}{
			"status":     "in_progress",
			"started_at": now,
			"updated_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("mark processing: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("task not found: %s", taskID)
	}
	return nil
}

// MarkCompleted updates the task status to completed and drops the file
// bytes; they are no longer needed once the engine has them.
func (q *PostgresQueue) MarkCompleted(ctx context.Context, taskID string) error {
	now := time.Now()
	result := q.db.WithContext(ctx).
		Model(&entities.IngestTask{}).
		Where("public_id = ?", taskID).
		Updates(map[string]interface{}{
			"status":       "completed",
			"file_data":    nil,
			"completed_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return fmt.Errorf("mark completed: %w", result.Error)
	}
	return nil
}

// MarkFailed updates the task status to failed.
func (q *PostgresQueue) MarkFailed(ctx context.Context, taskID string, taskErr error) error {
	now := time.Now()
	message := taskErr.Error()
	result := q.db.WithContext(ctx).
		Model(&entities.IngestTask{}).
		Where("public_id = ?", taskID).
		Updates(map[string]interface{}{
			"status":     "failed",
			"error":      message,
			"failed_at":  now,
			"updated_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("mark failed: %w", result.Error)
	}
	return nil
}

// GetQueueDepth returns the number of queued ingest tasks.
func (q *PostgresQueue) GetQueueDepth(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.WithContext(ctx).
		Model(&entities.IngestTask{}).
		Where("status = ?", "queued").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("get queue depth: %w", err)
	}
	return count, nil
}

var _ TaskQueue = (*PostgresQueue)(nil)
var _ domain.IngestQueue = (*PostgresQueue)(nil)
