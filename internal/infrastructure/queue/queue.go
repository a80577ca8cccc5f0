package queue

import (
	"context"

	domain "policylens/services/chat-api/internal/domain/conversation"
)

// TaskQueue defines the interface for ingest task queue operations.
type TaskQueue interface {
	// Enqueue adds a task to the queue
	Enqueue(ctx context.Context, task *domain.IngestTask) error

	// Dequeue fetches the next available task using SELECT FOR UPDATE SKIP LOCKED
	Dequeue(ctx context.Context) (*domain.IngestTask, error)

	// MarkProcessing updates task status to in_progress
	MarkProcessing(ctx context.Context, taskID string) error

	// MarkCompleted updates task status to completed
	MarkCompleted(ctx context.Context, taskID string) error

	// MarkFailed updates task status to failed
	MarkFailed(ctx context.Context, taskID string, err error) error

	// GetQueueDepth returns the number of queued tasks
	GetQueueDepth(ctx context.Context) (int64, error)
}
