package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"policylens/services/chat-api/internal/domain/conversation"
	"policylens/services/chat-api/internal/infrastructure/metrics"
	"policylens/services/chat-api/internal/infrastructure/observability"
	"policylens/services/chat-api/internal/infrastructure/queue"
)

// Worker processes ingest tasks from the queue.
type Worker struct {
	id           int
	queue        queue.TaskQueue
	conversation conversation.Service
	taskTimeout  time.Duration
	log          zerolog.Logger
	stopChan     chan struct{}
}

// NewWorker creates a new background worker.
func NewWorker(
	id int,
	taskQueue queue.TaskQueue,
	conversationService conversation.Service,
	taskTimeout time.Duration,
	log zerolog.Logger,
) *Worker {
	return &Worker{
		id:           id,
		queue:        taskQueue,
		conversation: conversationService,
		taskTimeout:  taskTimeout,
		log:          log.With().Int("worker_id", id).Str("component", "worker").Logger(),
		stopChan:     make(chan struct{}),
	}
}

// Start begins processing tasks from the queue.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info().Msg("worker started")

	ticker := time.NewTicker(2 * time.Second) // Poll every 2 seconds
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("worker stopped by context")
			return
		case <-w.stopChan:
			w.log.Info().Msg("worker stopped")
			return
		case <-ticker.C:
			w.processNextTask(ctx)
		}
	}
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	close(w.stopChan)
}

func (w *Worker) processNextTask(ctx context.Context) {
	task, err := w.queue.Dequeue(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to dequeue task")
		return
	}

	if task == nil {
		return
	}

	w.log.Info().
		Str("task_id", task.ID).
		Str("conversation_id", task.ConversationID).
		Str("file_name", task.FileName).
		Msg("processing ingest task")

	if err := w.queue.MarkProcessing(ctx, task.ID); err != nil {
		w.log.Error().Err(err).Str("task_id", task.ID).Msg("failed to mark processing")
		return
	}

	taskCtx, cancel := context.WithTimeout(ctx, w.taskTimeout)
	defer cancel()

	taskCtx, span := observability.StartIngestSpan(taskCtx, task.ID, task.ConversationID)
	defer span.End()

	if err := w.conversation.ExecuteIngest(taskCtx, task); err != nil {
		observability.RecordError(span, err)
		metrics.RecordBackgroundJob("ingest", "failed")
		w.log.Error().Err(err).Str("task_id", task.ID).Msg("ingest task failed")
		if markErr := w.queue.MarkFailed(ctx, task.ID, err); markErr != nil {
			w.log.Error().Err(markErr).Str("task_id", task.ID).Msg("failed to mark task as failed")
		}
		return
	}

	if err := w.queue.MarkCompleted(ctx, task.ID); err != nil {
		w.log.Error().Err(err).Str("task_id", task.ID).Msg("failed to mark task as completed")
	}

	metrics.RecordBackgroundJob("ingest", "completed")
	w.log.Info().Str("task_id", task.ID).Msg("ingest task completed")

	if depth, err := w.queue.GetQueueDepth(ctx); err == nil {
		metrics.SetQueueDepth(depth)
	}
}
