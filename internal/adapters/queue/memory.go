package queue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"conferencecentral/internal/domain"
)

// handleTimeout bounds a single task execution.
const handleTimeout = 30 * time.Second

// ErrQueueFull is returned by MemoryQueue.Enqueue when the buffer is full.
var ErrQueueFull = errors.New("task queue is full")

// MemoryQueue is an in-process TaskQueue backed by a buffered channel. Tasks
// still buffered at shutdown are lost.
type MemoryQueue struct {
	inbox  chan domain.Task
	logger *slog.Logger
}

func NewMemory(size int, logger *slog.Logger) *MemoryQueue {
	return &MemoryQueue{inbox: make(chan domain.Task, size), logger: logger}
}

var _ domain.TaskQueue = (*MemoryQueue)(nil)

// Enqueue never blocks; it fails with ErrQueueFull instead.
func (q *MemoryQueue) Enqueue(ctx context.Context, task domain.Task) error {
	select {
	case q.inbox <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Run hands tasks to handler until ctx is cancelled. A failed task is logged
// and dropped.
func (q *MemoryQueue) Run(ctx context.Context, handler domain.TaskHandler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case task := <-q.inbox:
			handle(ctx, handler, task, q.logger)
		}
	}
}

func handle(ctx context.Context, handler domain.TaskHandler, task domain.Task, logger *slog.Logger) error {
	taskCtx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()
	if err := handler.Handle(taskCtx, task); err != nil {
		logger.ErrorContext(ctx, "task failed", "kind", task.Kind, "error", err)
		return err
	}
	logger.DebugContext(ctx, "task done", "kind", task.Kind)
	return nil
}
