package services

import (
	"context"
	"fmt"
	"log/slog"

	"conferencecentral/internal/domain"
	"conferencecentral/internal/metrics"
)

// enqueueTask hands task to the queue. Failures are logged and counted but
// never returned; the caller's write has already been persisted.
func enqueueTask(ctx context.Context, q domain.TaskQueue, logger *slog.Logger, task domain.Task) {
	if err := q.Enqueue(ctx, task); err != nil {
		metrics.TasksEnqueued.WithLabelValues(string(task.Kind), metrics.ResultError).Inc()
		logger.ErrorContext(ctx, "failed to enqueue task", "kind", task.Kind, "error", err)
		return
	}
	metrics.TasksEnqueued.WithLabelValues(string(task.Kind), metrics.ResultOK).Inc()
}

type taskDispatcher struct {
	email         domain.EmailService
	announcements domain.AnnouncementService
	logger        *slog.Logger
}

// NewTaskDispatcher returns the TaskHandler that executes dequeued tasks.
func NewTaskDispatcher(email domain.EmailService, announcements domain.AnnouncementService, logger *slog.Logger) domain.TaskHandler {
	return &taskDispatcher{email: email, announcements: announcements, logger: logger}
}

func (d *taskDispatcher) Handle(ctx context.Context, task domain.Task) error {
	err := d.dispatch(ctx, task)
	result := metrics.ResultOK
	if err != nil {
		result = metrics.ResultError
	}
	metrics.TasksProcessed.WithLabelValues(string(task.Kind), result).Inc()
	return err
}

func (d *taskDispatcher) dispatch(ctx context.Context, task domain.Task) error {
	switch task.Kind {
	case domain.TaskSendConfirmationEmail:
		return d.email.SendConferenceConfirmation(ctx, &domain.ConferenceCreatedEmailData{
			Email:          task.Email,
			ConferenceInfo: task.ConferenceInfo,
		})
	case domain.TaskSetFeaturedSpeaker:
		return d.announcements.SetFeaturedSpeaker(ctx, task.Speaker)
	case domain.TaskSetAnnouncement:
		_, err := d.announcements.RecomputeAnnouncement(ctx)
		return err
	default:
		d.logger.WarnContext(ctx, "dropping task of unknown kind", "kind", task.Kind)
		return fmt.Errorf("%w: unknown task kind %q", domain.ErrInvalidInput, task.Kind)
	}
}
