package domain

import "context"

// TaskKind names an asynchronous task.
type TaskKind string

const (
	TaskSendConfirmationEmail TaskKind = "send_confirmation_email"
	TaskSetFeaturedSpeaker    TaskKind = "set_featured_speaker"
	TaskSetAnnouncement       TaskKind = "set_announcement"
)

// Task is the message placed on the task queue. Only the fields relevant to
// Kind are set.
type Task struct {
	Kind           TaskKind `json:"kind"`
	Email          string   `json:"email,omitempty"`
	ConferenceInfo string   `json:"conference_info,omitempty"`
	Speaker        string   `json:"speaker,omitempty"`
}

// TaskQueue accepts tasks for asynchronous processing.
type TaskQueue interface {
	Enqueue(ctx context.Context, task Task) error
}

// TaskHandler executes a dequeued task.
type TaskHandler interface {
	Handle(ctx context.Context, task Task) error
}

// TaskHandlerFunc adapts a function to TaskHandler.
type TaskHandlerFunc func(ctx context.Context, task Task) error

func (f TaskHandlerFunc) Handle(ctx context.Context, task Task) error {
	return f(ctx, task)
}
