package queue

import "errors"

var (
	// ErrRepositoryNil is returned when a nil repository is provided.
	ErrRepositoryNil = errors.New("queue: repository cannot be nil")

	// ErrPayloadNil is returned when attempting to enqueue a nil payload.
	ErrPayloadNil = errors.New("queue: payload cannot be nil")

	// ErrInvalidPriority is returned when priority is outside valid range.
	ErrInvalidPriority = errors.New("queue: priority must be between 0 and 100")

	// ErrNoTaskToClaim is returned by storage when no runnable task exists.
	ErrNoTaskToClaim = errors.New("queue: no task to claim")

	// ErrHandlerNotFound is returned when no handler is registered for a task.
	ErrHandlerNotFound = errors.New("queue: no handler registered for task type")

	// ErrNoHandlers is returned when a worker is started without handlers.
	ErrNoHandlers = errors.New("queue: no task handlers registered")

	// ErrTaskNotFound is returned by storage for an unknown task ID.
	ErrTaskNotFound = errors.New("queue: task not found")
)
