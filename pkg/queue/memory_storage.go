package queue

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage implements the queue repository interfaces in memory.
// Intended for tests and single-process development setups.
type MemoryStorage struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*Task
	dlq   map[uuid.UUID]*DeadTask
}

// NewMemoryStorage creates an in-memory queue storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tasks: make(map[uuid.UUID]*Task),
		dlq:   make(map[uuid.UUID]*DeadTask),
	}
}

// CreateTask implements EnqueuerRepository.
func (ms *MemoryStorage) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return ErrPayloadNil
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	// Clone to protect against caller mutation after enqueue.
	cp := *task
	ms.tasks[task.ID] = &cp
	return nil
}

// ClaimTask implements WorkerRepository. Selection is priority-first with the
// earliest scheduled time breaking ties; expired processing locks are
// reclaimable, which is what makes delivery at-least-once.
func (ms *MemoryStorage) ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	var best *Task
	for _, task := range ms.tasks {
		if !slices.Contains(queues, task.Queue) {
			continue
		}
		runnable := task.Status == TaskStatusPending ||
			(task.Status == TaskStatusProcessing && task.LockedUntil != nil && task.LockedUntil.Before(now))
		if !runnable || task.ScheduledAt.After(now) {
			continue
		}
		if best == nil || task.Priority > best.Priority ||
			(task.Priority == best.Priority && task.ScheduledAt.Before(best.ScheduledAt)) {
			best = task
		}
	}
	if best == nil {
		return nil, ErrNoTaskToClaim
	}

	lockedUntil := now.Add(lockDuration)
	best.Status = TaskStatusProcessing
	best.LockedUntil = &lockedUntil
	best.LockedBy = &workerID

	cp := *best
	return &cp, nil
}

// CompleteTask implements WorkerRepository.
func (ms *MemoryStorage) CompleteTask(ctx context.Context, taskID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, ok := ms.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}
	now := time.Now()
	task.Status = TaskStatusCompleted
	task.ProcessedAt = &now
	task.LockedUntil = nil
	task.LockedBy = nil
	return nil
}

// FailTask implements WorkerRepository. When retries remain the task is
// re-pended with linear backoff; otherwise it stays failed until MoveToDLQ.
func (ms *MemoryStorage) FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, ok := ms.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}

	task.RetryCount++
	task.Error = &errorMsg
	task.LockedUntil = nil
	task.LockedBy = nil

	if task.RetryCount <= task.MaxRetries {
		task.Status = TaskStatusPending
		task.ScheduledAt = time.Now().Add(time.Duration(task.RetryCount) * 30 * time.Second)
	} else {
		task.Status = TaskStatusFailed
	}
	return nil
}

// MoveToDLQ implements WorkerRepository.
func (ms *MemoryStorage) MoveToDLQ(ctx context.Context, taskID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, ok := ms.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}

	errMsg := ""
	if task.Error != nil {
		errMsg = *task.Error
	}
	ms.dlq[task.ID] = &DeadTask{
		ID:         uuid.New(),
		TaskID:     task.ID,
		Queue:      task.Queue,
		TaskName:   task.TaskName,
		Payload:    task.Payload,
		Priority:   task.Priority,
		Error:      errMsg,
		RetryCount: task.RetryCount,
		FailedAt:   time.Now(),
		CreatedAt:  task.CreatedAt,
	}
	delete(ms.tasks, taskID)
	return nil
}

// GetTask returns a snapshot of a stored task, for tests and inspection.
func (ms *MemoryStorage) GetTask(taskID uuid.UUID) (*Task, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, ok := ms.tasks[taskID]
	if !ok {
		return nil, false
	}
	cp := *task
	return &cp, true
}

// PendingTasks returns snapshots of all tasks currently pending.
func (ms *MemoryStorage) PendingTasks() []Task {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	var out []Task
	for _, task := range ms.tasks {
		if task.Status == TaskStatusPending {
			out = append(out, *task)
		}
	}
	return out
}

// DeadTasks returns snapshots of the dead letter queue contents.
func (ms *MemoryStorage) DeadTasks() []DeadTask {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	out := make([]DeadTask, 0, len(ms.dlq))
	for _, dt := range ms.dlq {
		out = append(out, *dt)
	}
	return out
}
