package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStorage implements the queue repository interfaces on PostgreSQL. Claims
// use FOR UPDATE SKIP LOCKED so any number of workers can poll the same
// tables without stepping on each other.
type PgStorage struct {
	pool *pgxpool.Pool
}

// NewPgStorage creates a PostgreSQL-backed queue storage. The tasks and
// tasks_dlq tables must exist (see the migrations directory).
func NewPgStorage(pool *pgxpool.Pool) (*PgStorage, error) {
	if pool == nil {
		return nil, ErrRepositoryNil
	}
	return &PgStorage{pool: pool}, nil
}

// CreateTask implements EnqueuerRepository.
func (s *PgStorage) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return ErrPayloadNil
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (id, queue, task_name, payload, status, priority, retry_count, max_retries, scheduled_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		task.ID, task.Queue, task.TaskName, task.Payload, task.Status,
		task.Priority, task.RetryCount, task.MaxRetries, task.ScheduledAt, task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("queue: failed to insert task: %w", err)
	}
	return nil
}

// ClaimTask implements WorkerRepository. Expired processing locks are
// reclaimable so a crashed worker's tasks get picked up again.
func (s *PgStorage) ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	row := s.pool.QueryRow(ctx, `
		WITH next AS (
			SELECT id FROM tasks
			WHERE queue = ANY($2)
			  AND scheduled_at <= now()
			  AND (status = 'pending' OR (status = 'processing' AND locked_until < now()))
			ORDER BY priority DESC, scheduled_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE tasks t
		SET status = 'processing',
		    locked_by = $1,
		    locked_until = now() + make_interval(secs => $3)
		FROM next
		WHERE t.id = next.id
		RETURNING t.id, t.queue, t.task_name, t.payload, t.status, t.priority,
		          t.retry_count, t.max_retries, t.scheduled_at, t.locked_until,
		          t.locked_by, t.processed_at, t.error, t.created_at`,
		workerID, queues, lockDuration.Seconds(),
	)

	var task Task
	err := row.Scan(&task.ID, &task.Queue, &task.TaskName, &task.Payload, &task.Status,
		&task.Priority, &task.RetryCount, &task.MaxRetries, &task.ScheduledAt,
		&task.LockedUntil, &task.LockedBy, &task.ProcessedAt, &task.Error, &task.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoTaskToClaim
		}
		return nil, fmt.Errorf("queue: failed to claim task: %w", err)
	}
	return &task, nil
}

// CompleteTask implements WorkerRepository.
func (s *PgStorage) CompleteTask(ctx context.Context, taskID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE tasks
		SET status = 'completed', processed_at = now(), locked_until = NULL, locked_by = NULL
		WHERE id = $1`,
		taskID,
	)
	if err != nil {
		return fmt.Errorf("queue: failed to complete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// FailTask implements WorkerRepository: records the error, increments the
// retry count, and re-pends with linear backoff while retries remain.
func (s *PgStorage) FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE tasks
		SET retry_count = retry_count + 1,
		    error = $2,
		    locked_until = NULL,
		    locked_by = NULL,
		    status = CASE WHEN retry_count + 1 <= max_retries THEN 'pending' ELSE 'failed' END,
		    scheduled_at = CASE WHEN retry_count + 1 <= max_retries
		                        THEN now() + make_interval(secs => (retry_count + 1) * 30)
		                        ELSE scheduled_at END
		WHERE id = $1`,
		taskID, errorMsg,
	)
	if err != nil {
		return fmt.Errorf("queue: failed to fail task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// MoveToDLQ implements WorkerRepository. Insert and delete run in one
// transaction so the task can't be lost or duplicated between the tables.
func (s *PgStorage) MoveToDLQ(ctx context.Context, taskID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("queue: failed to begin DLQ transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		INSERT INTO tasks_dlq (id, task_id, queue, task_name, payload, priority, error, retry_count, failed_at, created_at)
		SELECT gen_random_uuid(), id, queue, task_name, payload, priority, COALESCE(error, ''), retry_count, now(), created_at
		FROM tasks WHERE id = $1`,
		taskID,
	)
	if err != nil {
		return fmt.Errorf("queue: failed to copy task to DLQ: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID); err != nil {
		return fmt.Errorf("queue: failed to remove task after DLQ copy: %w", err)
	}

	return tx.Commit(ctx)
}
