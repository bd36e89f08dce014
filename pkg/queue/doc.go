// Package queue is a storage-backed task queue with at-least-once execution
// semantics: tasks are claimed under a lock, failed executions are retried
// with backoff, and tasks that exhaust their retries (or have no registered
// handler) are parked in a dead letter queue.
//
// Payloads are plain structs serialized to JSON; the payload's qualified type
// name routes the task to its handler, so the enqueue site and the handler
// agree by construction:
//
//	type WelcomeEmail struct{ UserID string }
//
//	enqueuer.Enqueue(ctx, WelcomeEmail{UserID: id})
//
//	worker.RegisterHandlers(queue.NewTaskHandler(func(ctx context.Context, p WelcomeEmail) error {
//		return sendWelcome(ctx, p.UserID)
//	}))
//
// Two storage backends are provided: MemoryStorage for tests and
// single-process development, and PgStorage for production, which claims
// tasks with FOR UPDATE SKIP LOCKED so multiple workers can share the tables.
package queue
