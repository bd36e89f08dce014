package queue_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakeclub/clubnotify/pkg/queue"
)

// waitFor polls cond until it returns true or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestWorker_ProcessesTask(t *testing.T) {
	ctx := context.Background()
	storage := queue.NewMemoryStorage()
	enq, err := queue.NewEnqueuer(storage)
	require.NoError(t, err)

	var handled atomic.Int32
	worker, err := queue.NewWorker(storage,
		queue.WithPullInterval(10*time.Millisecond),
		queue.WithMaxConcurrentTasks(2),
	)
	require.NoError(t, err)
	worker.RegisterHandlers(queue.NewTaskHandler(func(ctx context.Context, p sendReminder) error {
		handled.Add(1)
		return nil
	}))

	require.NoError(t, enq.Enqueue(ctx, sendReminder{UserID: "u1"}))
	require.NoError(t, worker.Start(ctx))
	defer func() { _ = worker.Stop() }()

	waitFor(t, 2*time.Second, func() bool { return handled.Load() == 1 })
}

func TestWorker_RetriesThenDLQ(t *testing.T) {
	ctx := context.Background()
	storage := queue.NewMemoryStorage()
	enq, err := queue.NewEnqueuer(storage)
	require.NoError(t, err)

	var attempts atomic.Int32
	worker, err := queue.NewWorker(storage, queue.WithPullInterval(10*time.Millisecond))
	require.NoError(t, err)
	worker.RegisterHandlers(queue.NewTaskHandler(func(ctx context.Context, p sendReminder) error {
		attempts.Add(1)
		return errors.New("transport down")
	}))

	// No retries so the first failure goes straight to the DLQ. Backoff on
	// re-pend makes multi-retry runs too slow for a unit test.
	require.NoError(t, enq.Enqueue(ctx, sendReminder{UserID: "u1"}, queue.WithMaxRetries(0)))
	require.NoError(t, worker.Start(ctx))
	defer func() { _ = worker.Stop() }()

	waitFor(t, 2*time.Second, func() bool { return len(storage.DeadTasks()) == 1 })
	assert.Equal(t, int32(1), attempts.Load())
	assert.Equal(t, "transport down", storage.DeadTasks()[0].Error)
}

func TestWorker_MissingHandlerGoesToDLQ(t *testing.T) {
	ctx := context.Background()
	storage := queue.NewMemoryStorage()
	enq, err := queue.NewEnqueuer(storage)
	require.NoError(t, err)

	worker, err := queue.NewWorker(storage, queue.WithPullInterval(10*time.Millisecond))
	require.NoError(t, err)
	worker.RegisterHandlers(queue.NewTaskHandler(func(ctx context.Context, p sendReminder) error {
		return nil
	}))

	require.NoError(t, enq.Enqueue(ctx, sendReminder{}, queue.WithTaskName("unknown.Task")))
	require.NoError(t, worker.Start(ctx))
	defer func() { _ = worker.Stop() }()

	waitFor(t, 2*time.Second, func() bool { return len(storage.DeadTasks()) == 1 })
}

func TestWorker_StartValidation(t *testing.T) {
	worker, err := queue.NewWorker(queue.NewMemoryStorage())
	require.NoError(t, err)

	assert.ErrorIs(t, worker.Start(context.Background()), queue.ErrNoHandlers)
}
