package queue_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakeclub/clubnotify/pkg/queue"
)

type sendReminder struct {
	UserID string `json:"user_id"`
}

func TestEnqueuer_Enqueue(t *testing.T) {
	ctx := context.Background()

	t.Run("nil repository", func(t *testing.T) {
		_, err := queue.NewEnqueuer(nil)
		assert.ErrorIs(t, err, queue.ErrRepositoryNil)
	})

	t.Run("nil payload", func(t *testing.T) {
		enq, err := queue.NewEnqueuer(queue.NewMemoryStorage())
		require.NoError(t, err)
		assert.ErrorIs(t, enq.Enqueue(ctx, nil), queue.ErrPayloadNil)
	})

	t.Run("task name derived from payload type", func(t *testing.T) {
		storage := queue.NewMemoryStorage()
		enq, err := queue.NewEnqueuer(storage)
		require.NoError(t, err)

		require.NoError(t, enq.Enqueue(ctx, sendReminder{UserID: "u1"}))

		pending := storage.PendingTasks()
		require.Len(t, pending, 1)
		assert.Equal(t, "queue_test.sendReminder", pending[0].TaskName)
		assert.Equal(t, queue.DefaultQueueName, pending[0].Queue)

		var decoded sendReminder
		require.NoError(t, json.Unmarshal(pending[0].Payload, &decoded))
		assert.Equal(t, "u1", decoded.UserID)
	})

	t.Run("enqueue options", func(t *testing.T) {
		storage := queue.NewMemoryStorage()
		enq, err := queue.NewEnqueuer(storage, queue.WithDefaultQueue("notifications"))
		require.NoError(t, err)

		before := time.Now()
		require.NoError(t, enq.Enqueue(ctx, sendReminder{UserID: "u2"},
			queue.WithPriority(queue.PriorityHigh),
			queue.WithMaxRetries(5),
			queue.WithDelay(time.Minute),
		))

		pending := storage.PendingTasks()
		require.Len(t, pending, 1)
		assert.Equal(t, "notifications", pending[0].Queue)
		assert.Equal(t, queue.PriorityHigh, pending[0].Priority)
		assert.Equal(t, int8(5), pending[0].MaxRetries)
		assert.True(t, pending[0].ScheduledAt.After(before.Add(50*time.Second)))
	})

	t.Run("invalid priority", func(t *testing.T) {
		enq, err := queue.NewEnqueuer(queue.NewMemoryStorage())
		require.NoError(t, err)
		err = enq.Enqueue(ctx, sendReminder{}, queue.WithPriority(queue.Priority(-5)))
		assert.ErrorIs(t, err, queue.ErrInvalidPriority)
	})
}
