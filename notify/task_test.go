package notify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakeclub/clubnotify/notify"
)

func TestHandleDeliveryTask_UnknownCategoryDropped(t *testing.T) {
	f := newFixture(t, false)
	err := f.engine.HandleDeliveryTask(context.Background(), notify.DeliveryTask{
		Category: notify.Category("removed_in_v2"),
	})
	require.NoError(t, err, "unknown categories must not be retried")
	assert.Empty(t, f.sender.all())
}

func TestHandleDeliveryTask_MissingRecordDropped(t *testing.T) {
	f := newFixture(t, false)
	f.addUser(t, "u1", "sub@example.com", notify.CategoryNewEvent)

	err := f.engine.HandleDeliveryTask(context.Background(), notify.DeliveryTask{
		Category: notify.CategoryNewEvent,
		EventID:  "deleted-event",
	})
	require.NoError(t, err, "deleted subjects must not be retried")
	assert.Empty(t, f.sender.all())
}

func TestHandleDeliveryTask_SingleRecipientRechecksPreference(t *testing.T) {
	ctx := context.Background()

	t.Run("still subscribed delivers", func(t *testing.T) {
		f := newFixture(t, false)
		st := notify.Student{ID: "s1", FirstName: "Ash", LastName: "Ketchum"}
		f.dir.AddStudent(st)
		u := f.addUser(t, "p1", "parent@example.com", notify.CategoryNewParentLinked)
		newcomer := f.addUser(t, "p2", "new@example.com")
		f.dir.Link("s1", u.ID)
		f.dir.Link("s1", newcomer.ID)

		err := f.engine.HandleDeliveryTask(ctx, notify.DeliveryTask{
			Category:    notify.CategoryNewParentLinked,
			StudentID:   "s1",
			UserID:      newcomer.ID,
			RecipientID: u.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"parent@example.com"}, f.sender.recipients())
	})

	t.Run("unsubscribed since enqueue gets nothing", func(t *testing.T) {
		f := newFixture(t, false)
		st := notify.Student{ID: "s1", FirstName: "Ash", LastName: "Ketchum"}
		f.dir.AddStudent(st)
		u := f.addUser(t, "p1", "parent@example.com")
		newcomer := f.addUser(t, "p2", "new@example.com")
		f.dir.Link("s1", u.ID)
		f.dir.Link("s1", newcomer.ID)

		err := f.engine.HandleDeliveryTask(ctx, notify.DeliveryTask{
			Category:    notify.CategoryNewParentLinked,
			StudentID:   "s1",
			UserID:      newcomer.ID,
			RecipientID: u.ID,
		})
		require.NoError(t, err)
		assert.Empty(t, f.sender.all())
	})

	t.Run("recipient deleted since enqueue is dropped", func(t *testing.T) {
		f := newFixture(t, false)
		st := notify.Student{ID: "s1", FirstName: "Ash", LastName: "Ketchum"}
		f.dir.AddStudent(st)
		newcomer := f.addUser(t, "p2", "new@example.com")
		f.dir.Link("s1", newcomer.ID)

		err := f.engine.HandleDeliveryTask(ctx, notify.DeliveryTask{
			Category:    notify.CategoryNewParentLinked,
			StudentID:   "s1",
			UserID:      newcomer.ID,
			RecipientID: "gone",
		})
		require.NoError(t, err)
		assert.Empty(t, f.sender.all())
	})
}

func TestHandleDeliveryTask_FanOutHonorsCurrentState(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	ev := publishedEvent("ev1", "Movie Night")
	f.dir.AddEvent(ev)
	f.addUser(t, "u1", "one@example.com", notify.CategoryNewEvent)
	later := f.addUser(t, "u2", "two@example.com", notify.CategoryNewEvent)

	// u2 unsubscribes while the task waits in the queue.
	require.NoError(t, f.subs.SetEnabled(ctx, later.ID, notify.CategoryNewEvent, false))

	err := f.engine.HandleDeliveryTask(ctx, notify.DeliveryTask{
		Category: notify.CategoryNewEvent,
		EventID:  "ev1",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"one@example.com"}, f.sender.recipients())
}
