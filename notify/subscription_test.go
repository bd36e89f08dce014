package notify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakeclub/clubnotify/notify"
)

func TestMemorySubscriptionStore_FailClosed(t *testing.T) {
	ctx := context.Background()
	store := notify.NewMemorySubscriptionStore()

	enabled, err := store.IsEnabled(ctx, "u1", notify.CategoryNewEvent)
	require.NoError(t, err)
	assert.False(t, enabled, "no preference row means unsubscribed")
}

func TestMemorySubscriptionStore_SetEnabled(t *testing.T) {
	ctx := context.Background()
	store := notify.NewMemorySubscriptionStore()

	require.NoError(t, store.SetEnabled(ctx, "u1", notify.CategoryNewEvent, true))
	enabled, err := store.IsEnabled(ctx, "u1", notify.CategoryNewEvent)
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, store.SetEnabled(ctx, "u1", notify.CategoryNewEvent, false))
	enabled, err = store.IsEnabled(ctx, "u1", notify.CategoryNewEvent)
	require.NoError(t, err)
	assert.False(t, enabled)

	err = store.SetEnabled(ctx, "u1", notify.Category("bogus"), true)
	assert.ErrorIs(t, err, notify.ErrUnknownCategory)
}

func TestMemorySubscriptionStore_EnsureDefaults(t *testing.T) {
	ctx := context.Background()
	store := notify.NewMemorySubscriptionStore()

	// Pre-existing opt-out must survive the defaulting pass.
	require.NoError(t, store.SetEnabled(ctx, "u1", notify.CategoryNewEvent, false))
	require.NoError(t, store.EnsureDefaults(ctx, "u1"))
	require.NoError(t, store.EnsureDefaults(ctx, "u1"), "idempotent")

	subs, err := store.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, subs, len(notify.Categories()))
	for _, sub := range subs {
		if sub.Category == notify.CategoryNewEvent {
			assert.False(t, sub.Enabled, "existing preference untouched")
		} else {
			assert.True(t, sub.Enabled, "missing rows default to enabled")
		}
	}
}

func TestMemorySubscriptionStore_DisableAll(t *testing.T) {
	ctx := context.Background()
	store := notify.NewMemorySubscriptionStore()
	require.NoError(t, store.SetEnabled(ctx, "u1", notify.CategoryEventUpdated, true))

	require.NoError(t, store.DisableAll(ctx, "u1"))

	subs, err := store.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, subs, len(notify.Categories()))
	for _, sub := range subs {
		assert.False(t, sub.Enabled)
	}
}

func TestApplyPreferences(t *testing.T) {
	ctx := context.Background()

	t.Run("subset enables named and disables the rest", func(t *testing.T) {
		store := notify.NewMemorySubscriptionStore()
		err := notify.ApplyPreferences(ctx, store, "u1", []notify.Category{
			notify.CategoryNewEvent, notify.CategoryStudentLinked,
		})
		require.NoError(t, err)

		for _, c := range notify.Categories() {
			enabled, err := store.IsEnabled(ctx, "u1", c)
			require.NoError(t, err)
			want := c == notify.CategoryNewEvent || c == notify.CategoryStudentLinked
			assert.Equal(t, want, enabled, "category %s", c)
		}
	})

	t.Run("empty slice disables everything", func(t *testing.T) {
		store := notify.NewMemorySubscriptionStore()
		require.NoError(t, store.SetEnabled(ctx, "u1", notify.CategoryNewEvent, true))

		require.NoError(t, notify.ApplyPreferences(ctx, store, "u1", nil))

		subs, err := store.List(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, subs, len(notify.Categories()))
		for _, sub := range subs {
			assert.False(t, sub.Enabled)
		}
	})

	t.Run("unknown category rejected before any write", func(t *testing.T) {
		store := notify.NewMemorySubscriptionStore()
		err := notify.ApplyPreferences(ctx, store, "u1", []notify.Category{
			notify.CategoryNewEvent, notify.Category("bogus"),
		})
		require.ErrorIs(t, err, notify.ErrUnknownCategory)

		subs, err := store.List(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, subs, "validation failure must not write")
	})

	t.Run("nil store", func(t *testing.T) {
		err := notify.ApplyPreferences(ctx, nil, "u1", nil)
		assert.ErrorIs(t, err, notify.ErrNilDependency)
	})
}
