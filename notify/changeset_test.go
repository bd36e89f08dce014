package notify_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lakeclub/clubnotify/notify"
)

func TestEventChanges(t *testing.T) {
	base := notify.Event{
		ID:       "ev1",
		Title:    "Pokémon Movie Night",
		Status:   notify.EventStatusPublished,
		StartsAt: time.Date(2026, 9, 12, 15, 0, 0, 0, time.UTC),
		Venue:    "Gym",
	}

	t.Run("no changes", func(t *testing.T) {
		assert.True(t, notify.EventChanges(base, base).Empty())
	})

	t.Run("detects field changes", func(t *testing.T) {
		curr := base
		curr.Title = "Pokémon Quiz Night"
		curr.StartsAt = curr.StartsAt.Add(time.Hour)
		cs := notify.EventChanges(base, curr)
		assert.ElementsMatch(t, notify.ChangeSet{"title", "starts_at"}, cs)
	})

	t.Run("status and special are tracked", func(t *testing.T) {
		curr := base
		curr.Status = notify.EventStatusCanceled
		curr.Special = !base.Special
		cs := notify.EventChanges(base, curr)
		assert.ElementsMatch(t, notify.ChangeSet{"status", "special"}, cs)
	})
}

func TestStudentChanges(t *testing.T) {
	prev := notify.Student{ID: "s1", FirstName: "Ash", LastName: "Ketchum", Grade: "3", FavoritePokemon: "Pikachu"}
	curr := prev
	curr.Grade = "4"
	curr.FavoritePokemon = "Charizard"

	cs := notify.StudentChanges(prev, curr)
	assert.ElementsMatch(t, notify.ChangeSet{"grade", "favorite_pokemon"}, cs)
}

func TestUserChanges(t *testing.T) {
	prev := notify.User{ID: "u1", FirstName: "May", LastName: "Oak", EmailAddress: "may@example.com", Role: notify.UserRoleMember}
	curr := prev
	curr.EmailAddress = "may.oak@example.com"
	curr.Role = notify.UserRoleAdmin

	cs := notify.UserChanges(prev, curr)
	assert.ElementsMatch(t, notify.ChangeSet{"email_address", "role"}, cs)
}

func TestChangeSet_Intersect(t *testing.T) {
	cs := notify.ChangeSet{"title", "special", "city"}
	assert.Equal(t, notify.ChangeSet{"title", "city"}, cs.Intersect("city", "title", "venue"))
	assert.True(t, cs.Intersect("description").Empty())
}

func TestChangeSet_Humanize(t *testing.T) {
	cs := notify.ChangeSet{"starts_at", "favorite_pokemon", "venue", "email_address"}
	assert.Equal(t,
		[]string{"Start time", "Favorite Pokémon", "Venue", "Email address"},
		cs.Humanize())
}
