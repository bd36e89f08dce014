package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakeclub/clubnotify/notify"
)

func TestEmitter_EventCreated(t *testing.T) {
	t.Run("published event notifies subscribers", func(t *testing.T) {
		f := newFixture(t, true)
		f.addUser(t, "u1", "sub@example.com", notify.CategoryNewEvent)
		ev := publishedEvent("ev1", "Trading Card Swap")
		f.dir.AddEvent(ev)

		f.emitter.EventCreated(context.Background(), ev)

		sent := f.sender.all()
		require.Len(t, sent, 1)
		assert.Equal(t, "🌟 New Event: Trading Card Swap", sent[0].Subject)
		assert.Contains(t, sent[0].BodyText, "Trading Card Swap")
		assert.Contains(t, sent[0].BodyText, "Lake Elementary Pokémon Club")
	})

	t.Run("draft event stays silent", func(t *testing.T) {
		f := newFixture(t, true)
		f.addUser(t, "u1", "sub@example.com", notify.CategoryNewEvent)
		ev := publishedEvent("ev1", "Trading Card Swap")
		ev.Status = notify.EventStatusDraft
		f.dir.AddEvent(ev)

		f.emitter.EventCreated(context.Background(), ev)

		assert.Empty(t, f.sender.all())
		assert.Empty(t, f.queue.enqueued())
	})
}

func TestEmitter_EventUpdated(t *testing.T) {
	ctx := context.Background()

	t.Run("significant field change notifies", func(t *testing.T) {
		f := newFixture(t, true)
		f.addUser(t, "u1", "sub@example.com", notify.CategoryEventUpdated)
		prev := publishedEvent("ev1", "Movie Night")
		curr := prev
		curr.Title = "Quiz Night"
		f.dir.AddEvent(curr)

		f.emitter.EventUpdated(ctx, prev, curr)

		sent := f.sender.all()
		require.Len(t, sent, 1)
		assert.Equal(t, "📅 Event Updated: Quiz Night", sent[0].Subject)
		assert.Contains(t, sent[0].BodyText, "Title")
	})

	t.Run("insignificant change stays silent", func(t *testing.T) {
		f := newFixture(t, true)
		f.addUser(t, "u1", "sub@example.com", notify.CategoryEventUpdated)
		prev := publishedEvent("ev1", "Movie Night")
		curr := prev
		curr.Special = !prev.Special
		f.dir.AddEvent(curr)

		f.emitter.EventUpdated(ctx, prev, curr)

		assert.Empty(t, f.sender.all())
		assert.Empty(t, f.queue.enqueued())
	})

	t.Run("cancellation wins over other changes", func(t *testing.T) {
		f := newFixture(t, true)
		f.addUser(t, "u1", "sub@example.com",
			notify.CategoryEventUpdated, notify.CategoryEventCancelled)
		prev := publishedEvent("ev1", "Movie Night")
		curr := prev
		curr.Title = "Renamed Night"
		curr.Status = notify.EventStatusCanceled
		f.dir.AddEvent(curr)

		f.emitter.EventUpdated(ctx, prev, curr)

		sent := f.sender.all()
		require.Len(t, sent, 1)
		assert.Equal(t, "⚠️ Event Cancelled: Renamed Night", sent[0].Subject)
	})

	t.Run("draft edits stay silent", func(t *testing.T) {
		f := newFixture(t, true)
		f.addUser(t, "u1", "sub@example.com", notify.CategoryEventUpdated)
		prev := publishedEvent("ev1", "Movie Night")
		prev.Status = notify.EventStatusDraft
		curr := prev
		curr.Title = "Quiz Night"
		f.dir.AddEvent(curr)

		f.emitter.EventUpdated(ctx, prev, curr)

		assert.Empty(t, f.sender.all())
	})

	t.Run("publishing a draft later sends nothing", func(t *testing.T) {
		f := newFixture(t, true)
		f.addUser(t, "u1", "sub@example.com",
			notify.CategoryNewEvent, notify.CategoryEventUpdated)
		prev := publishedEvent("ev1", "Movie Night")
		prev.Status = notify.EventStatusDraft
		curr := prev
		curr.Status = notify.EventStatusPublished
		f.dir.AddEvent(curr)

		f.emitter.EventUpdated(ctx, prev, curr)

		assert.Empty(t, f.sender.all(), "status alone is not a notified field")
	})
}

func TestEmitter_StudentUpdated(t *testing.T) {
	ctx := context.Background()

	t.Run("profile field change notifies all parents", func(t *testing.T) {
		f := newFixture(t, true)
		f.addUser(t, "p1", "one@example.com", notify.CategoryStudentProfileUpdated)
		f.addUser(t, "p2", "two@example.com", notify.CategoryStudentProfileUpdated)
		prev := notify.Student{ID: "s1", FirstName: "Ash", LastName: "Ketchum", FavoritePokemon: "Pikachu"}
		curr := prev
		curr.FavoritePokemon = "Snorlax"
		f.dir.AddStudent(curr)
		f.dir.Link("s1", "p1")
		f.dir.Link("s1", "p2")

		f.emitter.StudentUpdated(ctx, prev, curr)

		sent := f.sender.all()
		require.Len(t, sent, 2)
		assert.Equal(t, "📝 Profile Updated for Ash Ketchum", sent[0].Subject)
		assert.Contains(t, sent[0].BodyText, "Favorite Pokémon")
	})

	t.Run("no change stays silent", func(t *testing.T) {
		f := newFixture(t, true)
		st := notify.Student{ID: "s1", FirstName: "Ash", LastName: "Ketchum"}
		f.emitter.StudentUpdated(ctx, st, st)
		assert.Empty(t, f.queue.enqueued())
	})
}

func TestEmitter_AttendanceSaved(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.addUser(t, "p1", "parent@example.com", notify.CategoryStudentAttendanceUpdated)
	st := notify.Student{ID: "s1", FirstName: "Ash", LastName: "Ketchum"}
	ev := publishedEvent("ev1", "Movie Night")
	att := notify.Attendance{
		ID: "a1", EventID: "ev1", StudentID: "s1",
		Present: false, MarkedAt: time.Date(2026, 9, 12, 15, 5, 0, 0, time.UTC),
	}
	f.dir.AddStudent(st)
	f.dir.AddEvent(ev)
	f.dir.AddAttendance(att)
	f.dir.Link("s1", "p1")

	f.emitter.AttendanceSaved(ctx, att, st, ev)

	sent := f.sender.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "✅ Attendance Updated for Ash Ketchum", sent[0].Subject)
	assert.Contains(t, sent[0].BodyText, "absent")

	// Re-marking flips the status and notifies again.
	att.Present = true
	att.MarkedAt = att.MarkedAt.Add(time.Minute)
	f.dir.AddAttendance(att)
	f.emitter.AttendanceSaved(ctx, att, st, ev)

	sent = f.sender.all()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[1].BodyText, "present")
}

func TestEmitter_StudentLinked(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	st := notify.Student{ID: "s1", FirstName: "Ash", LastName: "Ketchum"}
	f.dir.AddStudent(st)
	f.addUser(t, "p1", "one@example.com", notify.CategoryNewParentLinked)
	f.addUser(t, "p2", "two@example.com", notify.CategoryNewParentLinked)
	newcomer := f.addUser(t, "p3", "three@example.com",
		notify.CategoryStudentLinked, notify.CategoryNewParentLinked)
	f.dir.Link("s1", "p1")
	f.dir.Link("s1", "p2")
	f.dir.Link("s1", "p3")

	f.emitter.StudentLinked(ctx, newcomer, st)

	byRecipient := map[string]string{}
	for _, p := range f.sender.all() {
		byRecipient[p.SendTo] = p.Subject
	}
	require.Len(t, byRecipient, 3, "new parent plus both existing parents")
	assert.Equal(t, "👨‍👩‍👧‍👦 Student Added to Your Account: Ash Ketchum", byRecipient["three@example.com"])
	assert.Equal(t, "👨‍👩‍👧‍👦 New Parent Added to Ash Ketchum's Account", byRecipient["one@example.com"])
	assert.Equal(t, "👨‍👩‍👧‍👦 New Parent Added to Ash Ketchum's Account", byRecipient["two@example.com"])
}

func TestEmitter_StudentUnlinked(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	st := notify.Student{ID: "s1", FirstName: "Ash", LastName: "Ketchum"}
	f.dir.AddStudent(st)
	f.addUser(t, "p1", "one@example.com", notify.CategoryParentUnlinked)
	f.addUser(t, "p2", "two@example.com", notify.CategoryParentUnlinked)
	leaver := f.addUser(t, "p3", "three@example.com",
		notify.CategoryStudentUnlinked, notify.CategoryParentUnlinked)
	f.dir.Link("s1", "p1")
	f.dir.Link("s1", "p2")
	f.dir.Link("s1", "p3")

	// Emitted before the link row is removed.
	f.emitter.StudentUnlinked(ctx, leaver, st)
	f.dir.Unlink("s1", "p3")

	byRecipient := map[string]string{}
	for _, p := range f.sender.all() {
		byRecipient[p.SendTo] = p.Subject
	}
	require.Len(t, byRecipient, 3, "departing parent plus both remaining parents")
	assert.Equal(t, "👋 Student Removed from Your Account: Ash Ketchum", byRecipient["three@example.com"])
	assert.Equal(t, "👋 Parent Removed from Ash Ketchum's Account", byRecipient["one@example.com"])
	assert.Equal(t, "👋 Parent Removed from Ash Ketchum's Account", byRecipient["two@example.com"])
}

func TestEmitter_UserUpdated(t *testing.T) {
	ctx := context.Background()

	t.Run("self edit", func(t *testing.T) {
		f := newFixture(t, true)
		prev := f.addUser(t, "u1", "me@example.com", notify.CategoryUserProfileUpdated)
		curr := prev
		curr.FirstName = "Renamed"
		f.dir.AddUser(curr)

		f.emitter.UserUpdated(ctx, prev, curr, &curr)

		sent := f.sender.all()
		require.Len(t, sent, 1)
		assert.Equal(t, "📝 Your Profile Has Been Updated", sent[0].Subject)
	})

	t.Run("admin edit flags the email", func(t *testing.T) {
		f := newFixture(t, true)
		prev := f.addUser(t, "u1", "me@example.com", notify.CategoryUserProfileUpdated)
		curr := prev
		curr.Role = notify.UserRoleAdmin
		f.dir.AddUser(curr)
		admin := notify.User{
			ID: "a1", EmailAddress: "admin@example.com",
			FirstName: "Prof", LastName: "Oak",
			Role: notify.UserRoleAdmin, Status: notify.UserStatusActive,
		}
		f.dir.AddUser(admin)

		f.emitter.UserUpdated(ctx, prev, curr, &admin)

		sent := f.sender.all()
		require.Len(t, sent, 1)
		assert.Equal(t, "🔒 Your Profile Was Updated by an Administrator", sent[0].Subject)
		assert.Contains(t, sent[0].BodyText, "Prof Oak")
		assert.Contains(t, sent[0].BodyText, "Role")
	})

	t.Run("no change stays silent", func(t *testing.T) {
		f := newFixture(t, true)
		u := f.addUser(t, "u1", "me@example.com", notify.CategoryUserProfileUpdated)
		f.emitter.UserUpdated(ctx, u, u, &u)
		assert.Empty(t, f.queue.enqueued())
	})
}
