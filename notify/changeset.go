package notify

import (
	"slices"
	"strings"
)

// ChangeSet is the set of field names that changed during one save, computed
// by diffing the previous and current record snapshots. It exists only for
// the lifetime of a dispatch: significance checks and email display.
type ChangeSet []string

// Empty reports whether nothing changed.
func (cs ChangeSet) Empty() bool {
	return len(cs) == 0
}

// Contains reports whether the named field changed.
func (cs ChangeSet) Contains(field string) bool {
	return slices.Contains(cs, field)
}

// Intersect returns the changed fields that are also in fields, preserving
// the change set's order.
func (cs ChangeSet) Intersect(fields ...string) ChangeSet {
	var out ChangeSet
	for _, f := range cs {
		if slices.Contains(fields, f) {
			out = append(out, f)
		}
	}
	return out
}

// fingerprint folds the set into a stable string for idempotency keys.
func (cs ChangeSet) fingerprint() string {
	if len(cs) == 0 {
		return "-"
	}
	sorted := slices.Clone(cs)
	slices.Sort(sorted)
	return strings.Join(sorted, ",")
}

// fieldLabels maps column-style field names to the words used in emails.
// Fields not listed fall back to underscore-to-space conversion.
var fieldLabels = map[string]string{
	"starts_at":        "Start time",
	"ends_at":          "End time",
	"address1":         "Address",
	"favorite_pokemon": "Favorite Pokémon",
	"email_address":    "Email address",
}

// Humanize converts the raw field names to display labels.
func (cs ChangeSet) Humanize() []string {
	out := make([]string, 0, len(cs))
	for _, f := range cs {
		if label, ok := fieldLabels[f]; ok {
			out = append(out, label)
			continue
		}
		label := strings.ReplaceAll(f, "_", " ")
		if label != "" {
			label = strings.ToUpper(label[:1]) + label[1:]
		}
		out = append(out, label)
	}
	return out
}

// Per-entity field names, matching the host application's column names so the
// change sets read naturally in emails and logs.
const (
	fieldTitle           = "title"
	fieldStartsAt        = "starts_at"
	fieldEndsAt          = "ends_at"
	fieldVenue           = "venue"
	fieldAddress1        = "address1"
	fieldCity            = "city"
	fieldState           = "state"
	fieldDescription     = "description"
	fieldStatus          = "status"
	fieldSpecial         = "special"
	fieldFirstName       = "first_name"
	fieldLastName        = "last_name"
	fieldGrade           = "grade"
	fieldFavoritePokemon = "favorite_pokemon"
	fieldEmailAddress    = "email_address"
	fieldRole            = "role"
)

// eventNotifiedFields are the event fields whose change warrants an
// event_updated notification.
var eventNotifiedFields = []string{
	fieldTitle, fieldStartsAt, fieldEndsAt, fieldVenue,
	fieldAddress1, fieldCity, fieldState, fieldDescription,
}

// EventChanges diffs two event snapshots.
func EventChanges(prev, curr Event) ChangeSet {
	var cs ChangeSet
	add := func(field string, changed bool) {
		if changed {
			cs = append(cs, field)
		}
	}
	add(fieldTitle, prev.Title != curr.Title)
	add(fieldStartsAt, !prev.StartsAt.Equal(curr.StartsAt))
	add(fieldEndsAt, !prev.EndsAt.Equal(curr.EndsAt))
	add(fieldVenue, prev.Venue != curr.Venue)
	add(fieldAddress1, prev.Address1 != curr.Address1)
	add(fieldCity, prev.City != curr.City)
	add(fieldState, prev.State != curr.State)
	add(fieldDescription, prev.Description != curr.Description)
	add(fieldStatus, prev.Status != curr.Status)
	add(fieldSpecial, prev.Special != curr.Special)
	return cs
}

// studentNotifiedFields are the student fields whose change warrants a
// student_profile_updated notification.
var studentNotifiedFields = []string{
	fieldFirstName, fieldLastName, fieldGrade, fieldFavoritePokemon,
}

// StudentChanges diffs two student snapshots.
func StudentChanges(prev, curr Student) ChangeSet {
	var cs ChangeSet
	add := func(field string, changed bool) {
		if changed {
			cs = append(cs, field)
		}
	}
	add(fieldFirstName, prev.FirstName != curr.FirstName)
	add(fieldLastName, prev.LastName != curr.LastName)
	add(fieldGrade, prev.Grade != curr.Grade)
	add(fieldFavoritePokemon, prev.FavoritePokemon != curr.FavoritePokemon)
	return cs
}

// UserChanges diffs two user snapshots. Timestamp bookkeeping is not part of
// the snapshot, so every reported change is notification-worthy.
func UserChanges(prev, curr User) ChangeSet {
	var cs ChangeSet
	add := func(field string, changed bool) {
		if changed {
			cs = append(cs, field)
		}
	}
	add(fieldFirstName, prev.FirstName != curr.FirstName)
	add(fieldLastName, prev.LastName != curr.LastName)
	add(fieldEmailAddress, prev.EmailAddress != curr.EmailAddress)
	add(fieldRole, prev.Role != curr.Role)
	return cs
}
