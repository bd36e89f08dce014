package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lakeclub/clubnotify/pkg/logger"
)

// Emitter is the host application's entry point. It owns the significance
// rules: callers report every save with before and after snapshots, and the
// emitter decides which saves are worth an email. Emitter methods never
// return errors; a notification must not roll back or fail the business
// write that triggered it, so failures are logged and dropped.
type Emitter struct {
	engine *Engine
	log    *slog.Logger
}

// NewEmitter creates an emitter over the given engine.
func NewEmitter(engine *Engine, log *slog.Logger) (*Emitter, error) {
	if engine == nil {
		return nil, fmt.Errorf("emitter: %w", ErrNilDependency)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Emitter{engine: engine, log: log}, nil
}

// EventCreated reports a newly created event. Drafts stay silent; only an
// event born published announces itself. An event created as a draft and
// published later never sends a new-event notice.
func (e *Emitter) EventCreated(ctx context.Context, ev Event) {
	if ev.Status != EventStatusPublished {
		return
	}
	e.dispatch(ctx, EventPublished{Event: ev})
}

// EventUpdated reports an event save with before and after snapshots.
// A transition to canceled wins over everything else, even when other fields
// changed in the same save, and fires regardless of current published state.
// Otherwise only published events with a change to a notified field send
// anything.
func (e *Emitter) EventUpdated(ctx context.Context, prev, curr Event) {
	changed := EventChanges(prev, curr)
	if changed.Empty() {
		return
	}
	if prev.Status != EventStatusCanceled && curr.Status == EventStatusCanceled {
		e.dispatch(ctx, EventCancelled{Event: curr})
		return
	}
	if curr.Status != EventStatusPublished {
		return
	}
	significant := changed.Intersect(eventNotifiedFields...)
	if significant.Empty() {
		return
	}
	e.dispatch(ctx, EventUpdated{Event: curr, Changed: significant})
}

// StudentUpdated reports a student save with before and after snapshots.
func (e *Emitter) StudentUpdated(ctx context.Context, prev, curr Student) {
	significant := StudentChanges(prev, curr).Intersect(studentNotifiedFields...)
	if significant.Empty() {
		return
	}
	e.dispatch(ctx, StudentProfileUpdated{Student: curr, Changed: significant})
}

// AttendanceSaved reports an attendance create or update. Every save
// notifies; re-marking the same status is still a fresh notice.
func (e *Emitter) AttendanceSaved(ctx context.Context, att Attendance, st Student, ev Event) {
	e.dispatch(ctx, AttendanceMarked{Attendance: att, Student: st, Event: ev})
}

// StudentLinked reports a new parent-student link. The linked parent is told
// about their new student, and the student's other parents are told about
// the new parent.
func (e *Emitter) StudentLinked(ctx context.Context, u User, st Student) {
	e.dispatch(ctx, StudentLinked{User: u, Student: st})
	e.dispatch(ctx, NewParentLinked{Student: st, NewParent: u})
}

// StudentUnlinked reports a removed parent-student link. Call it BEFORE
// deleting the link row: recipient resolution for the remaining parents
// reads the link table and excludes the departing parent itself.
func (e *Emitter) StudentUnlinked(ctx context.Context, u User, st Student) {
	e.dispatch(ctx, StudentUnlinked{User: u, Student: st})
	e.dispatch(ctx, ParentUnlinked{Student: st, UnlinkedParent: u})
}

// UserUpdated reports a user profile save. actingUser is whoever performed
// the edit; pass nil for system-initiated changes. Edits by an admin other
// than the user themselves are flagged as administrative in the email.
func (e *Emitter) UserUpdated(ctx context.Context, prev, curr User, actingUser *User) {
	changed := UserChanges(prev, curr)
	if changed.Empty() {
		return
	}
	n := UserProfileUpdated{User: curr, Changed: changed}
	if actingUser != nil && actingUser.ID != curr.ID && actingUser.AdminLevel() {
		n.ByAdmin = true
		n.Admin = actingUser
	}
	e.dispatch(ctx, n)
}

func (e *Emitter) dispatch(ctx context.Context, n Notice) {
	if err := e.engine.Dispatch(ctx, n); err != nil {
		e.log.ErrorContext(ctx, "notification dispatch failed",
			logger.Error(err), logger.Category(string(n.Category())))
	}
}
