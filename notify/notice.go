package notify

import (
	"fmt"
	"strings"
)

// Notice is one dispatchable domain occurrence: a category plus its strongly
// typed subject payload. The union is sealed by the unexported subjectKey
// method, so every category has exactly one subject shape and the compiler
// rejects payloads the renderer doesn't know how to handle.
type Notice interface {
	Category() Category

	// subjectKey returns a deterministic identifier for the notice's subject,
	// used to build delivery idempotency keys.
	subjectKey() string
}

// EventPublished announces a newly created, already-published event.
type EventPublished struct {
	Event Event
}

func (EventPublished) Category() Category { return CategoryNewEvent }
func (n EventPublished) subjectKey() string {
	return n.Event.ID
}

// EventCancelled announces an event whose status changed to canceled.
type EventCancelled struct {
	Event Event
}

func (EventCancelled) Category() Category { return CategoryEventCancelled }
func (n EventCancelled) subjectKey() string {
	return n.Event.ID
}

// EventUpdated announces significant edits to a published event.
type EventUpdated struct {
	Event   Event
	Changed ChangeSet
}

func (EventUpdated) Category() Category { return CategoryEventUpdated }
func (n EventUpdated) subjectKey() string {
	return n.Event.ID + ":" + n.Changed.fingerprint()
}

// AttendanceMarked announces a saved attendance record for a student/event pair.
type AttendanceMarked struct {
	Attendance Attendance
	Student    Student
	Event      Event
}

func (AttendanceMarked) Category() Category { return CategoryStudentAttendanceUpdated }
func (n AttendanceMarked) subjectKey() string {
	return n.Attendance.ID + ":" + n.Attendance.StatusLabel() + ":" + n.Attendance.MarkedAt.UTC().Format("20060102150405")
}

// StudentLinked tells a user a student was linked to their account.
type StudentLinked struct {
	User    User
	Student Student
}

func (StudentLinked) Category() Category { return CategoryStudentLinked }
func (n StudentLinked) subjectKey() string {
	return n.User.ID + ":" + n.Student.ID
}

// StudentUnlinked tells a user a student was removed from their account.
type StudentUnlinked struct {
	User    User
	Student Student
}

func (StudentUnlinked) Category() Category { return CategoryStudentUnlinked }
func (n StudentUnlinked) subjectKey() string {
	return n.User.ID + ":" + n.Student.ID
}

// NewParentLinked tells a student's existing parents that another parent was
// linked to the student.
type NewParentLinked struct {
	Student   Student
	NewParent User
}

func (NewParentLinked) Category() Category { return CategoryNewParentLinked }
func (n NewParentLinked) subjectKey() string {
	return n.Student.ID + ":" + n.NewParent.ID
}

// ParentUnlinked tells a student's remaining parents that a parent was
// removed from the student.
type ParentUnlinked struct {
	Student        Student
	UnlinkedParent User
}

func (ParentUnlinked) Category() Category { return CategoryParentUnlinked }
func (n ParentUnlinked) subjectKey() string {
	return n.Student.ID + ":" + n.UnlinkedParent.ID
}

// StudentProfileUpdated announces significant edits to a student's profile.
type StudentProfileUpdated struct {
	Student Student
	Changed ChangeSet
}

func (StudentProfileUpdated) Category() Category { return CategoryStudentProfileUpdated }
func (n StudentProfileUpdated) subjectKey() string {
	return n.Student.ID + ":" + n.Changed.fingerprint()
}

// UserProfileUpdated tells a user their own profile changed, with attribution
// when the edit was made by an administrator.
type UserProfileUpdated struct {
	User    User
	Changed ChangeSet
	ByAdmin bool
	Admin   *User
}

func (UserProfileUpdated) Category() Category { return CategoryUserProfileUpdated }
func (n UserProfileUpdated) subjectKey() string {
	return n.User.ID + ":" + n.Changed.fingerprint()
}

// validateNotice rejects notices whose required subject fields are missing
// before any recipient resolution or enqueueing happens.
func validateNotice(n Notice) error {
	if n == nil {
		return fmt.Errorf("%w: nil notice", ErrInvalidNotice)
	}

	var missing []string
	need := func(field, v string) {
		if v == "" {
			missing = append(missing, field)
		}
	}

	switch v := n.(type) {
	case EventPublished:
		need("event id", v.Event.ID)
	case EventCancelled:
		need("event id", v.Event.ID)
	case EventUpdated:
		need("event id", v.Event.ID)
	case AttendanceMarked:
		need("attendance id", v.Attendance.ID)
		need("student id", v.Student.ID)
		need("event id", v.Event.ID)
	case StudentLinked:
		need("user id", v.User.ID)
		need("student id", v.Student.ID)
	case StudentUnlinked:
		need("user id", v.User.ID)
		need("student id", v.Student.ID)
	case NewParentLinked:
		need("student id", v.Student.ID)
		need("new parent id", v.NewParent.ID)
	case ParentUnlinked:
		need("student id", v.Student.ID)
		need("unlinked parent id", v.UnlinkedParent.ID)
	case StudentProfileUpdated:
		need("student id", v.Student.ID)
	case UserProfileUpdated:
		need("user id", v.User.ID)
	default:
		return fmt.Errorf("%w: unsupported notice type %T", ErrInvalidNotice, n)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s (%s)", ErrMissingSubject, n.Category(), strings.Join(missing, ", "))
	}
	return nil
}
