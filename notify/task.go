package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/lakeclub/clubnotify/pkg/logger"
	"github.com/lakeclub/clubnotify/pkg/queue"
)

// DeliveryTask is the queued form of a notice. It carries record IDs rather
// than snapshots, so the handler re-reads current state at delivery time.
// RecipientID narrows the task to a single recipient; when empty the handler
// fans out to the full audience.
type DeliveryTask struct {
	Category      Category  `json:"category"`
	EventID       string    `json:"event_id,omitempty"`
	StudentID     string    `json:"student_id,omitempty"`
	UserID        string    `json:"user_id,omitempty"`
	AttendanceID  string    `json:"attendance_id,omitempty"`
	AdminUserID   string    `json:"admin_user_id,omitempty"`
	RecipientID   string    `json:"recipient_id,omitempty"`
	ChangedFields ChangeSet `json:"changed_fields,omitempty"`
	ByAdmin       bool      `json:"by_admin,omitempty"`
}

// taskForNotice flattens a notice into its queued form.
func taskForNotice(n Notice) DeliveryTask {
	t := DeliveryTask{Category: n.Category()}
	switch v := n.(type) {
	case EventPublished:
		t.EventID = v.Event.ID
	case EventCancelled:
		t.EventID = v.Event.ID
	case EventUpdated:
		t.EventID = v.Event.ID
		t.ChangedFields = v.Changed
	case AttendanceMarked:
		t.AttendanceID = v.Attendance.ID
		t.StudentID = v.Student.ID
		t.EventID = v.Event.ID
	case StudentLinked:
		t.UserID = v.User.ID
		t.StudentID = v.Student.ID
	case StudentUnlinked:
		t.UserID = v.User.ID
		t.StudentID = v.Student.ID
	case NewParentLinked:
		t.StudentID = v.Student.ID
		t.UserID = v.NewParent.ID
	case ParentUnlinked:
		t.StudentID = v.Student.ID
		t.UserID = v.UnlinkedParent.ID
	case StudentProfileUpdated:
		t.StudentID = v.Student.ID
		t.ChangedFields = v.Changed
	case UserProfileUpdated:
		t.UserID = v.User.ID
		t.ChangedFields = v.Changed
		t.ByAdmin = v.ByAdmin
		if v.Admin != nil {
			t.AdminUserID = v.Admin.ID
		}
	}
	return t
}

// noticeFromTask rebuilds a notice from queued IDs. Missing records surface
// as ErrNotFound so the handler can drop the task instead of retrying it.
func noticeFromTask(ctx context.Context, loader Loader, t DeliveryTask) (Notice, error) {
	switch t.Category {
	case CategoryNewEvent, CategoryEventCancelled, CategoryEventUpdated:
		ev, err := loader.Event(ctx, t.EventID)
		if err != nil {
			return nil, err
		}
		switch t.Category {
		case CategoryNewEvent:
			return EventPublished{Event: ev}, nil
		case CategoryEventCancelled:
			return EventCancelled{Event: ev}, nil
		default:
			return EventUpdated{Event: ev, Changed: t.ChangedFields}, nil
		}
	case CategoryStudentAttendanceUpdated:
		att, err := loader.Attendance(ctx, t.AttendanceID)
		if err != nil {
			return nil, err
		}
		st, err := loader.Student(ctx, att.StudentID)
		if err != nil {
			return nil, err
		}
		ev, err := loader.Event(ctx, att.EventID)
		if err != nil {
			return nil, err
		}
		return AttendanceMarked{Attendance: att, Student: st, Event: ev}, nil
	case CategoryStudentLinked, CategoryStudentUnlinked:
		u, err := loader.User(ctx, t.UserID)
		if err != nil {
			return nil, err
		}
		st, err := loader.Student(ctx, t.StudentID)
		if err != nil {
			return nil, err
		}
		if t.Category == CategoryStudentLinked {
			return StudentLinked{User: u, Student: st}, nil
		}
		return StudentUnlinked{User: u, Student: st}, nil
	case CategoryNewParentLinked, CategoryParentUnlinked:
		st, err := loader.Student(ctx, t.StudentID)
		if err != nil {
			return nil, err
		}
		u, err := loader.User(ctx, t.UserID)
		if err != nil {
			return nil, err
		}
		if t.Category == CategoryNewParentLinked {
			return NewParentLinked{Student: st, NewParent: u}, nil
		}
		return ParentUnlinked{Student: st, UnlinkedParent: u}, nil
	case CategoryStudentProfileUpdated:
		st, err := loader.Student(ctx, t.StudentID)
		if err != nil {
			return nil, err
		}
		return StudentProfileUpdated{Student: st, Changed: t.ChangedFields}, nil
	case CategoryUserProfileUpdated:
		u, err := loader.User(ctx, t.UserID)
		if err != nil {
			return nil, err
		}
		n := UserProfileUpdated{User: u, Changed: t.ChangedFields, ByAdmin: t.ByAdmin}
		if t.AdminUserID != "" {
			admin, err := loader.User(ctx, t.AdminUserID)
			if err == nil {
				n.Admin = &admin
			} else if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
		}
		return n, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, t.Category)
	}
}

// HandleDeliveryTask processes one queued delivery. Stale tasks, ones whose
// subject record or recipient has since disappeared, complete without error
// so the queue does not retry work that can never succeed. Transport errors
// propagate so the queue retries them.
func (e *Engine) HandleDeliveryTask(ctx context.Context, t DeliveryTask) error {
	if !t.Category.Valid() {
		e.log.ErrorContext(ctx, "dropping delivery task with unknown category",
			logger.Category(string(t.Category)))
		return nil
	}

	n, err := noticeFromTask(ctx, e.loader, t)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			e.log.InfoContext(ctx, "dropping delivery task, record gone",
				logger.Error(err), logger.Category(string(t.Category)))
			return nil
		}
		return fmt.Errorf("load notice: %w", err)
	}

	if t.RecipientID != "" {
		return e.deliverToRecipient(ctx, n, t.RecipientID)
	}

	recipients, err := e.dispatcher.Recipients(ctx, n)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}
	var errs []error
	for _, rcpt := range recipients {
		if err := e.deliver(ctx, n, rcpt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// deliverToRecipient re-checks the recipient's status and preference before
// sending, since they may have changed while the task sat in the queue.
func (e *Engine) deliverToRecipient(ctx context.Context, n Notice, recipientID string) error {
	rcpt, err := e.loader.User(ctx, recipientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			e.log.InfoContext(ctx, "dropping delivery task, recipient gone",
				logger.UserID(recipientID))
			return nil
		}
		return fmt.Errorf("load recipient: %w", err)
	}
	if !rcpt.Active() {
		return nil
	}
	enabled, err := e.store.IsEnabled(ctx, rcpt.ID, n.Category())
	if err != nil {
		return fmt.Errorf("check subscription: %w", err)
	}
	if !enabled {
		return nil
	}
	return e.deliver(ctx, n, rcpt)
}

// TaskHandler wraps the engine for queue worker registration.
func (e *Engine) TaskHandler() queue.Handler {
	return queue.NewTaskHandler(e.HandleDeliveryTask)
}
