package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lakeclub/clubnotify/pkg/logger"
)

// Dispatcher resolves the recipient set for a notice: the notice's audience,
// narrowed to active users who have the category enabled.
type Dispatcher struct {
	store     SubscriptionStore
	directory Directory
	log       *slog.Logger
}

// NewDispatcher creates a dispatcher over the given store and directory.
func NewDispatcher(store SubscriptionStore, directory Directory, log *slog.Logger) (*Dispatcher, error) {
	if store == nil || directory == nil {
		return nil, fmt.Errorf("dispatcher: %w", ErrNilDependency)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{store: store, directory: directory, log: log}, nil
}

// Recipients returns the users who should receive the notice. Subscription
// lookups that fail skip that user rather than aborting the whole fan-out.
func (d *Dispatcher) Recipients(ctx context.Context, n Notice) ([]User, error) {
	audience, err := d.audience(ctx, n)
	if err != nil {
		return nil, err
	}

	category := n.Category()
	var out []User
	for _, u := range audience {
		if !u.Active() {
			continue
		}
		enabled, err := d.store.IsEnabled(ctx, u.ID, category)
		if err != nil {
			d.log.ErrorContext(ctx, "subscription lookup failed, skipping recipient",
				logger.Error(err), logger.UserID(u.ID), logger.Category(string(category)))
			continue
		}
		if enabled {
			out = append(out, u)
		}
	}
	return out, nil
}

// audience returns the unfiltered user set a notice addresses.
func (d *Dispatcher) audience(ctx context.Context, n Notice) ([]User, error) {
	switch v := n.(type) {
	case EventPublished, EventCancelled, EventUpdated:
		return d.directory.ActiveUsers(ctx)
	case StudentLinked:
		return []User{v.User}, nil
	case StudentUnlinked:
		return []User{v.User}, nil
	case NewParentLinked:
		return d.parentsExcluding(ctx, v.Student.ID, v.NewParent.ID)
	case ParentUnlinked:
		// Callers emit before the link row is removed, so the departing
		// parent is still present and must be filtered out here.
		return d.parentsExcluding(ctx, v.Student.ID, v.UnlinkedParent.ID)
	case AttendanceMarked:
		return d.directory.StudentParents(ctx, v.Student.ID)
	case StudentProfileUpdated:
		return d.directory.StudentParents(ctx, v.Student.ID)
	case UserProfileUpdated:
		return []User{v.User}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidNotice, n)
	}
}

func (d *Dispatcher) parentsExcluding(ctx context.Context, studentID, excludeUserID string) ([]User, error) {
	parents, err := d.directory.StudentParents(ctx, studentID)
	if err != nil {
		return nil, err
	}
	out := parents[:0]
	for _, u := range parents {
		if u.ID != excludeUserID {
			out = append(out, u)
		}
	}
	return out, nil
}
