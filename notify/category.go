package notify

// Category identifies one notification type. Each category has a fixed
// recipient-resolution rule, a fixed rendering template, and a fixed delivery
// mode. The set is closed: form payloads and queue payloads carrying any
// other value are rejected, never silently dispatched.
type Category string

const (
	CategoryNewEvent                 Category = "new_event"
	CategoryEventCancelled           Category = "event_cancelled"
	CategoryEventUpdated             Category = "event_updated"
	CategoryStudentAttendanceUpdated Category = "student_attendance_updated"
	CategoryStudentLinked            Category = "student_linked"
	CategoryStudentUnlinked          Category = "student_unlinked"
	CategoryStudentProfileUpdated    Category = "student_profile_updated"
	CategoryNewParentLinked          Category = "new_parent_linked"
	CategoryParentUnlinked           Category = "parent_unlinked"
	CategoryUserProfileUpdated       Category = "user_profile_updated"
)

var allCategories = []Category{
	CategoryNewEvent,
	CategoryEventCancelled,
	CategoryEventUpdated,
	CategoryStudentAttendanceUpdated,
	CategoryStudentLinked,
	CategoryStudentUnlinked,
	CategoryStudentProfileUpdated,
	CategoryNewParentLinked,
	CategoryParentUnlinked,
	CategoryUserProfileUpdated,
}

// Categories returns every known category in a stable order. The returned
// slice is a copy and safe to mutate.
func Categories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range allCategories {
		if c == known {
			return true
		}
	}
	return false
}

// DeliveryMode selects how a category's notifications reach the transport.
type DeliveryMode int

const (
	// DeliverAsync queues the delivery for background execution.
	DeliverAsync DeliveryMode = iota
	// DeliverSync sends inline, in the request that caused the change.
	DeliverSync
)

// DeliveryMode returns the category's delivery mode. Categories about shared
// guardianship of a student deliver synchronously: the affected parents must
// learn about the change even if the background runner is down, so the send
// happens in-request with an async fallback on failure.
func (c Category) DeliveryMode() DeliveryMode {
	switch c {
	case CategoryStudentUnlinked, CategoryNewParentLinked, CategoryParentUnlinked:
		return DeliverSync
	default:
		return DeliverAsync
	}
}
