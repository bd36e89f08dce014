package notify

import (
	"context"
	"strings"
	"time"
)

// UserRole mirrors the host application's role enum.
type UserRole string

const (
	UserRoleMember UserRole = "user"
	UserRoleAdmin  UserRole = "admin"
)

// UserStatus mirrors the host application's account status enum.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// User is a snapshot of an account as the engine needs it: identity, address,
// and the two gates recipient filtering depends on (role, status).
type User struct {
	ID           string     `json:"id"`
	EmailAddress string     `json:"email_address"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Role         UserRole   `json:"role"`
	Status       UserStatus `json:"status"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Active reports whether the account may receive notifications at all.
func (u User) Active() bool {
	return u.Status == UserStatusActive
}

// AdminLevel reports whether edits by this user count as administrator edits.
func (u User) AdminLevel() bool {
	return u.Role == UserRoleAdmin
}

// EventStatus mirrors the host application's event status enum.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCanceled  EventStatus = "canceled"
)

// Event is a snapshot of a club event.
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Status      EventStatus `json:"status"`
	StartsAt    time.Time   `json:"starts_at"`
	EndsAt      time.Time   `json:"ends_at"`
	Venue       string      `json:"venue"`
	Address1    string      `json:"address1"`
	City        string      `json:"city"`
	State       string      `json:"state"`
	Description string      `json:"description"`
	Special     bool        `json:"special"`
}

// Location joins venue and address parts for display in emails.
func (e Event) Location() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{e.Venue, e.Address1, e.City, e.State} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Student is a snapshot of a club member's child.
type Student struct {
	ID              string `json:"id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Grade           string `json:"grade"`
	FavoritePokemon string `json:"favorite_pokemon"`
}

func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Attendance is a snapshot of one student's attendance record for one event.
type Attendance struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	StudentID  string    `json:"student_id"`
	Present    bool      `json:"present"`
	MarkedAt   time.Time `json:"marked_at"`
	MarkedByID string    `json:"marked_by_id"`
}

// StatusLabel returns the human word used in emails.
func (a Attendance) StatusLabel() string {
	if a.Present {
		return "present"
	}
	return "absent"
}

// Directory answers the association queries recipient resolution needs. It is
// a read-only view over the host application's users and parent-student links.
type Directory interface {
	// ActiveUsers returns every user with an active account.
	ActiveUsers(ctx context.Context) ([]User, error)

	// StudentParents returns the users currently linked to the student.
	StudentParents(ctx context.Context, studentID string) ([]User, error)
}

// Loader resolves records by ID for deliveries executing in the background,
// where only primitive IDs cross the queue boundary. Implementations return
// ErrNotFound for records that no longer exist.
type Loader interface {
	User(ctx context.Context, id string) (User, error)
	Student(ctx context.Context, id string) (Student, error)
	Event(ctx context.Context, id string) (Event, error)
	Attendance(ctx context.Context, id string) (Attendance, error)
}
