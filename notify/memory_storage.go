package notify

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// MemorySubscriptionStore keeps subscriptions in process memory. It backs
// tests and single-node development runs.
type MemorySubscriptionStore struct {
	mu   sync.RWMutex
	subs map[string]map[Category]*Subscription
}

// NewMemorySubscriptionStore creates an empty in-memory store.
func NewMemorySubscriptionStore() *MemorySubscriptionStore {
	return &MemorySubscriptionStore{subs: make(map[string]map[Category]*Subscription)}
}

func (s *MemorySubscriptionStore) IsEnabled(_ context.Context, userID string, category Category) (bool, error) {
	if !category.Valid() {
		return false, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[userID][category]
	if !ok {
		return false, nil
	}
	return sub.Enabled, nil
}

func (s *MemorySubscriptionStore) SetEnabled(_ context.Context, userID string, category Category, enabled bool) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(userID, category, enabled)
	return nil
}

func (s *MemorySubscriptionStore) EnsureDefaults(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range Categories() {
		if _, ok := s.subs[userID][c]; !ok {
			s.upsertLocked(userID, c, true)
		}
	}
	return nil
}

func (s *MemorySubscriptionStore) DisableAll(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range Categories() {
		s.upsertLocked(userID, c, false)
	}
	return nil
}

func (s *MemorySubscriptionStore) List(_ context.Context, userID string) ([]Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Subscription, 0, len(s.subs[userID]))
	for _, sub := range s.subs[userID] {
		out = append(out, *sub)
	}
	slices.SortFunc(out, func(a, b Subscription) int {
		if a.Category < b.Category {
			return -1
		}
		if a.Category > b.Category {
			return 1
		}
		return 0
	})
	return out, nil
}

// upsertLocked requires s.mu held for writing.
func (s *MemorySubscriptionStore) upsertLocked(userID string, category Category, enabled bool) {
	now := time.Now()
	if s.subs[userID] == nil {
		s.subs[userID] = make(map[Category]*Subscription)
	}
	if sub, ok := s.subs[userID][category]; ok {
		if sub.Enabled != enabled {
			sub.Enabled = enabled
			sub.UpdatedAt = now
		}
		return
	}
	s.subs[userID][category] = &Subscription{
		UserID:    userID,
		Category:  category,
		Enabled:   enabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MemoryDirectory is an in-memory membership graph implementing both
// Directory and Loader. Tests and development wiring use it in place of the
// Postgres-backed directory.
type MemoryDirectory struct {
	mu          sync.RWMutex
	users       map[string]User
	students    map[string]Student
	events      map[string]Event
	attendances map[string]Attendance
	links       map[string][]string // studentID -> parent user IDs, link order
}

// NewMemoryDirectory creates an empty directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		users:       make(map[string]User),
		students:    make(map[string]Student),
		events:      make(map[string]Event),
		attendances: make(map[string]Attendance),
		links:       make(map[string][]string),
	}
}

// AddUser stores or replaces a user record.
func (d *MemoryDirectory) AddUser(u User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

// AddStudent stores or replaces a student record.
func (d *MemoryDirectory) AddStudent(st Student) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.students[st.ID] = st
}

// AddEvent stores or replaces an event record.
func (d *MemoryDirectory) AddEvent(ev Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events[ev.ID] = ev
}

// AddAttendance stores or replaces an attendance record.
func (d *MemoryDirectory) AddAttendance(att Attendance) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attendances[att.ID] = att
}

// Link associates a parent user with a student. Linking twice is a no-op.
func (d *MemoryDirectory) Link(studentID, userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if slices.Contains(d.links[studentID], userID) {
		return
	}
	d.links[studentID] = append(d.links[studentID], userID)
}

// Unlink removes a parent-student association.
func (d *MemoryDirectory) Unlink(studentID, userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.links[studentID] = slices.DeleteFunc(d.links[studentID], func(id string) bool {
		return id == userID
	})
}

func (d *MemoryDirectory) ActiveUsers(_ context.Context) ([]User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []User
	for _, u := range d.users {
		if u.Active() {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, func(a, b User) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out, nil
}

func (d *MemoryDirectory) StudentParents(_ context.Context, studentID string) ([]User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []User
	for _, id := range d.links[studentID] {
		if u, ok := d.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (d *MemoryDirectory) User(_ context.Context, id string) (User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return u, nil
}

func (d *MemoryDirectory) Student(_ context.Context, id string) (Student, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	st, ok := d.students[id]
	if !ok {
		return Student{}, fmt.Errorf("student %s: %w", id, ErrNotFound)
	}
	return st, nil
}

func (d *MemoryDirectory) Event(_ context.Context, id string) (Event, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ev, ok := d.events[id]
	if !ok {
		return Event{}, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return ev, nil
}

func (d *MemoryDirectory) Attendance(_ context.Context, id string) (Attendance, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	att, ok := d.attendances[id]
	if !ok {
		return Attendance{}, fmt.Errorf("attendance %s: %w", id, ErrNotFound)
	}
	return att, nil
}
