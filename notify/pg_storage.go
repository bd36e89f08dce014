package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgSubscriptionStore persists subscriptions in the email_subscriptions
// table. Rows are unique per (user_id, category).
type PgSubscriptionStore struct {
	pool *pgxpool.Pool
}

// NewPgSubscriptionStore creates a store backed by the given pool.
func NewPgSubscriptionStore(pool *pgxpool.Pool) (*PgSubscriptionStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pg subscription store: %w", ErrNilDependency)
	}
	return &PgSubscriptionStore{pool: pool}, nil
}

func (s *PgSubscriptionStore) IsEnabled(ctx context.Context, userID string, category Category) (bool, error) {
	if !category.Valid() {
		return false, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	var enabled bool
	err := s.pool.QueryRow(ctx,
		`SELECT enabled FROM email_subscriptions WHERE user_id = $1 AND category = $2`,
		userID, string(category),
	).Scan(&enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query subscription: %w", err)
	}
	return enabled, nil
}

func (s *PgSubscriptionStore) SetEnabled(ctx context.Context, userID string, category Category, enabled bool) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO email_subscriptions (user_id, category, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (user_id, category)
		DO UPDATE SET enabled = EXCLUDED.enabled, updated_at = now()
		WHERE email_subscriptions.enabled IS DISTINCT FROM EXCLUDED.enabled`,
		userID, string(category), enabled,
	)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func (s *PgSubscriptionStore) EnsureDefaults(ctx context.Context, userID string) error {
	for _, c := range Categories() {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO email_subscriptions (user_id, category, enabled, created_at, updated_at)
			VALUES ($1, $2, TRUE, now(), now())
			ON CONFLICT (user_id, category) DO NOTHING`,
			userID, string(c),
		)
		if err != nil {
			return fmt.Errorf("ensure default %s: %w", c, err)
		}
	}
	return nil
}

func (s *PgSubscriptionStore) DisableAll(ctx context.Context, userID string) error {
	if err := s.EnsureDefaults(ctx, userID); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE email_subscriptions
		SET enabled = FALSE, updated_at = now()
		WHERE user_id = $1 AND enabled`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("disable subscriptions: %w", err)
	}
	return nil
}

func (s *PgSubscriptionStore) List(ctx context.Context, userID string) ([]Subscription, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, category, enabled, created_at, updated_at
		FROM email_subscriptions
		WHERE user_id = $1
		ORDER BY category`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []Subscription
	for rows.Next() {
		var sub Subscription
		var category string
		if err := rows.Scan(&sub.UserID, &category, &sub.Enabled, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		sub.Category = Category(category)
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return out, nil
}

// PgDirectory reads the host application's membership tables. It implements
// both Directory and Loader and never writes.
type PgDirectory struct {
	pool *pgxpool.Pool
}

// NewPgDirectory creates a read-only directory over the given pool.
func NewPgDirectory(pool *pgxpool.Pool) (*PgDirectory, error) {
	if pool == nil {
		return nil, fmt.Errorf("pg directory: %w", ErrNilDependency)
	}
	return &PgDirectory{pool: pool}, nil
}

const userColumns = `id::text, email_address, first_name, last_name, role, status`

func scanUser(row pgx.Row) (User, error) {
	var u User
	var role, status string
	if err := row.Scan(&u.ID, &u.EmailAddress, &u.FirstName, &u.LastName, &role, &status); err != nil {
		return User{}, err
	}
	u.Role = UserRole(role)
	u.Status = UserStatus(status)
	return u, nil
}

func (d *PgDirectory) ActiveUsers(ctx context.Context) ([]User, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE status = 'active' ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query active users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query active users: %w", err)
	}
	return out, nil
}

func (d *PgDirectory) StudentParents(ctx context.Context, studentID string) ([]User, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT u.id::text, u.email_address, u.first_name, u.last_name, u.role, u.status
		FROM users u
		JOIN user_students us ON us.user_id = u.id
		WHERE us.student_id = $1
		ORDER BY us.created_at`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("query student parents: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query student parents: %w", err)
	}
	return out, nil
}

func (d *PgDirectory) User(ctx context.Context, id string) (User, error) {
	u, err := scanUser(d.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

func (d *PgDirectory) Student(ctx context.Context, id string) (Student, error) {
	var st Student
	err := d.pool.QueryRow(ctx, `
		SELECT id::text, first_name, last_name, grade, favorite_pokemon
		FROM students WHERE id = $1`, id,
	).Scan(&st.ID, &st.FirstName, &st.LastName, &st.Grade, &st.FavoritePokemon)
	if errors.Is(err, pgx.ErrNoRows) {
		return Student{}, fmt.Errorf("student %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Student{}, fmt.Errorf("query student: %w", err)
	}
	return st, nil
}

func (d *PgDirectory) Event(ctx context.Context, id string) (Event, error) {
	var ev Event
	var status string
	err := d.pool.QueryRow(ctx, `
		SELECT id::text, title, status, starts_at, ends_at,
		       venue, address1, city, state, description, special
		FROM events WHERE id = $1`, id,
	).Scan(&ev.ID, &ev.Title, &status, &ev.StartsAt, &ev.EndsAt,
		&ev.Venue, &ev.Address1, &ev.City, &ev.State, &ev.Description, &ev.Special)
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Event{}, fmt.Errorf("query event: %w", err)
	}
	ev.Status = EventStatus(status)
	return ev, nil
}

func (d *PgDirectory) Attendance(ctx context.Context, id string) (Attendance, error) {
	var att Attendance
	err := d.pool.QueryRow(ctx, `
		SELECT id::text, event_id::text, student_id::text, present, marked_at, marked_by_id::text
		FROM attendances WHERE id = $1`, id,
	).Scan(&att.ID, &att.EventID, &att.StudentID, &att.Present, &att.MarkedAt, &att.MarkedByID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Attendance{}, fmt.Errorf("attendance %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Attendance{}, fmt.Errorf("query attendance: %w", err)
	}
	return att, nil
}
