package notify

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// Subscription is one user's opt-in state for one notification category.
type Subscription struct {
	UserID    string
	Category  Category
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubscriptionStore persists per-user per-category email preferences.
//
// IsEnabled is fail-closed: a user with no row for a category is treated as
// unsubscribed, so a missing preference can never cause an unwanted email.
type SubscriptionStore interface {
	// IsEnabled reports whether the user has the category enabled.
	// Absent rows report false with no error.
	IsEnabled(ctx context.Context, userID string, category Category) (bool, error)
	// SetEnabled upserts the user's preference for the category.
	SetEnabled(ctx context.Context, userID string, category Category, enabled bool) error
	// EnsureDefaults creates an enabled subscription for every category the
	// user is missing. Existing rows are left untouched.
	EnsureDefaults(ctx context.Context, userID string) error
	// DisableAll ensures a row exists for every category and sets them all
	// to disabled.
	DisableAll(ctx context.Context, userID string) error
	// List returns the user's subscriptions ordered by category.
	List(ctx context.Context, userID string) ([]Subscription, error)
}

// ApplyPreferences writes the user's preference form in one shot: categories
// present in enabled are turned on, everything else is turned off. An empty
// slice disables all categories, which is what an unchecked form submits.
func ApplyPreferences(ctx context.Context, store SubscriptionStore, userID string, enabled []Category) error {
	if store == nil {
		return fmt.Errorf("apply preferences: %w", ErrNilDependency)
	}
	for _, c := range enabled {
		if !c.Valid() {
			return fmt.Errorf("apply preferences: %w: %s", ErrUnknownCategory, c)
		}
	}
	if len(enabled) == 0 {
		return store.DisableAll(ctx, userID)
	}
	if err := store.EnsureDefaults(ctx, userID); err != nil {
		return fmt.Errorf("apply preferences: %w", err)
	}
	for _, c := range Categories() {
		if err := store.SetEnabled(ctx, userID, c, slices.Contains(enabled, c)); err != nil {
			return fmt.Errorf("apply preferences: set %s: %w", c, err)
		}
	}
	return nil
}
