package entitlement

import (
	"context"
	"time"

	"github.com/pressops/kiosk/internal/domain"
)

// Repository defines the persistence contract for subscriptions.
type Repository interface {
	// CreateSubscription inserts a new subscription row and fills in
	// the generated id and created_at.
	CreateSubscription(ctx context.Context, sub *domain.Subscription) error

	// GetSubscriptionByID returns a single row, cancelled or not.
	GetSubscriptionByID(ctx context.Context, id string) (*domain.Subscription, error)

	// ListSubscriptions returns every row including cancelled ones,
	// ordered by creation time.
	ListSubscriptions(ctx context.Context) ([]domain.Subscription, error)

	// ListUserSubscriptions returns every row for the user including
	// cancelled ones, with the user and magazine records attached.
	ListUserSubscriptions(ctx context.Context, userID string) ([]domain.Subscription, error)

	// CancelSubscription marks a single row cancelled. Returns
	// ErrSubscriptionNotFound for an unknown id and ErrAlreadyCancelled
	// when the row is already marked.
	CancelSubscription(ctx context.Context, id string) error

	// CancelPair marks every not-yet-cancelled row for the user and
	// magazine in one statement and returns the number of rows affected.
	CancelPair(ctx context.Context, userID, magazineID string) (int64, error)

	// ListMagazinesWithEntitlement returns one entry per non-deleted
	// magazine with the entitled flag computed against now.
	ListMagazinesWithEntitlement(ctx context.Context, userID string, now time.Time) ([]domain.MagazineWithEntitlement, error)
}
