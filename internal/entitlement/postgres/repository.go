// Package postgres provides the PostgreSQL implementation of the entitlement repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressops/kiosk/internal/domain"
	"github.com/pressops/kiosk/internal/entitlement"
)

// Repository implements the entitlement.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateSubscription inserts a new subscription row.
func (r *Repository) CreateSubscription(ctx context.Context, sub *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (user_id, magazine_id, valid_until)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		sub.UserID,
		sub.MagazineID,
		sub.ValidUntil,
	).Scan(&sub.ID, &sub.CreatedAt)

	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

// GetSubscriptionByID retrieves a subscription row, cancelled or not.
func (r *Repository) GetSubscriptionByID(ctx context.Context, id string) (*domain.Subscription, error) {
	query := `
		SELECT id, user_id, magazine_id, valid_until, created_at, cancelled_at
		FROM subscriptions
		WHERE id = $1
	`
	var sub domain.Subscription
	err := r.db.QueryRow(ctx, query, id).Scan(
		&sub.ID,
		&sub.UserID,
		&sub.MagazineID,
		&sub.ValidUntil,
		&sub.CreatedAt,
		&sub.CancelledAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entitlement.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("get subscription by id: %w", err)
	}

	return &sub, nil
}

// ListSubscriptions retrieves every subscription row, cancelled ones
// included, oldest first.
func (r *Repository) ListSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	query := `
		SELECT id, user_id, magazine_id, valid_until, created_at, cancelled_at
		FROM subscriptions
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		var sub domain.Subscription
		if err := rows.Scan(
			&sub.ID,
			&sub.UserID,
			&sub.MagazineID,
			&sub.ValidUntil,
			&sub.CreatedAt,
			&sub.CancelledAt,
		); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return subs, nil
}

// ListUserSubscriptions retrieves the user's subscription history with the
// user and magazine records joined in.
func (r *Repository) ListUserSubscriptions(ctx context.Context, userID string) ([]domain.Subscription, error) {
	query := `
		SELECT s.id, s.user_id, s.magazine_id, s.valid_until, s.created_at, s.cancelled_at,
		       u.id, u.name, u.email, u.role, u.created_at,
		       m.id, m.name, m.image, m.price, m.created_at, m.updated_at, m.deleted_at
		FROM subscriptions s
		JOIN users u ON u.id = s.user_id
		JOIN magazines m ON m.id = s.magazine_id
		WHERE s.user_id = $1
		ORDER BY s.created_at, s.id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list user subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		var (
			sub domain.Subscription
			u   domain.User
			m   domain.Magazine
		)
		if err := rows.Scan(
			&sub.ID,
			&sub.UserID,
			&sub.MagazineID,
			&sub.ValidUntil,
			&sub.CreatedAt,
			&sub.CancelledAt,
			&u.ID,
			&u.Name,
			&u.Email,
			&u.Role,
			&u.CreatedAt,
			&m.ID,
			&m.Name,
			&m.Image,
			&m.Price,
			&m.CreatedAt,
			&m.UpdatedAt,
			&m.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user subscription: %w", err)
		}
		sub.User = &u
		sub.Magazine = &m
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user subscriptions: %w", err)
	}
	return subs, nil
}

// CancelSubscription marks a single row cancelled. A zero rows-affected
// result is disambiguated into not-found versus already-cancelled.
func (r *Repository) CancelSubscription(ctx context.Context, id string) error {
	query := `
		UPDATE subscriptions
		SET cancelled_at = NOW()
		WHERE id = $1 AND cancelled_at IS NULL
	`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		err := r.db.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM subscriptions WHERE id = $1)`, id,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check subscription exists: %w", err)
		}
		if !exists {
			return entitlement.ErrSubscriptionNotFound
		}
		return entitlement.ErrAlreadyCancelled
	}

	return nil
}

// CancelPair marks every not-yet-cancelled row for the user and magazine in
// one statement. Already-cancelled rows keep their original timestamp.
func (r *Repository) CancelPair(ctx context.Context, userID, magazineID string) (int64, error) {
	query := `
		UPDATE subscriptions
		SET cancelled_at = NOW()
		WHERE user_id = $1 AND magazine_id = $2 AND cancelled_at IS NULL
	`
	result, err := r.db.Exec(ctx, query, userID, magazineID)
	if err != nil {
		return 0, fmt.Errorf("cancel subscriptions for pair: %w", err)
	}

	return result.RowsAffected(), nil
}

// ListMagazinesWithEntitlement returns every non-deleted magazine with the
// entitled flag computed in a single query. The comparison is strict, so a
// subscription valid until exactly now does not entitle.
func (r *Repository) ListMagazinesWithEntitlement(ctx context.Context, userID string, now time.Time) ([]domain.MagazineWithEntitlement, error) {
	query := `
		SELECT m.id, m.name, m.image, m.price,
		       EXISTS (
		           SELECT 1 FROM subscriptions s
		           WHERE s.magazine_id = m.id
		             AND s.user_id = $1
		             AND s.cancelled_at IS NULL
		             AND s.valid_until > $2
		       ) AS entitled
		FROM magazines m
		WHERE m.deleted_at IS NULL
		ORDER BY m.name, m.id
	`
	rows, err := r.db.Query(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("list magazines with entitlement: %w", err)
	}
	defer rows.Close()

	var entries []domain.MagazineWithEntitlement
	for rows.Next() {
		var e domain.MagazineWithEntitlement
		if err := rows.Scan(
			&e.MagazineID,
			&e.Name,
			&e.Image,
			&e.Price,
			&e.Entitled,
		); err != nil {
			return nil, fmt.Errorf("scan newsstand entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate newsstand entries: %w", err)
	}
	return entries, nil
}
