// Package postgres provides the PostgreSQL implementation of the catalog repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressops/kiosk/internal/catalog"
	"github.com/pressops/kiosk/internal/domain"
)

// Repository implements the catalog.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateMagazine inserts a new magazine.
func (r *Repository) CreateMagazine(ctx context.Context, magazine *domain.Magazine) error {
	query := `
		INSERT INTO magazines (name, image, price)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		magazine.Name,
		magazine.Image,
		magazine.Price,
	).Scan(&magazine.ID, &magazine.CreatedAt, &magazine.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create magazine: %w", err)
	}
	return nil
}

// GetMagazineByID retrieves a magazine by its ID, soft-deleted included.
func (r *Repository) GetMagazineByID(ctx context.Context, id string) (*domain.Magazine, error) {
	query := `
		SELECT id, name, image, price, created_at, updated_at, deleted_at
		FROM magazines
		WHERE id = $1
	`
	var magazine domain.Magazine
	err := r.db.QueryRow(ctx, query, id).Scan(
		&magazine.ID,
		&magazine.Name,
		&magazine.Image,
		&magazine.Price,
		&magazine.CreatedAt,
		&magazine.UpdatedAt,
		&magazine.DeletedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrMagazineNotFound
		}
		return nil, fmt.Errorf("get magazine by id: %w", err)
	}

	return &magazine, nil
}

// ListMagazines retrieves magazines ordered by name.
func (r *Repository) ListMagazines(ctx context.Context, filter catalog.MagazineFilter) ([]domain.Magazine, error) {
	query := `
		SELECT id, name, image, price, created_at, updated_at, deleted_at
		FROM magazines
	`

	if !filter.IncludeDeleted {
		query += " WHERE deleted_at IS NULL"
	}

	query += " ORDER BY name, id"

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list magazines: %w", err)
	}
	defer rows.Close()

	magazines := make([]domain.Magazine, 0)
	for rows.Next() {
		var magazine domain.Magazine
		err := rows.Scan(
			&magazine.ID,
			&magazine.Name,
			&magazine.Image,
			&magazine.Price,
			&magazine.CreatedAt,
			&magazine.UpdatedAt,
			&magazine.DeletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan magazine: %w", err)
		}
		magazines = append(magazines, magazine)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate magazines: %w", err)
	}

	return magazines, nil
}

// UpdateMagazine updates an existing magazine.
func (r *Repository) UpdateMagazine(ctx context.Context, magazine *domain.Magazine) error {
	query := `
		UPDATE magazines
		SET name = $2, image = $3, price = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		magazine.ID,
		magazine.Name,
		magazine.Image,
		magazine.Price,
	).Scan(&magazine.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.ErrMagazineNotFound
		}
		return fmt.Errorf("update magazine: %w", err)
	}
	return nil
}

// DeleteMagazine soft-deletes a magazine by setting deleted_at.
func (r *Repository) DeleteMagazine(ctx context.Context, id string) error {
	query := `UPDATE magazines SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete magazine: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Check if not found or already deleted
		var deletedAt *string
		err := r.db.QueryRow(ctx, `SELECT deleted_at::text FROM magazines WHERE id = $1`, id).Scan(&deletedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return catalog.ErrMagazineNotFound
			}
			return fmt.Errorf("check magazine exists: %w", err)
		}
		if deletedAt != nil {
			return catalog.ErrAlreadyDeleted
		}
		return catalog.ErrMagazineNotFound
	}
	return nil
}

// RestoreMagazine restores a soft-deleted magazine by clearing deleted_at.
func (r *Repository) RestoreMagazine(ctx context.Context, id string) error {
	query := `UPDATE magazines SET deleted_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("restore magazine: %w", err)
	}
	if result.RowsAffected() == 0 {
		var deletedAt *string
		err := r.db.QueryRow(ctx, `SELECT deleted_at::text FROM magazines WHERE id = $1`, id).Scan(&deletedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return catalog.ErrMagazineNotFound
			}
			return fmt.Errorf("check magazine exists: %w", err)
		}
		if deletedAt == nil {
			return catalog.ErrNotDeleted
		}
		return catalog.ErrMagazineNotFound
	}
	return nil
}
