package catalog

import (
	"context"

	"github.com/pressops/kiosk/internal/domain"
)

// Repository defines the interface for magazine data operations.
type Repository interface {
	CreateMagazine(ctx context.Context, magazine *domain.Magazine) error
	GetMagazineByID(ctx context.Context, id string) (*domain.Magazine, error)
	ListMagazines(ctx context.Context, filter MagazineFilter) ([]domain.Magazine, error)
	UpdateMagazine(ctx context.Context, magazine *domain.Magazine) error

	// Soft delete operations
	DeleteMagazine(ctx context.Context, id string) error
	RestoreMagazine(ctx context.Context, id string) error
}

// MagazineFilter represents filter criteria for listing magazines.
// Soft-deleted magazines are excluded unless IncludeDeleted is set.
type MagazineFilter struct {
	IncludeDeleted bool
}
