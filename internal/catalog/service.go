// Package catalog provides HTTP handlers and business logic for the magazine catalog.
package catalog

import (
	"context"
	"errors"

	"github.com/pressops/kiosk/internal/domain"
)

// Catalog errors.
var (
	ErrMagazineNotFound = errors.New("magazine not found")
	ErrAlreadyDeleted   = errors.New("magazine already deleted")
	ErrNotDeleted       = errors.New("magazine is not deleted")
)

// Service implements catalog business logic.
type Service struct {
	repo Repository
}

// NewService creates a new catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateMagazine adds a magazine to the catalog.
func (s *Service) CreateMagazine(ctx context.Context, magazine *domain.Magazine) error {
	return s.repo.CreateMagazine(ctx, magazine)
}

// GetMagazineByID returns a magazine by id, soft-deleted included.
func (s *Service) GetMagazineByID(ctx context.Context, id string) (*domain.Magazine, error) {
	return s.repo.GetMagazineByID(ctx, id)
}

// ListMagazines returns magazines matching the filter.
func (s *Service) ListMagazines(ctx context.Context, filter MagazineFilter) ([]domain.Magazine, error) {
	return s.repo.ListMagazines(ctx, filter)
}

// UpdateMagazine updates a magazine's attributes.
func (s *Service) UpdateMagazine(ctx context.Context, magazine *domain.Magazine) error {
	return s.repo.UpdateMagazine(ctx, magazine)
}

// DeleteMagazine soft-deletes a magazine. The row is retained so that
// subscription history keeps resolving.
func (s *Service) DeleteMagazine(ctx context.Context, id string) error {
	return s.repo.DeleteMagazine(ctx, id)
}

// RestoreMagazine clears the soft-delete mark.
func (s *Service) RestoreMagazine(ctx context.Context, id string) error {
	return s.repo.RestoreMagazine(ctx, id)
}
