package catalog

import (
	"context"
	"testing"

	"github.com/pressops/kiosk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	magazines map[string]*domain.Magazine
	nextID    int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		magazines: make(map[string]*domain.Magazine),
		nextID:    1,
	}
}

func (m *mockRepository) CreateMagazine(_ context.Context, magazine *domain.Magazine) error {
	magazine.ID = "magazine-" + string(rune('0'+m.nextID))
	m.nextID++
	m.magazines[magazine.ID] = magazine
	return nil
}

func (m *mockRepository) GetMagazineByID(_ context.Context, id string) (*domain.Magazine, error) {
	if mag, ok := m.magazines[id]; ok {
		return mag, nil
	}
	return nil, ErrMagazineNotFound
}

func (m *mockRepository) ListMagazines(_ context.Context, filter MagazineFilter) ([]domain.Magazine, error) {
	result := make([]domain.Magazine, 0)
	for _, mag := range m.magazines {
		if !filter.IncludeDeleted && mag.DeletedAt != nil {
			continue
		}
		result = append(result, *mag)
	}
	return result, nil
}

func (m *mockRepository) UpdateMagazine(_ context.Context, magazine *domain.Magazine) error {
	if _, ok := m.magazines[magazine.ID]; !ok {
		return ErrMagazineNotFound
	}
	m.magazines[magazine.ID] = magazine
	return nil
}

func (m *mockRepository) DeleteMagazine(_ context.Context, id string) error {
	mag, ok := m.magazines[id]
	if !ok {
		return ErrMagazineNotFound
	}
	if mag.DeletedAt != nil {
		return ErrAlreadyDeleted
	}
	now := mag.CreatedAt
	mag.DeletedAt = &now
	return nil
}

func (m *mockRepository) RestoreMagazine(_ context.Context, id string) error {
	mag, ok := m.magazines[id]
	if !ok {
		return ErrMagazineNotFound
	}
	if mag.DeletedAt == nil {
		return ErrNotDeleted
	}
	mag.DeletedAt = nil
	return nil
}

func TestDeleteMagazine_IsSoftDelete(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	magazine := &domain.Magazine{Name: "The Gopher Weekly", Price: 499}
	require.NoError(t, service.CreateMagazine(context.Background(), magazine))

	require.NoError(t, service.DeleteMagazine(context.Background(), magazine.ID))

	// Row stays resolvable by id for subscription history.
	got, err := service.GetMagazineByID(context.Background(), magazine.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())

	// But the default listing excludes it.
	listed, err := service.ListMagazines(context.Background(), MagazineFilter{})
	require.NoError(t, err)
	assert.Empty(t, listed)

	listed, err = service.ListMagazines(context.Background(), MagazineFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestDeleteMagazine_AlreadyDeleted(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	magazine := &domain.Magazine{Name: "Monthly Misprint", Price: 250}
	require.NoError(t, service.CreateMagazine(context.Background(), magazine))
	require.NoError(t, service.DeleteMagazine(context.Background(), magazine.ID))

	err := service.DeleteMagazine(context.Background(), magazine.ID)
	assert.ErrorIs(t, err, ErrAlreadyDeleted)
}

func TestRestoreMagazine(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	magazine := &domain.Magazine{Name: "Restored Review", Price: 1000}
	require.NoError(t, service.CreateMagazine(context.Background(), magazine))

	err := service.RestoreMagazine(context.Background(), magazine.ID)
	assert.ErrorIs(t, err, ErrNotDeleted)

	require.NoError(t, service.DeleteMagazine(context.Background(), magazine.ID))
	require.NoError(t, service.RestoreMagazine(context.Background(), magazine.ID))

	got, err := service.GetMagazineByID(context.Background(), magazine.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDeleted())
}

func TestGetMagazineByID_NotFound(t *testing.T) {
	service := NewService(newMockRepository())

	_, err := service.GetMagazineByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrMagazineNotFound)
}
