package favorites

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/city-explorer-api/internal/app/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Add(ctx context.Context, userID string, place models.Place) (*models.Favorite, error) {
	args := m.Called(ctx, userID, place)
	if fav := args.Get(0); fav != nil {
		return fav.(*models.Favorite), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) Remove(ctx context.Context, userID, placeID string) error {
	return m.Called(ctx, userID, placeID).Error(0)
}

func (m *MockRepository) IsFavorite(ctx context.Context, userID, placeID string) (bool, error) {
	args := m.Called(ctx, userID, placeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, userID string) ([]models.Favorite, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Favorite), args.Error(1)
}

func (m *MockRepository) ListFiltered(ctx context.Context, userID string, filter models.FavoritesFilter) ([]models.Favorite, int, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]models.Favorite), args.Int(1), args.Error(2)
}

func TestServiceAddAnonymousIsSilentNoop(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, zap.NewNop())

	fav, err := svc.Add(context.Background(), "anonymous", models.Place{ID: "p1", Name: "Kafe"})
	require.NoError(t, err)
	assert.Nil(t, fav)

	fav, err = svc.Add(context.Background(), "", models.Place{ID: "p1", Name: "Kafe"})
	require.NoError(t, err)
	assert.Nil(t, fav)

	// Persisted state stays untouched.
	repo.AssertNotCalled(t, "Add")
}

func TestServiceAddDelegates(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, zap.NewNop())

	place := models.Place{ID: "p1", Name: "Kafe", Category: "cafe"}
	repo.On("Add", mock.Anything, "user-1", place).Return(&models.Favorite{PlaceID: "p1"}, nil)

	fav, err := svc.Add(context.Background(), "user-1", place)
	require.NoError(t, err)
	assert.Equal(t, "p1", fav.PlaceID)
	repo.AssertExpectations(t)
}

func TestServiceRemoveAnonymousIsSilentNoop(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, zap.NewNop())

	require.NoError(t, svc.Remove(context.Background(), "anonymous", "p1"))
	repo.AssertNotCalled(t, "Remove")
}

func TestServiceReadsAreEmptyForAnonymous(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, zap.NewNop())

	list, err := svc.List(context.Background(), "anonymous")
	require.NoError(t, err)
	assert.Empty(t, list)

	exists, err := svc.IsFavorite(context.Background(), "", "p1")
	require.NoError(t, err)
	assert.False(t, exists)

	filtered, total, err := svc.ListFiltered(context.Background(), "anonymous", models.FavoritesFilter{})
	require.NoError(t, err)
	assert.Empty(t, filtered)
	assert.Zero(t, total)

	repo.AssertNotCalled(t, "List")
	repo.AssertNotCalled(t, "IsFavorite")
	repo.AssertNotCalled(t, "ListFiltered")
}

func TestServiceListDelegates(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, zap.NewNop())

	repo.On("List", mock.Anything, "user-1").Return([]models.Favorite{{PlaceID: "p1"}, {PlaceID: "p2"}}, nil)

	list, err := svc.List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	repo.AssertExpectations(t)
}
