package favorites

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/city-explorer-api/internal/app/models"
)

var favoriteColumns = []string{"id", "user_id", "place_id", "name", "lat", "lng", "category", "address", "rating", "created_at"}

func TestRepositoryAddUpsertsSnapshot(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	userID := uuid.New()
	favID := uuid.New()
	rating := 4.5
	address := "Moda Cad. 1"
	now := time.Now()

	mockPool.ExpectQuery(`INSERT INTO favorites`).
		WithArgs(userID.String(), "p1", "Kahve Deryası", 41.01, 28.98, "cafe", &address, &rating).
		WillReturnRows(pgxmock.NewRows(favoriteColumns).
			AddRow(favID, userID, "p1", "Kahve Deryası", 41.01, 28.98, "cafe", &address, &rating, now))

	repo := NewPostgresRepository(mockPool, zap.NewNop())
	fav, err := repo.Add(context.Background(), userID.String(), models.Place{
		ID: "p1", Name: "Kahve Deryası", Lat: 41.01, Lng: 28.98,
		Category: "cafe", Address: address, Rating: &rating,
	})

	require.NoError(t, err)
	assert.Equal(t, favID, fav.ID)
	assert.Equal(t, "p1", fav.PlaceID)
	require.NotNil(t, fav.Address)
	assert.Equal(t, address, *fav.Address)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRepositoryAddNullableFields(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	userID := uuid.New()

	mockPool.ExpectQuery(`INSERT INTO favorites`).
		WithArgs(userID.String(), "p2", "İsimsiz", 41.0, 29.0, "other", (*string)(nil), (*float64)(nil)).
		WillReturnRows(pgxmock.NewRows(favoriteColumns).
			AddRow(uuid.New(), userID, "p2", "İsimsiz", 41.0, 29.0, "other", (*string)(nil), (*float64)(nil), time.Now()))

	repo := NewPostgresRepository(mockPool, zap.NewNop())
	fav, err := repo.Add(context.Background(), userID.String(), models.Place{
		ID: "p2", Name: "İsimsiz", Lat: 41.0, Lng: 29.0, Category: "other",
	})

	require.NoError(t, err)
	assert.Nil(t, fav.Address)
	assert.Nil(t, fav.Rating)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRepositoryRemove(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	userID := uuid.New().String()

	mockPool.ExpectExec(`DELETE FROM favorites`).
		WithArgs(userID, "p1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := NewPostgresRepository(mockPool, zap.NewNop())
	require.NoError(t, repo.Remove(context.Background(), userID, "p1"))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRepositoryRemoveMissingReturnsNotFound(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	userID := uuid.New().String()

	mockPool.ExpectExec(`DELETE FROM favorites`).
		WithArgs(userID, "missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewPostgresRepository(mockPool, zap.NewNop())
	err = repo.Remove(context.Background(), userID, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRepositoryIsFavorite(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	userID := uuid.New().String()

	mockPool.ExpectQuery(`SELECT EXISTS`).
		WithArgs(userID, "p1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewPostgresRepository(mockPool, zap.NewNop())
	exists, err := repo.IsFavorite(context.Background(), userID, "p1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRepositoryListFilteredBuildsFilteredQuery(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	userID := uuid.New()

	mockPool.ExpectQuery(`SELECT COUNT\(\*\) FROM favorites`).
		WithArgs(userID.String(), "%kahve%", "%kahve%", "cafe").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mockPool.ExpectQuery(`SELECT id, user_id, place_id, name, lat, lng, category, address, rating, created_at FROM favorites`).
		WithArgs(userID.String(), "%kahve%", "%kahve%", "cafe").
		WillReturnRows(pgxmock.NewRows(favoriteColumns).
			AddRow(uuid.New(), userID, "p1", "Kahve Deryası", 41.01, 28.98, "cafe", (*string)(nil), (*float64)(nil), time.Now()))

	repo := NewPostgresRepository(mockPool, zap.NewNop())
	favorites, total, err := repo.ListFiltered(context.Background(), userID.String(), models.FavoritesFilter{
		SearchText: "kahve",
		Category:   "cafe",
		SortBy:     "name",
		SortOrder:  "asc",
		Limit:      10,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, favorites, 1)
	assert.Equal(t, "Kahve Deryası", favorites[0].Name)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
