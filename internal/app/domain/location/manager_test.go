package location

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/city-explorer-api/internal/app/models"
)

type fakePlacesService struct {
	mu          sync.Mutex
	geocodeCall int
	blockFirst  bool
	nearby      []models.Place
}

func (f *fakePlacesService) Nearby(ctx context.Context, location models.Location, category string, radius, limit int) []models.Place {
	return f.nearby
}

func (f *fakePlacesService) Search(ctx context.Context, query string, location models.Location, limit int) []models.Place {
	return f.nearby
}

func (f *fakePlacesService) Route(ctx context.Context, start, end models.Location, mode string) *models.Route {
	return nil
}

func (f *fakePlacesService) MultiPointRoute(ctx context.Context, start models.Location, waypoints []models.Location, mode string) *models.Route {
	return nil
}

// ReverseGeocode optionally parks the first call until its context is
// canceled, so tests can interleave a newer update with a slow refresh.
func (f *fakePlacesService) ReverseGeocode(ctx context.Context, location models.Location) string {
	f.mu.Lock()
	f.geocodeCall++
	call := f.geocodeCall
	f.mu.Unlock()

	if f.blockFirst && call == 1 {
		<-ctx.Done()
		return "Eski Konum"
	}
	return "Yeni Konum"
}

type fakeWeatherAPI struct{}

func (fakeWeatherAPI) GetCurrentWeather(ctx context.Context, location models.Location) *models.WeatherData {
	return &models.WeatherData{Temp: 22, Description: "açık"}
}

var kadikoy = models.Location{Latitude: 40.9902, Longitude: 29.0270}

func TestGetUnknownSessionIsEmpty(t *testing.T) {
	m := NewManager(&fakePlacesService{}, fakeWeatherAPI{}, zap.NewNop())

	state := m.Get("session-1")
	assert.Equal(t, "session-1", state.SessionID)
	assert.Nil(t, state.UserLocation)
	assert.Empty(t, state.NearbyPlaces)
}

func TestUpdateReturnsSnapshotAndRefreshesAsync(t *testing.T) {
	api := &fakePlacesService{nearby: []models.Place{{ID: "p1", Name: "Kafe"}}}
	m := NewManager(api, fakeWeatherAPI{}, zap.NewNop())

	snapshot := m.Update("session-1", kadikoy, "")
	require.NotNil(t, snapshot.UserLocation)
	assert.Equal(t, kadikoy, *snapshot.UserLocation)
	// Derived data is not part of the synchronous response.
	assert.Empty(t, snapshot.LocationName)

	require.Eventually(t, func() bool {
		state := m.Get("session-1")
		return state.LocationName == "Yeni Konum" && state.Weather != nil && len(state.NearbyPlaces) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestNewerUpdateDiscardsStaleRefresh(t *testing.T) {
	api := &fakePlacesService{blockFirst: true, nearby: []models.Place{{ID: "p1"}}}
	m := NewManager(api, fakeWeatherAPI{}, zap.NewNop())

	m.Update("session-1", kadikoy, "")
	// The second update cancels the first refresh mid-flight.
	m.Update("session-1", models.Location{Latitude: 41.0082, Longitude: 28.9784}, "")

	require.Eventually(t, func() bool {
		return m.Get("session-1").LocationName == "Yeni Konum"
	}, time.Second, 10*time.Millisecond)

	// The canceled refresh must never overwrite the newer state.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "Yeni Konum", m.Get("session-1").LocationName)
}

func TestSessionsAreIsolated(t *testing.T) {
	api := &fakePlacesService{}
	m := NewManager(api, fakeWeatherAPI{}, zap.NewNop())

	m.Update("session-1", kadikoy, "")
	state := m.Get("session-2")
	assert.Nil(t, state.UserLocation)
}
