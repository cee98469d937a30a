package places

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/city-explorer-api/internal/app/models"
)

type fakePlacesAPI struct {
	nearbyCalls  atomic.Int32
	revgeoCalls  atomic.Int32
	lastMode     string
	nearbyResult []models.Place
	block        chan struct{}
}

func (f *fakePlacesAPI) SearchNearby(ctx context.Context, location models.Location, category string, radius, limit int) []models.Place {
	f.nearbyCalls.Add(1)
	if f.block != nil {
		<-f.block
	}
	return f.nearbyResult
}

func (f *fakePlacesAPI) Search(ctx context.Context, query string, location models.Location, limit int) []models.Place {
	return f.nearbyResult
}

func (f *fakePlacesAPI) CalculateRoute(ctx context.Context, start, end models.Location, mode string) *models.Route {
	f.lastMode = mode
	return &models.Route{TransportMode: mode}
}

func (f *fakePlacesAPI) CalculateMultiPointRoute(ctx context.Context, start models.Location, waypoints []models.Location, mode string) *models.Route {
	f.lastMode = mode
	return &models.Route{TransportMode: mode}
}

func (f *fakePlacesAPI) ReverseGeocode(ctx context.Context, location models.Location) string {
	f.revgeoCalls.Add(1)
	return "Kadıköy, İstanbul"
}

var istanbul = models.Location{Latitude: 41.0082, Longitude: 28.9784}

func TestNearbyCachesNonEmptyResults(t *testing.T) {
	api := &fakePlacesAPI{nearbyResult: []models.Place{{ID: "p1", Name: "Kafe"}}}
	svc := NewService(api, zap.NewNop())

	first := svc.Nearby(context.Background(), istanbul, "cafe", 0, 0)
	second := svc.Nearby(context.Background(), istanbul, "cafe", 0, 0)

	require.Len(t, first, 1)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, api.nearbyCalls.Load(), "second lookup should come from cache")
}

func TestNearbyDoesNotCacheEmptyResults(t *testing.T) {
	api := &fakePlacesAPI{nearbyResult: []models.Place{}}
	svc := NewService(api, zap.NewNop())

	svc.Nearby(context.Background(), istanbul, "cafe", 0, 0)
	svc.Nearby(context.Background(), istanbul, "cafe", 0, 0)

	assert.EqualValues(t, 2, api.nearbyCalls.Load())
}

func TestNearbyDistinctKeysAreNotShared(t *testing.T) {
	api := &fakePlacesAPI{nearbyResult: []models.Place{{ID: "p1"}}}
	svc := NewService(api, zap.NewNop())

	svc.Nearby(context.Background(), istanbul, "cafe", 0, 0)
	svc.Nearby(context.Background(), istanbul, "pharmacy", 0, 0)
	svc.Nearby(context.Background(), models.Location{Latitude: 41.1, Longitude: 29.1}, "cafe", 0, 0)

	assert.EqualValues(t, 3, api.nearbyCalls.Load())
}

func TestNearbyCoalescesConcurrentLookups(t *testing.T) {
	api := &fakePlacesAPI{
		nearbyResult: []models.Place{{ID: "p1"}},
		block:        make(chan struct{}),
	}
	svc := NewService(api, zap.NewNop())

	const workers = 5
	var wg sync.WaitGroup
	results := make([][]models.Place, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.Nearby(context.Background(), istanbul, "cafe", 0, 0)
		}(i)
	}

	close(api.block)
	wg.Wait()

	assert.EqualValues(t, 1, api.nearbyCalls.Load(), "concurrent identical lookups should hit the provider once")
	for _, r := range results {
		assert.Len(t, r, 1)
	}
}

func TestReverseGeocodeCaches(t *testing.T) {
	api := &fakePlacesAPI{}
	svc := NewService(api, zap.NewNop())

	first := svc.ReverseGeocode(context.Background(), istanbul)
	second := svc.ReverseGeocode(context.Background(), istanbul)

	assert.Equal(t, "Kadıköy, İstanbul", first)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, api.revgeoCalls.Load())
}

func TestRouteNormalizesTransportMode(t *testing.T) {
	api := &fakePlacesAPI{}
	svc := NewService(api, zap.NewNop())

	end := models.Location{Latitude: 41.05, Longitude: 29.0}

	route := svc.Route(context.Background(), istanbul, end, "car")
	assert.Equal(t, "car", route.TransportMode)

	route = svc.Route(context.Background(), istanbul, end, "uçak")
	assert.Equal(t, "pedestrian", route.TransportMode)

	route = svc.MultiPointRoute(context.Background(), istanbul, []models.Location{end}, "")
	assert.Equal(t, "pedestrian", route.TransportMode)
}
