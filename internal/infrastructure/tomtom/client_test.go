package tomtom

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/city-explorer-api/internal/app/models"
	"github.com/city-explorer-api/internal/pkg/config"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(config.TomTomConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}, zap.NewNop())
	return client, server
}

func TestSearchNearbyFallsBackToPOISearchOnce(t *testing.T) {
	var nearbyCalls, poiCalls int

	mux := http.NewServeMux()
	mux.HandleFunc("/search/2/nearbySearch/.json", func(w http.ResponseWriter, r *http.Request) {
		nearbyCalls++
		w.Write([]byte(`{"results": []}`))
	})
	mux.HandleFunc("/search/2/poiSearch/cafe.json", func(w http.ResponseWriter, r *http.Request) {
		poiCalls++
		w.Write([]byte(`{"results": [{
			"id": "poi-1",
			"dist": 1500,
			"score": 4.2,
			"poi": {"name": "Kahve Deryası", "categories": ["cafe"]},
			"position": {"lat": 41.01, "lon": 28.97},
			"address": {"freeformAddress": "Moda Cad. 1"}
		}]}`))
	})

	client, _ := newTestClient(t, mux)
	places := client.SearchNearby(context.Background(), models.Location{Latitude: 41, Longitude: 29}, "cafe", 5000, 20)

	assert.Equal(t, 1, nearbyCalls)
	assert.Equal(t, 1, poiCalls)
	require.Len(t, places, 1)
	assert.Equal(t, "poi-1", places[0].ID)
	assert.Equal(t, "Kahve Deryası", places[0].Name)
	assert.Equal(t, "cafe", places[0].Category)
	require.NotNil(t, places[0].Distance)
	assert.InDelta(t, 1.5, *places[0].Distance, 0.001)
	require.NotNil(t, places[0].Rating)
	assert.InDelta(t, 4.2, *places[0].Rating, 0.001)
}

func TestSearchNearbyBothEmptyReturnsEmptySlice(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	})

	client, _ := newTestClient(t, mux)
	places := client.SearchNearby(context.Background(), models.Location{}, "atm", 5000, 20)

	assert.NotNil(t, places)
	assert.Empty(t, places)
}

func TestSearchNearbyProviderErrorReturnsEmptySlice(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	client, _ := newTestClient(t, mux)
	places := client.SearchNearby(context.Background(), models.Location{}, "atm", 5000, 20)

	assert.NotNil(t, places)
	assert.Empty(t, places)
}

func TestSearchMapsFallbackNameAndCategory(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/2/search/eczane.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [
			{"id": "r1", "poi": {"name": "Sağlık Eczanesi", "categories": ["pharmacy"]}, "position": {"lat": 41, "lon": 29}},
			{"position": {"lat": 40.5, "lon": 29.5}, "address": {"freeformAddress": "Bağdat Cad. 10"}},
			{"position": {"lat": 40.6, "lon": 29.6}}
		]}`))
	})

	client, _ := newTestClient(t, mux)
	places := client.Search(context.Background(), "eczane", models.Location{Latitude: 41, Longitude: 29}, 20)

	require.Len(t, places, 3)
	assert.Equal(t, "pharmacy", places[0].Category)
	assert.Equal(t, "other", places[1].Category)
	assert.Equal(t, "Bağdat Cad. 10", places[1].Name)
	assert.Equal(t, "İsimsiz", places[2].Name)
	assert.Equal(t, "tomtom-İsimsiz-40.6", places[2].ID)
}

func TestCalculateRouteSynthesizesSteps(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"routes": [{
			"summary": {"lengthInMeters": 2500, "travelTimeInSeconds": 1800},
			"legs": [{"points": [
				{"latitude": 41.0, "longitude": 29.0},
				{"latitude": 41.1, "longitude": 29.1},
				{"latitude": 41.2, "longitude": 29.2}
			]}]
		}]}`))
	})

	client, _ := newTestClient(t, mux)
	route := client.CalculateRoute(context.Background(),
		models.Location{Latitude: 41, Longitude: 29},
		models.Location{Latitude: 41.2, Longitude: 29.2},
		"pedestrian")

	require.NotNil(t, route)
	assert.InDelta(t, 2.5, route.TotalDistance, 0.001)
	assert.Equal(t, 1800, route.TotalDuration)
	assert.Equal(t, "pedestrian", route.TransportMode)

	require.Len(t, route.Steps, 3)
	assert.Equal(t, "Adım 1", route.Steps[0].Instruction)
	assert.Equal(t, models.Location{Latitude: 41.1, Longitude: 29.1}, route.Steps[0].EndLocation)
	// Final step degenerates: start equals end.
	assert.Equal(t, route.Steps[2].StartLocation, route.Steps[2].EndLocation)

	assert.Equal(t, "41,29|41.1,29.1|41.2,29.2", route.Polyline)
}

func TestCalculateRouteNoRoutesReturnsNil(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"routes": []}`))
	})

	client, _ := newTestClient(t, mux)
	route := client.CalculateRoute(context.Background(), models.Location{}, models.Location{}, "car")
	assert.Nil(t, route)
}

func TestCalculateMultiPointRouteHasNoSteps(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"routes": [{
			"summary": {"lengthInMeters": 4000, "travelTimeInSeconds": 2400},
			"legs": [{"points": [{"latitude": 41, "longitude": 29}]}]
		}]}`))
	})

	client, _ := newTestClient(t, mux)
	route := client.CalculateMultiPointRoute(context.Background(),
		models.Location{Latitude: 41, Longitude: 29},
		[]models.Location{{Latitude: 41.1, Longitude: 29.1}, {Latitude: 41.2, Longitude: 29.2}},
		"car")

	require.NotNil(t, route)
	assert.Empty(t, route.Steps)
	assert.InDelta(t, 4.0, route.TotalDistance, 0.001)
}

func TestReverseGeocodePriorityChain(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		expected string
	}{
		{
			name:     "neighborhood with distinct district",
			address:  `{"municipalitySubdivision": "Moda", "municipality": "Kadıköy", "countrySubdivision": "İstanbul"}`,
			expected: "Moda, Kadıköy",
		},
		{
			name:     "district equal to itself is not repeated",
			address:  `{"municipality": "Kadıköy"}`,
			expected: "Kadıköy",
		},
		{
			name:     "province only",
			address:  `{"countrySubdivision": "İstanbul"}`,
			expected: "İstanbul",
		},
		{
			name:     "country fallback",
			address:  `{"country": "Türkiye"}`,
			expected: "Türkiye",
		},
		{
			name:     "all empty",
			address:  `{}`,
			expected: "Bilinmeyen Konum",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"addresses": [{"address": ` + tt.address + `}]}`))
			})

			client, _ := newTestClient(t, mux)
			name := client.ReverseGeocode(context.Background(), models.Location{Latitude: 41, Longitude: 29})
			assert.Equal(t, tt.expected, name)
		})
	}
}

func TestReverseGeocodeFailureFallsBackToCoordinates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	client, _ := newTestClient(t, mux)
	name := client.ReverseGeocode(context.Background(), models.Location{Latitude: 41.00824, Longitude: 28.97836})
	assert.Equal(t, "41.0082, 28.9784", name)
}

func TestTileURL(t *testing.T) {
	client := NewClient(config.TomTomConfig{APIKey: "k", BaseURL: "https://api.tomtom.com"}, zap.NewNop())
	assert.Equal(t, "https://api.tomtom.com/map/1/tile/basic/main/14/9485/6160.png?key=k", client.TileURL(14, 9485, 6160))
}

func TestCategorySetMapping(t *testing.T) {
	assert.Equal(t, "7315", CategorySet("restaurant"))
	assert.Equal(t, "9376003", CategorySet("cafe"))
	assert.Equal(t, "7397", CategorySet("atm"))
	// Unknown categories fall back to restaurants.
	assert.Equal(t, "7315", CategorySet("spaceport"))
}
