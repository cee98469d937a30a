// Package location keeps the per-session location state: the current
// coordinate, its reverse geocoded name, current weather and the nearby
// place list. Updates refresh the derived data asynchronously; a newer
// update cancels the in-flight refresh and stale results are discarded.
package location

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/city-explorer-api/internal/app/domain/places"
	"github.com/city-explorer-api/internal/app/models"
)

const (
	sessionTTL     = 30 * time.Minute
	refreshTimeout = 15 * time.Second
)

// WeatherAPI is the provider surface the manager depends on.
type WeatherAPI interface {
	GetCurrentWeather(ctx context.Context, location models.Location) *models.WeatherData
}

type sessionState struct {
	mu     sync.Mutex
	token  uint64
	cancel context.CancelFunc
	state  models.LocationState
}

type Manager struct {
	logger   *zap.Logger
	places   places.Service
	weather  WeatherAPI
	sessions *cache.Cache
	mu       sync.Mutex // guards session creation
}

func NewManager(placesService places.Service, weatherAPI WeatherAPI, logger *zap.Logger) *Manager {
	return &Manager{
		logger:   logger,
		places:   placesService,
		weather:  weatherAPI,
		sessions: cache.New(sessionTTL, 10*time.Minute),
	}
}

func (m *Manager) session(sessionID string) *sessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cached, found := m.sessions.Get(sessionID); found {
		return cached.(*sessionState)
	}
	s := &sessionState{state: models.LocationState{
		SessionID:    sessionID,
		NearbyPlaces: []models.Place{},
	}}
	m.sessions.Set(sessionID, s, cache.DefaultExpiration)
	return s
}

// Get returns a copy of the session's current state.
func (m *Manager) Get(sessionID string) models.LocationState {
	s := m.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update sets the session location and kicks off a background refresh of
// the location name, weather and nearby places. The returned state still
// carries the previous derived data; clients poll Get for the refreshed
// view. Category defaults to "restaurant".
func (m *Manager) Update(sessionID string, location models.Location, category string) models.LocationState {
	if category == "" {
		category = "restaurant"
	}

	s := m.session(sessionID)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.token++
	token := s.token
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	s.cancel = cancel
	s.state.UserLocation = &location
	s.state.UpdatedAt = time.Now()
	snapshot := s.state
	s.mu.Unlock()

	go m.refresh(ctx, s, token, location, category)

	return snapshot
}

// refresh fetches the derived data and installs it only if no newer
// update arrived meanwhile.
func (m *Manager) refresh(ctx context.Context, s *sessionState, token uint64, location models.Location, category string) {
	l := m.logger.With(zap.String("method", "refresh"), zap.Uint64("token", token))

	name := m.places.ReverseGeocode(ctx, location)
	weather := m.weather.GetCurrentWeather(ctx, location)
	nearby := m.places.Nearby(ctx, location, category, places.DefaultRadius, places.DefaultLimit)

	if ctx.Err() != nil {
		l.Debug("Refresh canceled, discarding results")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != token {
		l.Debug("Stale refresh, discarding results")
		return
	}

	s.state.LocationName = name
	s.state.Weather = weather
	s.state.NearbyPlaces = nearby
	s.state.UpdatedAt = time.Now()
	l.Debug("Location state refreshed", zap.String("name", name), zap.Int("nearby", len(nearby)))
}
