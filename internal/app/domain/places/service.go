// Package places fronts the places provider with a short-lived cache and
// request coalescing so bursts of identical nearby lookups hit the
// provider once.
package places

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/city-explorer-api/internal/app/models"
)

const (
	DefaultRadius = 5000
	DefaultLimit  = 20

	cacheTTL = 5 * time.Minute
)

var _ Service = (*ServiceImpl)(nil)

// PlacesAPI is the provider surface the service depends on.
type PlacesAPI interface {
	SearchNearby(ctx context.Context, location models.Location, category string, radius, limit int) []models.Place
	Search(ctx context.Context, query string, location models.Location, limit int) []models.Place
	CalculateRoute(ctx context.Context, start, end models.Location, mode string) *models.Route
	CalculateMultiPointRoute(ctx context.Context, start models.Location, waypoints []models.Location, mode string) *models.Route
	ReverseGeocode(ctx context.Context, location models.Location) string
}

type Service interface {
	Nearby(ctx context.Context, location models.Location, category string, radius, limit int) []models.Place
	Search(ctx context.Context, query string, location models.Location, limit int) []models.Place
	Route(ctx context.Context, start, end models.Location, mode string) *models.Route
	MultiPointRoute(ctx context.Context, start models.Location, waypoints []models.Location, mode string) *models.Route
	ReverseGeocode(ctx context.Context, location models.Location) string
}

type ServiceImpl struct {
	logger *zap.Logger
	api    PlacesAPI
	cache  *cache.Cache
	group  singleflight.Group
}

func NewService(api PlacesAPI, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		api:    api,
		cache:  cache.New(cacheTTL, 10*time.Minute),
	}
}

// Nearby returns cached results when the same rounded coordinate, category
// and paging was requested within the TTL. Concurrent identical lookups
// are coalesced into a single provider call.
func (s *ServiceImpl) Nearby(ctx context.Context, location models.Location, category string, radius, limit int) []models.Place {
	if radius <= 0 {
		radius = DefaultRadius
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	ctx, span := otel.Tracer("PlacesService").Start(ctx, "Nearby", trace.WithAttributes(
		attribute.String("category", category),
		attribute.Int("radius", radius),
	))
	defer span.End()

	key := fmt.Sprintf("nearby:%.4f:%.4f:%s:%d:%d", location.Latitude, location.Longitude, category, radius, limit)
	if cached, found := s.cache.Get(key); found {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		span.SetStatus(codes.Ok, "Cache hit")
		return cached.([]models.Place)
	}

	result, _, _ := s.group.Do(key, func() (any, error) {
		places := s.api.SearchNearby(ctx, location, category, radius, limit)
		if len(places) > 0 {
			s.cache.Set(key, places, cache.DefaultExpiration)
		}
		return places, nil
	})

	places := result.([]models.Place)
	span.SetAttributes(attribute.Bool("cache.hit", false), attribute.Int("count", len(places)))
	span.SetStatus(codes.Ok, "Nearby search completed")
	return places
}

func (s *ServiceImpl) Search(ctx context.Context, query string, location models.Location, limit int) []models.Place {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return s.api.Search(ctx, query, location, limit)
}

func (s *ServiceImpl) Route(ctx context.Context, start, end models.Location, mode string) *models.Route {
	return s.api.CalculateRoute(ctx, start, end, normalizeMode(mode))
}

func (s *ServiceImpl) MultiPointRoute(ctx context.Context, start models.Location, waypoints []models.Location, mode string) *models.Route {
	return s.api.CalculateMultiPointRoute(ctx, start, waypoints, normalizeMode(mode))
}

func (s *ServiceImpl) ReverseGeocode(ctx context.Context, location models.Location) string {
	key := fmt.Sprintf("revgeo:%.4f:%.4f", location.Latitude, location.Longitude)
	if cached, found := s.cache.Get(key); found {
		return cached.(string)
	}
	name := s.api.ReverseGeocode(ctx, location)
	s.cache.Set(key, name, cache.DefaultExpiration)
	return name
}

func normalizeMode(mode string) string {
	switch mode {
	case "car", "pedestrian", "bicycle", "bus":
		return mode
	default:
		return "pedestrian"
	}
}
