// Package tomtom implements the places, routing and geocoding client.
//
// Search and routing failures are absorbed at this boundary: search
// operations return an empty slice, route operations return nil and
// reverse geocoding falls back to a coordinate string. Callers never
// see provider errors.
package tomtom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/city-explorer-api/internal/app/models"
	"github.com/city-explorer-api/internal/observability/metrics"
	"github.com/city-explorer-api/internal/pkg/config"
)

type Client struct {
	cfg        config.TomTomConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg config.TomTomConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type searchPOI struct {
	Name       string   `json:"name"`
	Phone      string   `json:"phone"`
	URL        string   `json:"url"`
	Categories []string `json:"categories"`
}

type searchAddress struct {
	FreeformAddress         string `json:"freeformAddress"`
	MunicipalitySubdivision string `json:"municipalitySubdivision"`
	Municipality            string `json:"municipality"`
	CountrySubdivision      string `json:"countrySubdivision"`
	Country                 string `json:"country"`
}

type searchResult struct {
	ID       string     `json:"id"`
	Dist     *float64   `json:"dist"`
	Score    *float64   `json:"score"`
	POI      *searchPOI `json:"poi"`
	Position struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"position"`
	Address *searchAddress `json:"address"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type routePoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type routeResponse struct {
	Routes []struct {
		Summary struct {
			LengthInMeters      float64 `json:"lengthInMeters"`
			TravelTimeInSeconds int     `json:"travelTimeInSeconds"`
		} `json:"summary"`
		Legs []struct {
			Points []routePoint `json:"points"`
		} `json:"legs"`
	} `json:"routes"`
}

type reverseGeocodeResponse struct {
	Addresses []struct {
		Address searchAddress `json:"address"`
	} `json:"addresses"`
}

// SearchNearby looks up places of the given category around a location.
// The category-set nearby search runs first; when it yields nothing the
// free-text POI search is tried once as fallback.
func (c *Client) SearchNearby(ctx context.Context, location models.Location, category string, radius, limit int) []models.Place {
	l := c.logger.With(zap.String("method", "SearchNearby"), zap.String("category", category))

	nearbyURL := fmt.Sprintf("%s/search/2/nearbySearch/.json?lat=%f&lon=%f&radius=%d&limit=%d&categorySet=%s&key=%s",
		c.cfg.BaseURL, location.Latitude, location.Longitude, radius, limit, CategorySet(category), c.cfg.APIKey)

	var data searchResponse
	if err := c.getJSON(ctx, "nearby_search", nearbyURL, &data); err != nil {
		l.Error("Nearby search request failed", zap.Error(err))
		return []models.Place{}
	}

	if len(data.Results) == 0 {
		l.Debug("Nearby search empty, trying POI search")
		poiURL := fmt.Sprintf("%s/search/2/poiSearch/%s.json?lat=%f&lon=%f&radius=%d&limit=%d&key=%s",
			c.cfg.BaseURL, url.PathEscape(category), location.Latitude, location.Longitude, radius, limit, c.cfg.APIKey)
		data = searchResponse{}
		if err := c.getJSON(ctx, "poi_search", poiURL, &data); err != nil {
			l.Error("POI search request failed", zap.Error(err))
			return []models.Place{}
		}
	}

	places := make([]models.Place, 0, len(data.Results))
	for _, result := range data.Results {
		places = append(places, mapResult(result, category))
	}

	l.Debug("Nearby search completed", zap.Int("count", len(places)))
	return places
}

// Search performs a free-text place search near a location. The category
// is taken from the first provider POI category, or "other".
func (c *Client) Search(ctx context.Context, query string, location models.Location, limit int) []models.Place {
	l := c.logger.With(zap.String("method", "Search"), zap.String("query", query))

	searchURL := fmt.Sprintf("%s/search/2/search/%s.json?lat=%f&lon=%f&limit=%d&key=%s",
		c.cfg.BaseURL, url.PathEscape(query), location.Latitude, location.Longitude, limit, c.cfg.APIKey)

	var data searchResponse
	if err := c.getJSON(ctx, "search", searchURL, &data); err != nil {
		l.Error("Search request failed", zap.Error(err))
		return []models.Place{}
	}

	places := make([]models.Place, 0, len(data.Results))
	for _, result := range data.Results {
		category := "other"
		if result.POI != nil && len(result.POI.Categories) > 0 {
			category = result.POI.Categories[0]
		}
		places = append(places, mapResult(result, category))
	}

	l.Debug("Search completed", zap.Int("count", len(places)))
	return places
}

// CalculateRoute calculates a single route between two points. Steps are
// synthesized from the first leg's points: each step ends at the next
// point and the final step degenerates to zero length.
func (c *Client) CalculateRoute(ctx context.Context, start, end models.Location, mode string) *models.Route {
	l := c.logger.With(zap.String("method", "CalculateRoute"), zap.String("mode", mode))

	routeURL := fmt.Sprintf("%s/routing/1/calculateRoute/%f,%f:%f,%f/json?travelMode=%s&key=%s",
		c.cfg.BaseURL, start.Latitude, start.Longitude, end.Latitude, end.Longitude, mode, c.cfg.APIKey)

	data, ok := c.fetchRoute(ctx, routeURL, l)
	if !ok {
		return nil
	}

	points := legPoints(data)
	route := buildRoute(data, start, mode, points)

	route.Steps = make([]models.RouteStep, 0, len(points))
	for i, point := range points {
		endLoc := point
		if i+1 < len(points) {
			endLoc = points[i+1]
		}
		route.Steps = append(route.Steps, models.RouteStep{
			Instruction:   fmt.Sprintf("Adım %d", i+1),
			StartLocation: point,
			EndLocation:   endLoc,
		})
	}

	l.Debug("Route calculated",
		zap.Float64("distance_km", route.TotalDistance),
		zap.Int("duration_s", route.TotalDuration),
		zap.Int("points", len(points)))
	return route
}

// CalculateMultiPointRoute calculates a route through ordered waypoints.
// Only the polyline is populated, no steps.
func (c *Client) CalculateMultiPointRoute(ctx context.Context, start models.Location, waypoints []models.Location, mode string) *models.Route {
	l := c.logger.With(zap.String("method", "CalculateMultiPointRoute"), zap.String("mode", mode))

	locations := make([]string, 0, len(waypoints)+1)
	locations = append(locations, fmt.Sprintf("%f,%f", start.Latitude, start.Longitude))
	for _, wp := range waypoints {
		locations = append(locations, fmt.Sprintf("%f,%f", wp.Latitude, wp.Longitude))
	}

	routeURL := fmt.Sprintf("%s/routing/1/calculateRoute/%s/json?travelMode=%s&key=%s",
		c.cfg.BaseURL, strings.Join(locations, ":"), mode, c.cfg.APIKey)

	data, ok := c.fetchRoute(ctx, routeURL, l)
	if !ok {
		return nil
	}

	route := buildRoute(data, start, mode, legPoints(data))
	l.Debug("Multi-point route calculated", zap.Float64("distance_km", route.TotalDistance))
	return route
}

// ReverseGeocode resolves a location to a human readable name. Field
// priority: neighborhood, district, province, country. The city is
// appended when distinct. Failures fall back to a 4-decimal coordinate
// string.
func (c *Client) ReverseGeocode(ctx context.Context, location models.Location) string {
	l := c.logger.With(zap.String("method", "ReverseGeocode"))
	fallback := fmt.Sprintf("%.4f, %.4f", location.Latitude, location.Longitude)

	geoURL := fmt.Sprintf("%s/search/2/reverseGeocode/%f,%f.json?key=%s",
		c.cfg.BaseURL, location.Latitude, location.Longitude, c.cfg.APIKey)

	var data reverseGeocodeResponse
	if err := c.getJSON(ctx, "reverse_geocode", geoURL, &data); err != nil {
		l.Error("Reverse geocode request failed", zap.Error(err))
		return fallback
	}

	if len(data.Addresses) == 0 {
		l.Debug("Reverse geocode returned no addresses")
		return fallback
	}

	address := data.Addresses[0].Address

	locationName := firstNonEmpty(
		address.MunicipalitySubdivision,
		address.Municipality,
		address.CountrySubdivision,
		address.Country,
		"Bilinmeyen Konum",
	)

	city := firstNonEmpty(address.Municipality, address.CountrySubdivision, "")

	if city != "" && locationName != city {
		return fmt.Sprintf("%s, %s", locationName, city)
	}
	return locationName
}

// TileURL returns the raster tile URL for the given coordinates.
func (c *Client) TileURL(z, x, y int) string {
	return fmt.Sprintf("%s/map/1/tile/basic/main/%d/%d/%d.png?key=%s", c.cfg.BaseURL, z, x, y, c.cfg.APIKey)
}

// EncodePolyline joins points as "lat,lon|lat,lon|...".
func EncodePolyline(points []models.Location) string {
	parts := make([]string, 0, len(points))
	for _, p := range points {
		parts = append(parts, fmt.Sprintf("%v,%v", p.Latitude, p.Longitude))
	}
	return strings.Join(parts, "|")
}

func (c *Client) fetchRoute(ctx context.Context, routeURL string, l *zap.Logger) (*routeResponse, bool) {
	var data routeResponse
	if err := c.getJSON(ctx, "calculate_route", routeURL, &data); err != nil {
		l.Error("Route request failed", zap.Error(err))
		return nil, false
	}
	if len(data.Routes) == 0 {
		l.Debug("No routes returned")
		return nil, false
	}
	return &data, true
}

func (c *Client) getJSON(ctx context.Context, op, rawURL string, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.Get().ProviderRequestDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
			attribute.String("provider", "tomtom"),
			attribute.String("operation", op),
			attribute.Bool("success", err == nil),
		))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func mapResult(result searchResult, category string) models.Place {
	name := "İsimsiz"
	phone := ""
	website := ""
	if result.POI != nil && result.POI.Name != "" {
		name = result.POI.Name
		phone = result.POI.Phone
		website = result.POI.URL
	} else if result.Address != nil && result.Address.FreeformAddress != "" {
		name = result.Address.FreeformAddress
	}

	id := result.ID
	if id == "" {
		id = fmt.Sprintf("tomtom-%s-%v", name, result.Position.Lat)
	}

	address := ""
	if result.Address != nil {
		address = result.Address.FreeformAddress
	}

	var distance *float64
	if result.Dist != nil {
		km := *result.Dist / 1000
		distance = &km
	}

	return models.Place{
		ID:       id,
		Name:     name,
		Lat:      result.Position.Lat,
		Lng:      result.Position.Lon,
		Category: category,
		Address:  address,
		Rating:   result.Score,
		Phone:    phone,
		Website:  website,
		Distance: distance,
	}
}

func legPoints(data *routeResponse) []models.Location {
	if len(data.Routes[0].Legs) == 0 {
		return nil
	}
	raw := data.Routes[0].Legs[0].Points
	points := make([]models.Location, 0, len(raw))
	for _, p := range raw {
		points = append(points, models.Location{Latitude: p.Latitude, Longitude: p.Longitude})
	}
	return points
}

func buildRoute(data *routeResponse, start models.Location, mode string, points []models.Location) *models.Route {
	summary := data.Routes[0].Summary
	return &models.Route{
		ID:            fmt.Sprintf("route-%d", time.Now().UnixMilli()),
		StartLat:      start.Latitude,
		StartLng:      start.Longitude,
		TotalDistance: summary.LengthInMeters / 1000,
		TotalDuration: summary.TravelTimeInSeconds,
		TransportMode: mode,
		Polyline:      EncodePolyline(points),
		Points:        points,
		CreatedAt:     time.Now(),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
