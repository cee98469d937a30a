// Package mapview serves a self-contained interactive map page showing
// the session's location, nearby places and the active route.
package mapview

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/city-explorer-api/internal/app/domain/location"
	"github.com/city-explorer-api/internal/app/middleware"
	"github.com/city-explorer-api/internal/app/models"
)

// Istanbul is the fallback center before any location update arrives.
var defaultCenter = models.Location{Latitude: 41.0082, Longitude: 28.9784}

type pageData struct {
	APIKey   string
	Center   models.Location
	HasUser  bool
	User     models.Location
	Places   []models.Place
	Route    []models.Location
	Selected string
}

// RouteSource supplies the session's active route, if any.
type RouteSource interface {
	LatestRoute(sessionID string) *models.Route
}

type Handler struct {
	apiKey   string
	location *location.Manager
	routes   RouteSource
	tmpl     *template.Template
	logger   *zap.Logger
}

func NewHandler(apiKey string, locationManager *location.Manager, routes RouteSource, logger *zap.Logger) *Handler {
	return &Handler{
		apiKey:   apiKey,
		location: locationManager,
		routes:   routes,
		tmpl:     template.Must(template.New("map").Parse(mapPage)),
		logger:   logger,
	}
}

// Page handles GET /map. The optional selected query parameter highlights
// one place marker.
func (h *Handler) Page(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	state := h.location.Get(sessionID)

	data := pageData{
		APIKey:   h.apiKey,
		Center:   defaultCenter,
		Places:   state.NearbyPlaces,
		Selected: c.Query("selected"),
	}
	if state.UserLocation != nil {
		data.HasUser = true
		data.User = *state.UserLocation
		data.Center = *state.UserLocation
	}
	if route := h.routes.LatestRoute(sessionID); route != nil {
		data.Route = route.Points
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := h.tmpl.Execute(c.Writer, data); err != nil {
		h.logger.Error("Map template render failed", zap.Error(err))
	}
}

const mapPage = `<!DOCTYPE html>
<html lang="tr">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Smart City Explorer</title>
<link rel="stylesheet" href="https://api.tomtom.com/maps-sdk-for-web/cdn/6.x/6.25.0/maps/maps.css">
<script src="https://api.tomtom.com/maps-sdk-for-web/cdn/6.x/6.25.0/maps/maps-web.min.js"></script>
<style>
  html, body { margin: 0; height: 100%; }
  #map { width: 100%; height: 100%; }
</style>
</head>
<body>
<div id="map"></div>
<script>
  var center = [{{.Center.Longitude}}, {{.Center.Latitude}}];
  var map = tt.map({
    key: {{.APIKey}},
    container: 'map',
    center: center,
    zoom: 14
  });
  map.addControl(new tt.NavigationControl());

  {{if .HasUser}}
  new tt.Marker({ color: '#3B82F6' })
    .setLngLat([{{.User.Longitude}}, {{.User.Latitude}}])
    .addTo(map);
  {{end}}

  var bounds = new tt.LngLatBounds();
  bounds.extend(center);

  {{range .Places}}
  (function() {
    var selected = {{$.Selected}} === {{.ID}};
    var marker = new tt.Marker({ color: selected ? '#EF4444' : '#10B981' })
      .setLngLat([{{.Lng}}, {{.Lat}}])
      .addTo(map);
    marker.setPopup(new tt.Popup({ offset: 35 }).setText({{.Name}}));
    bounds.extend([{{.Lng}}, {{.Lat}}]);
  })();
  {{end}}

  {{if .Route}}
  map.on('load', function() {
    map.addLayer({
      id: 'route',
      type: 'line',
      source: {
        type: 'geojson',
        data: {
          type: 'Feature',
          geometry: {
            type: 'LineString',
            coordinates: [{{range .Route}}[{{.Longitude}}, {{.Latitude}}],{{end}}]
          }
        }
      },
      paint: { 'line-color': '#3B82F6', 'line-width': 4 }
    });
  });
  {{end}}

  if (!bounds.isEmpty()) {
    map.fitBounds(bounds, { padding: 50, maxZoom: 15 });
  }
</script>
</body>
</html>
`
