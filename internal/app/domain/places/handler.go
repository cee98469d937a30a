package places

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/city-explorer-api/internal/app/domain/history"
	"github.com/city-explorer-api/internal/app/middleware"
	"github.com/city-explorer-api/internal/app/models"
	"github.com/city-explorer-api/internal/observability/metrics"
)

type Handler struct {
	service Service
	history history.Service
	logger  *zap.Logger
}

func NewHandler(service Service, historyService history.Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, history: historyService, logger: logger}
}

type routeRequest struct {
	Start     models.Location   `json:"start"`
	End       *models.Location  `json:"end,omitempty"`
	Waypoints []models.Location `json:"waypoints,omitempty"`
	Mode      string            `json:"mode"`
}

func parseLatLng(c *gin.Context) (models.Location, bool) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid lat and lng query parameters are required"})
		return models.Location{}, false
	}
	return models.Location{Latitude: lat, Longitude: lng}, true
}

// Nearby handles GET /places/nearby?lat=&lng=&category=&radius=&limit=.
func (h *Handler) Nearby(c *gin.Context) {
	location, ok := parseLatLng(c)
	if !ok {
		return
	}

	category := c.DefaultQuery("category", "restaurant")
	radius, _ := strconv.Atoi(c.Query("radius"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	places := h.service.Nearby(c.Request.Context(), location, category, radius, limit)
	metrics.Get().PlaceSearchesTotal.Add(c.Request.Context(), 1,
		metric.WithAttributes(attribute.String("kind", "nearby"), attribute.String("category", category)))

	c.JSON(http.StatusOK, gin.H{"places": places, "category": category})
}

// Search handles GET /places/search?q=&lat=&lng=&limit=. Successful
// searches by signed-in users are recorded to their history.
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter q is required"})
		return
	}
	location, ok := parseLatLng(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	places := h.service.Search(c.Request.Context(), query, location, limit)
	metrics.Get().PlaceSearchesTotal.Add(c.Request.Context(), 1,
		metric.WithAttributes(attribute.String("kind", "text")))

	h.history.Record(c.Request.Context(), middleware.GetUserIDFromContext(c), query, &location, "")

	c.JSON(http.StatusOK, gin.H{"places": places, "query": query})
}

// Route handles POST /routes. A body with end calculates a two-point
// route with steps; a body with waypoints calculates a multi-stop route
// without steps.
func (h *Handler) Route(c *gin.Context) {
	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var route *models.Route
	switch {
	case len(req.Waypoints) > 0:
		route = h.service.MultiPointRoute(c.Request.Context(), req.Start, req.Waypoints, req.Mode)
	case req.End != nil:
		route = h.service.Route(c.Request.Context(), req.Start, *req.End, req.Mode)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either end or waypoints is required"})
		return
	}

	if route == nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Route could not be calculated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

// ReverseGeocode handles GET /geocode/reverse?lat=&lng=.
func (h *Handler) ReverseGeocode(c *gin.Context) {
	location, ok := parseLatLng(c)
	if !ok {
		return
	}

	name := h.service.ReverseGeocode(c.Request.Context(), location)
	c.JSON(http.StatusOK, gin.H{"name": name, "location": location})
}
