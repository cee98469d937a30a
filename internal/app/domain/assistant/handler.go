package assistant

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/city-explorer-api/internal/app/domain/location"
	"github.com/city-explorer-api/internal/app/middleware"
	"github.com/city-explorer-api/internal/app/models"
	"github.com/city-explorer-api/internal/observability/metrics"
)

type Handler struct {
	service  Service
	location *location.Manager
	logger   *zap.Logger
}

func NewHandler(service Service, locationManager *location.Manager, logger *zap.Logger) *Handler {
	return &Handler{service: service, location: locationManager, logger: logger}
}

type messageRequest struct {
	Message  string           `json:"message"`
	Location *models.Location `json:"location,omitempty"`
}

// Message handles POST /assistant/message. The session's stored location
// and nearby places feed the pipeline; an explicit location in the body
// overrides the stored one.
func (h *Handler) Message(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	sessionID := middleware.GetSessionID(c)

	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	state := h.location.Get(sessionID)
	loc := state.UserLocation
	if req.Location != nil {
		loc = req.Location
	}

	reply, err := h.service.ProcessMessage(c.Request.Context(), userID, sessionID, req.Message, loc, state.NearbyPlaces)
	if err != nil {
		h.logger.Error("ProcessMessage failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not process message"})
		return
	}

	m := metrics.Get()
	m.AssistantMessagesTotal.Add(c.Request.Context(), 1,
		metric.WithAttributes(attribute.Bool("has_route", reply.HasRoute)))
	if reply.HasRoute {
		m.AssistantRoutesTotal.Add(c.Request.Context(), 1)
	}

	c.Header(middleware.SessionHeader, sessionID)
	c.JSON(http.StatusOK, gin.H{"message": reply})
}

// History handles GET /assistant/history: the session transcript.
func (h *Handler) History(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	c.Header(middleware.SessionHeader, sessionID)
	c.JSON(http.StatusOK, gin.H{"messages": h.service.Transcript(sessionID)})
}

// Clear handles DELETE /assistant/history.
func (h *Handler) Clear(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	h.service.ClearTranscript(sessionID)
	c.Status(http.StatusNoContent)
}
