package location

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/city-explorer-api/internal/app/middleware"
	"github.com/city-explorer-api/internal/app/models"
)

type Handler struct {
	manager *Manager
	logger  *zap.Logger
}

func NewHandler(manager *Manager, logger *zap.Logger) *Handler {
	return &Handler{manager: manager, logger: logger}
}

type updateRequest struct {
	Location models.Location `json:"location"`
	Category string          `json:"category,omitempty"`
}

// Update handles PUT /location. The response carries the state before the
// background refresh lands; clients poll Get for the enriched view.
func (h *Handler) Update(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	state := h.manager.Update(sessionID, req.Location, req.Category)
	c.Header(middleware.SessionHeader, sessionID)
	c.JSON(http.StatusAccepted, gin.H{"state": state})
}

// Get handles GET /location.
func (h *Handler) Get(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	state := h.manager.Get(sessionID)
	c.Header(middleware.SessionHeader, sessionID)
	c.JSON(http.StatusOK, gin.H{"state": state})
}
