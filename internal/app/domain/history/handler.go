package history

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/city-explorer-api/internal/app/middleware"
	"github.com/city-explorer-api/internal/app/models"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type recordRequest struct {
	Query    string           `json:"query"`
	Location *models.Location `json:"location,omitempty"`
	Category string           `json:"category,omitempty"`
}

// List handles GET /history.
func (h *Handler) List(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	items, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("List history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load search history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": items})
}

// Record handles POST /history.
func (h *Handler) Record(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query is required"})
		return
	}

	h.service.Record(c.Request.Context(), userID, req.Query, req.Location, req.Category)
	c.Status(http.StatusAccepted)
}

// Clear handles DELETE /history.
func (h *Handler) Clear(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	if err := h.service.Clear(c.Request.Context(), userID); err != nil {
		h.logger.Error("Clear history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not clear search history"})
		return
	}
	c.Status(http.StatusNoContent)
}
