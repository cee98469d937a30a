package favorites

import (
	"errors"
	"net/http"
	"strconv"

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

// List handles GET /favorites. Supports q, category, sort_by, sort_order,
// limit and offset query parameters.
func (h *Handler) List(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	filter := models.FavoritesFilter{
		SearchText: c.Query("q"),
		Category:   c.Query("category"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}
	filter.Limit, _ = strconv.Atoi(c.Query("limit"))
	filter.Offset, _ = strconv.Atoi(c.Query("offset"))

	if filter.SearchText == "" && filter.Category == "" && filter.SortBy == "" && filter.Limit == 0 && filter.Offset == 0 {
		favorites, err := h.service.List(c.Request.Context(), userID)
		if err != nil {
			h.logger.Error("List favorites failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load favorites"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"favorites": favorites, "total": len(favorites)})
		return
	}

	favorites, total, err := h.service.ListFiltered(c.Request.Context(), userID, filter)
	if err != nil {
		h.logger.Error("ListFiltered favorites failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load favorites"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favorites, "total": total})
}

// Add handles POST /favorites with a place snapshot body.
func (h *Handler) Add(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	var place models.Place
	if err := c.ShouldBindJSON(&place); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if place.ID == "" || place.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Place id and name are required"})
		return
	}

	fav, err := h.service.Add(c.Request.Context(), userID, place)
	if err != nil {
		h.logger.Error("Add favorite failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save favorite"})
		return
	}
	if fav == nil {
		// Anonymous session: the write was skipped.
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"favorite": fav})
}

// Remove handles DELETE /favorites/:placeID.
func (h *Handler) Remove(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	placeID := c.Param("placeID")

	err := h.service.Remove(c.Request.Context(), userID, placeID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Favorite not found"})
			return
		}
		h.logger.Error("Remove favorite failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not remove favorite"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Status handles GET /favorites/:placeID/status.
func (h *Handler) Status(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	placeID := c.Param("placeID")

	isFavorite, err := h.service.IsFavorite(c.Request.Context(), userID, placeID)
	if err != nil {
		h.logger.Error("Favorite status check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not check favorite"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"place_id": placeID, "is_favorite": isFavorite})
}
