// Package weather exposes current conditions with a Turkish outing
// recommendation.
package weather

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/city-explorer-api/internal/app/models"
	weatherclient "github.com/city-explorer-api/internal/infrastructure/weather"
)

// WeatherAPI is the provider surface the handler depends on.
type WeatherAPI interface {
	GetCurrentWeather(ctx context.Context, location models.Location) *models.WeatherData
}

type Handler struct {
	api    WeatherAPI
	logger *zap.Logger
}

func NewHandler(api WeatherAPI, logger *zap.Logger) *Handler {
	return &Handler{api: api, logger: logger}
}

// Current handles GET /weather?lat=&lng=.
func (h *Handler) Current(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid lat and lng query parameters are required"})
		return
	}

	location := models.Location{Latitude: lat, Longitude: lng}
	weather := h.api.GetCurrentWeather(c.Request.Context(), location)
	if weather == nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Weather is currently unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"weather":        weather,
		"icon_url":       weatherclient.IconURL(weather.Icon),
		"recommendation": weatherclient.Recommendation(weather),
	})
}
