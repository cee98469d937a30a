// Package weather implements the current-conditions client.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
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
	cfg        config.OpenWeatherConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg config.OpenWeatherConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type currentWeatherResponse struct {
	Cod  json.Number `json:"cod"` // the provider sends a number on success, a string on errors
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// GetCurrentWeather fetches current conditions in metric units with the
// Turkish locale. Temperatures are rounded to whole degrees. Returns nil
// on any failure; weather is optional context everywhere it is consumed.
func (c *Client) GetCurrentWeather(ctx context.Context, location models.Location) (weather *models.WeatherData) {
	l := c.logger.With(zap.String("method", "GetCurrentWeather"))

	start := time.Now()
	defer func() {
		metrics.Get().ProviderRequestDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
			attribute.String("provider", "openweather"),
			attribute.String("operation", "current_weather"),
			attribute.Bool("success", weather != nil),
		))
	}()

	weatherURL := fmt.Sprintf("%s/weather?lat=%f&lon=%f&appid=%s&units=metric&lang=tr",
		c.cfg.BaseURL, location.Latitude, location.Longitude, c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, weatherURL, nil)
	if err != nil {
		l.Error("Failed to create weather request", zap.Error(err))
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		l.Error("Weather request failed", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	var data currentWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		l.Error("Failed to decode weather response", zap.Error(err))
		return nil
	}

	if data.Cod.String() != "200" {
		l.Error("Weather provider error",
			zap.String("cod", data.Cod.String()),
			zap.String("message", data.Message))
		return nil
	}

	if len(data.Weather) == 0 {
		l.Error("Weather response missing conditions")
		return nil
	}

	weather = &models.WeatherData{
		Temp:        int(math.Round(data.Main.Temp)),
		FeelsLike:   int(math.Round(data.Main.FeelsLike)),
		TempMin:     int(math.Round(data.Main.TempMin)),
		TempMax:     int(math.Round(data.Main.TempMax)),
		Humidity:    data.Main.Humidity,
		Description: data.Weather[0].Description,
		Icon:        data.Weather[0].Icon,
		WindSpeed:   data.Wind.Speed,
		Clouds:      data.Clouds.All,
		City:        data.Name,
	}

	l.Debug("Weather fetched",
		zap.Int("temp", weather.Temp),
		zap.String("description", weather.Description))
	return weather
}

// IconURL returns the provider icon image URL.
func IconURL(icon string) string {
	return fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", icon)
}

// Recommendation returns canned Turkish advice for the given conditions.
func Recommendation(weather *models.WeatherData) string {
	switch {
	case weather.Temp < 10:
		return "Hava soğuk, sıcak giysiler giymeyi unutmayın"
	case weather.Temp > 30:
		return "Hava çok sıcak, bol su için ve güneş kremi kullanın"
	case strings.Contains(weather.Description, "yağmur"):
		return "Yağmur yağıyor, şemsiye almayı unutmayın"
	case weather.Clouds > 70:
		return "Hava bulutlu, yağmur yağabilir"
	default:
		return "Hava güzel, dışarı çıkmak için ideal"
	}
}
