package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/city-explorer-api/internal/app/domain/assistant"
	"github.com/city-explorer-api/internal/app/domain/auth"
	"github.com/city-explorer-api/internal/app/domain/favorites"
	"github.com/city-explorer-api/internal/app/domain/history"
	locationPkg "github.com/city-explorer-api/internal/app/domain/location"
	"github.com/city-explorer-api/internal/app/domain/mapview"
	"github.com/city-explorer-api/internal/app/domain/places"
	weatherHandlers "github.com/city-explorer-api/internal/app/domain/weather"
	"github.com/city-explorer-api/internal/app/middleware"
	"github.com/city-explorer-api/internal/infrastructure/gemini"
	"github.com/city-explorer-api/internal/infrastructure/tomtom"
	weatherClient "github.com/city-explorer-api/internal/infrastructure/weather"
	"github.com/city-explorer-api/internal/pkg/config"
)

type AppHandlers struct {
	Auth      *auth.Handler
	Places    *places.Handler
	Weather   *weatherHandlers.Handler
	Assistant *assistant.Handler
	Favorites *favorites.Handler
	History   *history.Handler
	Location  *locationPkg.Handler
	Map       *mapview.Handler
}

// Setup wires repositories, services and handlers and registers all routes.
func Setup(r *gin.Engine, dbPool *pgxpool.Pool, cfg *config.Config, log *zap.Logger) {
	handlers := setupDependencies(r, dbPool, cfg, log)
	setupRouter(r, handlers, cfg, log)
}

func setupDependencies(r *gin.Engine, dbPool *pgxpool.Pool, cfg *config.Config, log *zap.Logger) *AppHandlers {
	// Provider clients
	tomtomClient := tomtom.NewClient(cfg.TomTom, log)
	weatherAPI := weatherClient.NewClient(cfg.OpenWeather, log)
	geminiClient := gemini.NewClient(context.Background(), cfg.Gemini, log)

	// Repositories
	authRepo := auth.NewPostgresRepository(dbPool, log)
	favoritesRepo := favorites.NewPostgresRepository(dbPool, log)
	historyRepo := history.NewPostgresRepository(dbPool, log)

	// Services
	authService := auth.NewService(authRepo, cfg.JWT, log)
	favoritesService := favorites.NewService(favoritesRepo, log)
	historyService := history.NewService(historyRepo, log)
	placesService := places.NewService(tomtomClient, log)
	locationManager := locationPkg.NewManager(placesService, weatherAPI, log)
	assistantService := assistant.NewService(geminiClient, placesService, weatherAPI, historyService, log)

	return &AppHandlers{
		Auth:      auth.NewHandler(authService, log),
		Places:    places.NewHandler(placesService, historyService, log),
		Weather:   weatherHandlers.NewHandler(weatherAPI, log),
		Assistant: assistant.NewHandler(assistantService, locationManager, log),
		Favorites: favorites.NewHandler(favoritesService, log),
		History:   history.NewHandler(historyService, log),
		Location:  locationPkg.NewHandler(locationManager, log),
		Map:       mapview.NewHandler(cfg.TomTom.APIKey, locationManager, assistantService, log),
	}
}

func setupRouter(r *gin.Engine, h *AppHandlers, cfg *config.Config, log *zap.Logger) {
	requiredAuth := middleware.JWTAuthMiddleware(middleware.JWTConfig{
		SecretKey: cfg.JWT.SecretKey,
		Issuer:    cfg.JWT.Issuer,
		Audience:  cfg.JWT.Audience,
		Logger:    log,
	})
	optionalAuth := middleware.JWTAuthMiddleware(middleware.JWTConfig{
		SecretKey: cfg.JWT.SecretKey,
		Issuer:    cfg.JWT.Issuer,
		Audience:  cfg.JWT.Audience,
		Logger:    log,
		Optional:  true,
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", h.Auth.SignUp)
		authGroup.POST("/signin", h.Auth.SignIn)
		authGroup.POST("/signout", h.Auth.SignOut)
		authGroup.POST("/forgot-password", h.Auth.ForgotPassword)
		authGroup.POST("/change-password", requiredAuth, h.Auth.ChangePassword)
		authGroup.GET("/session", requiredAuth, h.Auth.Session)
	}

	placesGroup := r.Group("/places", optionalAuth)
	{
		placesGroup.GET("/nearby", h.Places.Nearby)
		placesGroup.GET("/search", h.Places.Search)
	}
	r.POST("/routes", optionalAuth, h.Places.Route)
	r.GET("/geocode/reverse", optionalAuth, h.Places.ReverseGeocode)
	r.GET("/weather", optionalAuth, h.Weather.Current)

	assistantGroup := r.Group("/assistant", optionalAuth)
	{
		assistantGroup.POST("/message", h.Assistant.Message)
		assistantGroup.GET("/history", h.Assistant.History)
		assistantGroup.DELETE("/history", h.Assistant.Clear)
	}

	favoritesGroup := r.Group("/favorites", optionalAuth)
	{
		favoritesGroup.GET("", h.Favorites.List)
		favoritesGroup.POST("", h.Favorites.Add)
		favoritesGroup.DELETE("/:placeID", h.Favorites.Remove)
		favoritesGroup.GET("/:placeID/status", h.Favorites.Status)
	}

	historyGroup := r.Group("/history", optionalAuth)
	{
		historyGroup.GET("", h.History.List)
		historyGroup.POST("", h.History.Record)
		historyGroup.DELETE("", h.History.Clear)
	}

	locationGroup := r.Group("/location", optionalAuth)
	{
		locationGroup.PUT("", h.Location.Update)
		locationGroup.GET("", h.Location.Get)
	}

	r.GET("/map", optionalAuth, h.Map.Page)
}
