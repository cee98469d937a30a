package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL time.Duration
	ResetTokenTTL  time.Duration
	Issuer         string
	Audience       string
}

// TomTomConfig configures the places/routing/geocoding provider client.
type TomTomConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// OpenWeatherConfig configures the weather provider client.
type OpenWeatherConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type Config struct {
	Repositories RepositoriesConfig
	JWT          JWTConfig
	TomTom       TomTomConfig
	OpenWeather  OpenWeatherConfig
	Gemini       GeminiConfig
	ServerPort   string
}

func Load() (*Config, error) {
	cfg := &Config{
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
				DB:       getEnvOrDefault("POSTGRES_DB", "city_explorer"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: 30,
				MinConns: 5,
			},
		},
		JWT: JWTConfig{
			SecretKey:      getEnvOrDefault("JWT_SECRET_KEY", ""),
			AccessTokenTTL: getEnvDuration("JWT_ACCESS_TOKEN_TTL", 24*time.Hour),
			ResetTokenTTL:  getEnvDuration("JWT_RESET_TOKEN_TTL", time.Hour),
			Issuer:         getEnvOrDefault("JWT_ISSUER", "city-explorer"),
			Audience:       getEnvOrDefault("JWT_AUDIENCE", "city-explorer-app"),
		},
		TomTom: TomTomConfig{
			APIKey:  getEnvOrDefault("TOMTOM_API_KEY", ""),
			BaseURL: getEnvOrDefault("TOMTOM_BASE_URL", "https://api.tomtom.com"),
			Timeout: getEnvDuration("TOMTOM_TIMEOUT", 10*time.Second),
		},
		OpenWeather: OpenWeatherConfig{
			APIKey:  getEnvOrDefault("OPENWEATHER_API_KEY", ""),
			BaseURL: getEnvOrDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
			Timeout: getEnvDuration("OPENWEATHER_TIMEOUT", 10*time.Second),
		},
		Gemini: GeminiConfig{
			APIKey: getEnvOrDefault("GEMINI_API_KEY", ""),
			Model:  getEnvOrDefault("GEMINI_MODEL", "gemini-flash-latest"),
		},
		ServerPort: getEnvOrDefault("SERVER_PORT", "8091"),
	}

	if cfg.Repositories.Postgres.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
	}
	if cfg.JWT.SecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Plain integers are treated as seconds
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
