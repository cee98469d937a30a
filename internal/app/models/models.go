package models

import (
	"time"

	"github.com/google/uuid"
)

// Location is a WGS84 coordinate pair.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is a point of interest returned by the places provider.
// Distance is in kilometers from the search origin and is nil when the
// provider did not report one.
type Place struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Category string   `json:"category"`
	Address  string   `json:"address,omitempty"`
	Rating   *float64 `json:"rating,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Website  string   `json:"website,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
}

// WeatherData holds current conditions. Temperature fields are rounded
// to whole degrees Celsius.
type WeatherData struct {
	Temp        int     `json:"temp"`
	FeelsLike   int     `json:"feels_like"`
	TempMin     int     `json:"temp_min"`
	TempMax     int     `json:"temp_max"`
	Humidity    int     `json:"humidity"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	WindSpeed   float64 `json:"wind_speed"`
	Clouds      int     `json:"clouds"`
	City        string  `json:"city"`
}

// RouteStep is a single leg point of a calculated route. The end location
// is the next point on the leg; the final step degenerates to zero length.
type RouteStep struct {
	Instruction   string   `json:"instruction"`
	Distance      float64  `json:"distance"`
	Duration      int      `json:"duration"`
	StartLocation Location `json:"start_location"`
	EndLocation   Location `json:"end_location"`
}

// Route is a calculated route. TotalDistance is in kilometers,
// TotalDuration in seconds.
type Route struct {
	ID            string      `json:"id"`
	StartLat      float64     `json:"start_lat"`
	StartLng      float64     `json:"start_lng"`
	TotalDistance float64     `json:"total_distance"`
	TotalDuration int         `json:"total_duration"`
	TransportMode string      `json:"transport_mode"`
	Polyline      string      `json:"polyline"`
	Points        []Location  `json:"points,omitempty"`
	Steps         []RouteStep `json:"steps,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// ChatMessage is one entry of a per-session assistant transcript.
type ChatMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Text      string    `json:"text"`
	HasRoute  bool      `json:"has_route"`
	Route     *Route    `json:"route,omitempty"`
	Place     *Place    `json:"place,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Favorite is a persisted place snapshot for a user.
type Favorite struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	PlaceID   string    `json:"place_id"`
	Name      string    `json:"name"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Category  string    `json:"category"`
	Address   *string   `json:"address,omitempty"`
	Rating    *float64  `json:"rating,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FavoritesFilter narrows and orders a favorites listing.
type FavoritesFilter struct {
	UserID     uuid.UUID
	SearchText string
	Category   string
	SortBy     string
	SortOrder  string
	Limit      int
	Offset     int
}

// SearchHistoryItem is a recorded search query.
type SearchHistoryItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Query     string    `json:"query"`
	Lat       *float64  `json:"lat,omitempty"`
	Lng       *float64  `json:"lng,omitempty"`
	Category  *string   `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// User is the public view of an account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserAuth is the repository view of an account, including the password hash.
type UserAuth struct {
	ID        string
	Username  string
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LocationState is the server-side per-session location container.
type LocationState struct {
	SessionID    string       `json:"session_id"`
	UserLocation *Location    `json:"user_location,omitempty"`
	LocationName string       `json:"location_name,omitempty"`
	Weather      *WeatherData `json:"weather,omitempty"`
	NearbyPlaces []Place      `json:"nearby_places"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
