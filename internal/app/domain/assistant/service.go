// Package assistant implements the conversational pipeline: messages are
// first analyzed for navigation intent against nearby places, and only
// fall through to open-ended chat when no route comes out of it.
package assistant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/city-explorer-api/internal/app/domain/history"
	"github.com/city-explorer-api/internal/app/domain/places"
	"github.com/city-explorer-api/internal/app/models"
	"github.com/city-explorer-api/internal/infrastructure/gemini"
)

const (
	fallbackReply = "Üzgünüm, şu anda yanıt veremiyorum. Lütfen daha sonra tekrar deneyin."

	searchRadius = 5000
	searchLimit  = 20

	transcriptTTL = 30 * time.Minute
)

var (
	categoryGenCfg = gemini.GenerationConfig{Temperature: 0.3, MaxOutputTokens: 50}
	routeGenCfg    = gemini.GenerationConfig{Temperature: 0.7, MaxOutputTokens: 4096}
	chatGenCfg     = gemini.GenerationConfig{Temperature: 0.7, TopK: 40, TopP: 0.95, MaxOutputTokens: 8192}
)

// Generator is the model surface the service depends on.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, cfg gemini.GenerationConfig) (string, error)
	Enabled() bool
}

// WeatherAPI provides current conditions for the chat context.
type WeatherAPI interface {
	GetCurrentWeather(ctx context.Context, location models.Location) *models.WeatherData
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	ProcessMessage(ctx context.Context, userID, sessionID, message string, location *models.Location, nearby []models.Place) (*models.ChatMessage, error)
	Transcript(sessionID string) []models.ChatMessage
	LatestRoute(sessionID string) *models.Route
	ClearTranscript(sessionID string)
}

type ServiceImpl struct {
	logger    *zap.Logger
	generator Generator
	places    places.Service
	weather   WeatherAPI
	history   history.Service
	matcher   *categoryMatcher

	mu          sync.Mutex
	transcripts *cache.Cache
}

func NewService(generator Generator, placesService places.Service, weatherAPI WeatherAPI, historyService history.Service, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:      logger,
		generator:   generator,
		places:      placesService,
		weather:     weatherAPI,
		history:     historyService,
		matcher:     newCategoryMatcher(),
		transcripts: cache.New(transcriptTTL, 10*time.Minute),
	}
}

// ProcessMessage runs the full pipeline for one user message and returns
// the assistant reply. Both sides of the exchange are appended to the
// session transcript.
func (s *ServiceImpl) ProcessMessage(ctx context.Context, userID, sessionID, message string, location *models.Location, nearby []models.Place) (*models.ChatMessage, error) {
	l := s.logger.With(zap.String("method", "ProcessMessage"), zap.String("sessionID", sessionID))

	ctx, span := otel.Tracer("AssistantService").Start(ctx, "ProcessMessage", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.Bool("has_location", location != nil),
		attribute.Int("nearby.count", len(nearby)),
	))
	defer span.End()

	if message == "" {
		return nil, fmt.Errorf("message is empty: %w", models.ErrBadRequest)
	}

	s.appendMessage(sessionID, models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      "user",
		Text:      message,
		CreatedAt: time.Now(),
	})

	s.history.Record(ctx, userID, message, location, "")

	if location != nil {
		if reply := s.tryRoute(ctx, sessionID, message, *location, nearby, l); reply != nil {
			span.SetAttributes(attribute.Bool("route.created", true))
			span.SetStatus(codes.Ok, "Route reply")
			return reply, nil
		}
	}

	reply := s.chat(ctx, sessionID, message, location, nearby, l)
	span.SetStatus(codes.Ok, "Chat reply")
	return reply, nil
}

// tryRoute runs the navigation branch. A nil return means the message is
// not a route request (or the branch failed) and chat should answer.
func (s *ServiceImpl) tryRoute(ctx context.Context, sessionID, message string, location models.Location, nearby []models.Place, l *zap.Logger) *models.ChatMessage {
	candidates := nearby

	if len(candidates) == 0 {
		category := s.classifyCategory(ctx, message, l)
		if category != "" {
			l.Debug("Category detected", zap.String("category", category))
			candidates = s.places.Nearby(ctx, location, category, searchRadius, searchLimit)
		} else {
			candidates = s.places.Search(ctx, message, location, searchLimit)
		}
	}
	if len(candidates) == 0 {
		l.Debug("No candidate places for route analysis")
		return nil
	}

	if !s.generator.Enabled() {
		return nil
	}

	reply, err := s.generator.GenerateContent(ctx, buildRoutePrompt(message, candidates), routeGenCfg)
	if err != nil {
		l.Warn("Route analysis generation failed", zap.Error(err))
		return nil
	}

	intent, err := ParseRouteIntent(reply)
	if err != nil {
		l.Warn("Route intent rejected", zap.Error(err))
		return nil
	}
	if !intent.ShouldCreateRoute {
		return nil
	}

	var destination *models.Place
	for _, idx := range intent.PlaceIndices {
		if idx < len(candidates) {
			destination = &candidates[idx]
			break
		}
	}
	if destination == nil {
		l.Warn("Route intent indices out of range", zap.Ints("indices", intent.PlaceIndices))
		return nil
	}

	// A step-less route means the provider found no usable path.
	route := s.places.Route(ctx, location, models.Location{Latitude: destination.Lat, Longitude: destination.Lng}, "pedestrian")
	if route == nil || len(route.Steps) == 0 {
		l.Warn("No usable route to destination", zap.String("destination", destination.Name))
		return nil
	}

	minutes := int(float64(route.TotalDuration)/60 + 0.5)
	text := fmt.Sprintf("%s\n\nHedef: %s\nMesafe: %.1f km\nSüre: %d dakika",
		intent.Explanation, destination.Name, route.TotalDistance, minutes)

	replyMsg := models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      "assistant",
		Text:      text,
		HasRoute:  true,
		Route:     route,
		Place:     destination,
		CreatedAt: time.Now(),
	}
	s.appendMessage(sessionID, replyMsg)

	l.Info("Route created from chat",
		zap.String("destination", destination.Name),
		zap.Float64("distance_km", route.TotalDistance))
	return &replyMsg
}

// classifyCategory asks the model first and falls back to the keyword
// automaton when the model is unavailable or fails.
func (s *ServiceImpl) classifyCategory(ctx context.Context, message string, l *zap.Logger) string {
	if s.generator.Enabled() {
		reply, err := s.generator.GenerateContent(ctx, buildCategoryPrompt(message), categoryGenCfg)
		if err == nil {
			return ParseCategory(reply)
		}
		l.Warn("Category classification failed, using keyword fallback", zap.Error(err))
	}
	return s.matcher.Match(message)
}

func (s *ServiceImpl) chat(ctx context.Context, sessionID, message string, location *models.Location, nearby []models.Place, l *zap.Logger) *models.ChatMessage {
	text := fallbackReply

	if s.generator.Enabled() {
		var weather *models.WeatherData
		locationName := ""
		if location != nil {
			weather = s.weather.GetCurrentWeather(ctx, *location)
			locationName = s.places.ReverseGeocode(ctx, *location)
		}

		prompt := buildChatPrompt(message, time.Now(), weather, locationName, location, nearby)
		reply, err := s.generator.GenerateContent(ctx, prompt, chatGenCfg)
		if err != nil {
			l.Error("Chat generation failed", zap.Error(err))
		} else if stripped := gemini.StripMarkdown(reply); stripped != "" {
			text = stripped
		}
	}

	replyMsg := models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      "assistant",
		Text:      text,
		CreatedAt: time.Now(),
	}
	s.appendMessage(sessionID, replyMsg)
	return &replyMsg
}

func (s *ServiceImpl) appendMessage(sessionID string, msg models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transcript := []models.ChatMessage{}
	if cached, found := s.transcripts.Get(sessionID); found {
		transcript = cached.([]models.ChatMessage)
	}
	transcript = append(transcript, msg)
	s.transcripts.Set(sessionID, transcript, cache.DefaultExpiration)
}

// Transcript returns a copy of the session's message log.
func (s *ServiceImpl) Transcript(sessionID string) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, found := s.transcripts.Get(sessionID); found {
		transcript := cached.([]models.ChatMessage)
		out := make([]models.ChatMessage, len(transcript))
		copy(out, transcript)
		return out
	}
	return []models.ChatMessage{}
}

// LatestRoute returns the route of the most recent route-carrying reply,
// or nil when the session has none.
func (s *ServiceImpl) LatestRoute(sessionID string) *models.Route {
	s.mu.Lock()
	defer s.mu.Unlock()

	cached, found := s.transcripts.Get(sessionID)
	if !found {
		return nil
	}
	transcript := cached.([]models.ChatMessage)
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].HasRoute && transcript[i].Route != nil {
			return transcript[i].Route
		}
	}
	return nil
}

func (s *ServiceImpl) ClearTranscript(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts.Delete(sessionID)
}
