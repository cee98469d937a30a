// Package history records and serves the per-user search log. Anonymous
// sessions are silently skipped; failing to record a search never fails
// the search itself.
package history

import (
	"context"

	"go.uber.org/zap"

	"github.com/city-explorer-api/internal/app/models"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Record(ctx context.Context, userID, query string, location *models.Location, category string)
	List(ctx context.Context, userID string) ([]models.SearchHistoryItem, error)
	Clear(ctx context.Context, userID string) error
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
}

func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo}
}

func isAnonymous(userID string) bool {
	return userID == "" || userID == "anonymous"
}

// Record is fire-and-forget: errors are logged, never returned.
func (s *ServiceImpl) Record(ctx context.Context, userID, query string, location *models.Location, category string) {
	if isAnonymous(userID) || query == "" {
		return
	}

	entry := models.SearchHistoryItem{Query: query}
	if location != nil {
		entry.Lat = &location.Latitude
		entry.Lng = &location.Longitude
	}
	if category != "" {
		entry.Category = &category
	}

	if err := s.repo.Add(ctx, userID, entry); err != nil {
		s.logger.Warn("Failed to record search history", zap.Error(err), zap.String("query", query))
	}
}

func (s *ServiceImpl) List(ctx context.Context, userID string) ([]models.SearchHistoryItem, error) {
	if isAnonymous(userID) {
		return []models.SearchHistoryItem{}, nil
	}
	return s.repo.List(ctx, userID)
}

func (s *ServiceImpl) Clear(ctx context.Context, userID string) error {
	if isAnonymous(userID) {
		return nil
	}
	return s.repo.Clear(ctx, userID)
}
