// Package favorites persists per-user place snapshots. Anonymous sessions
// get empty reads and silently skipped writes instead of errors, matching
// the optional sign-in model of the app.
package favorites

import (
	"context"

	"go.uber.org/zap"

	"github.com/city-explorer-api/internal/app/models"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Add(ctx context.Context, userID string, place models.Place) (*models.Favorite, error)
	Remove(ctx context.Context, userID, placeID string) error
	IsFavorite(ctx context.Context, userID, placeID string) (bool, error)
	List(ctx context.Context, userID string) ([]models.Favorite, error)
	ListFiltered(ctx context.Context, userID string, filter models.FavoritesFilter) ([]models.Favorite, int, error)
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

// Add saves the place for the user. Anonymous writes are skipped and
// return a nil favorite with no error.
func (s *ServiceImpl) Add(ctx context.Context, userID string, place models.Place) (*models.Favorite, error) {
	if isAnonymous(userID) {
		s.logger.Debug("Skipping favorite add for anonymous session", zap.String("placeID", place.ID))
		return nil, nil
	}
	return s.repo.Add(ctx, userID, place)
}

func (s *ServiceImpl) Remove(ctx context.Context, userID, placeID string) error {
	if isAnonymous(userID) {
		s.logger.Debug("Skipping favorite remove for anonymous session", zap.String("placeID", placeID))
		return nil
	}
	return s.repo.Remove(ctx, userID, placeID)
}

func (s *ServiceImpl) IsFavorite(ctx context.Context, userID, placeID string) (bool, error) {
	if isAnonymous(userID) {
		return false, nil
	}
	return s.repo.IsFavorite(ctx, userID, placeID)
}

func (s *ServiceImpl) List(ctx context.Context, userID string) ([]models.Favorite, error) {
	if isAnonymous(userID) {
		return []models.Favorite{}, nil
	}
	return s.repo.List(ctx, userID)
}

func (s *ServiceImpl) ListFiltered(ctx context.Context, userID string, filter models.FavoritesFilter) ([]models.Favorite, int, error) {
	if isAnonymous(userID) {
		return []models.Favorite{}, 0, nil
	}
	return s.repo.ListFiltered(ctx, userID, filter)
}
