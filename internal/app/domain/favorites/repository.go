package favorites

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/city-explorer-api/internal/app/models"
	"github.com/city-explorer-api/internal/observability/metrics"
)

var _ Repository = (*PostgresRepository)(nil)

type Repository interface {
	Add(ctx context.Context, userID string, place models.Place) (*models.Favorite, error)
	Remove(ctx context.Context, userID, placeID string) error
	IsFavorite(ctx context.Context, userID, placeID string) (bool, error)
	List(ctx context.Context, userID string) ([]models.Favorite, error)
	ListFiltered(ctx context.Context, userID string, filter models.FavoritesFilter) ([]models.Favorite, int, error)
}

// DB is the pool surface the repository needs; satisfied by *pgxpool.Pool
// and by pgxmock in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresRepository struct {
	logger *zap.Logger
	pgpool DB
}

func NewPostgresRepository(pgpool DB, logger *zap.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

// Add saves a place snapshot. Re-adding an existing favorite refreshes the
// snapshot instead of failing.
func (r *PostgresRepository) Add(ctx context.Context, userID string, place models.Place) (*models.Favorite, error) {
	ctx, span := otel.Tracer("FavoritesRepository").Start(ctx, "Add", trace.WithAttributes(
		attribute.String("place.id", place.ID),
	))
	defer span.End()

	var address *string
	if place.Address != "" {
		address = &place.Address
	}

	query := `
        INSERT INTO favorites (user_id, place_id, name, lat, lng, category, address, rating)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (user_id, place_id) DO UPDATE SET
            name = EXCLUDED.name,
            lat = EXCLUDED.lat,
            lng = EXCLUDED.lng,
            category = EXCLUDED.category,
            address = EXCLUDED.address,
            rating = EXCLUDED.rating
        RETURNING id, user_id, place_id, name, lat, lng, category, address, rating, created_at`

	var fav models.Favorite
	err := r.pgpool.QueryRow(ctx, query,
		userID, place.ID, place.Name, place.Lat, place.Lng, place.Category, address, place.Rating,
	).Scan(&fav.ID, &fav.UserID, &fav.PlaceID, &fav.Name, &fav.Lat, &fav.Lng, &fav.Category, &fav.Address, &fav.Rating, &fav.CreatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database error")
		metrics.RecordDBError(ctx, "favorites")
		r.logger.Error("Error inserting favorite", zap.Error(err), zap.String("placeID", place.ID))
		return nil, fmt.Errorf("database error adding favorite: %w", err)
	}

	span.SetStatus(codes.Ok, "Favorite saved")
	return &fav, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, placeID string) error {
	query := `DELETE FROM favorites WHERE user_id = $1 AND place_id = $2`
	tag, err := r.pgpool.Exec(ctx, query, userID, placeID)
	if err != nil {
		metrics.RecordDBError(ctx, "favorites")
		r.logger.Error("Error removing favorite", zap.Error(err), zap.String("placeID", placeID))
		return fmt.Errorf("database error removing favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("favorite not found: %w", models.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) IsFavorite(ctx context.Context, userID, placeID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND place_id = $2)`
	err := r.pgpool.QueryRow(ctx, query, userID, placeID).Scan(&exists)
	if err != nil {
		metrics.RecordDBError(ctx, "favorites")
		r.logger.Error("Error checking favorite", zap.Error(err), zap.String("placeID", placeID))
		return false, fmt.Errorf("database error checking favorite: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]models.Favorite, error) {
	query := `
        SELECT id, user_id, place_id, name, lat, lng, category, address, rating, created_at
        FROM favorites
        WHERE user_id = $1
        ORDER BY created_at DESC`

	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		metrics.RecordDBError(ctx, "favorites")
		r.logger.Error("Error listing favorites", zap.Error(err))
		return nil, fmt.Errorf("database error listing favorites: %w", err)
	}
	defer rows.Close()

	return scanFavorites(rows)
}

var sortColumns = map[string]string{
	"created_at": "created_at",
	"name":       "name",
	"rating":     "rating",
}

// ListFiltered applies optional text search, category filtering, sorting
// and pagination, and returns the page plus the total match count.
func (r *PostgresRepository) ListFiltered(ctx context.Context, userID string, filter models.FavoritesFilter) ([]models.Favorite, int, error) {
	ctx, span := otel.Tracer("FavoritesRepository").Start(ctx, "ListFiltered")
	defer span.End()

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	base := psql.Select().From("favorites").Where(sq.Eq{"user_id": userID})
	if filter.SearchText != "" {
		pattern := "%" + filter.SearchText + "%"
		base = base.Where(sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"address": pattern},
		})
	}
	if filter.Category != "" {
		base = base.Where(sq.Eq{"category": filter.Category})
	}

	countSQL, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int
	if err := r.pgpool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Count query failed")
		metrics.RecordDBError(ctx, "favorites")
		r.logger.Error("Error counting favorites", zap.Error(err))
		return nil, 0, fmt.Errorf("database error counting favorites: %w", err)
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if filter.SortOrder == "asc" {
		direction = "ASC"
	}

	listQuery := base.Columns("id", "user_id", "place_id", "name", "lat", "lng", "category", "address", "rating", "created_at").
		OrderBy(column + " " + direction)
	if filter.Limit > 0 {
		listQuery = listQuery.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		listQuery = listQuery.Offset(uint64(filter.Offset))
	}

	listSQL, listArgs, err := listQuery.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, listSQL, listArgs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "List query failed")
		metrics.RecordDBError(ctx, "favorites")
		r.logger.Error("Error listing filtered favorites", zap.Error(err))
		return nil, 0, fmt.Errorf("database error listing favorites: %w", err)
	}
	defer rows.Close()

	favorites, err := scanFavorites(rows)
	if err != nil {
		return nil, 0, err
	}

	span.SetStatus(codes.Ok, "Favorites listed")
	return favorites, total, nil
}

func scanFavorites(rows pgx.Rows) ([]models.Favorite, error) {
	favorites := []models.Favorite{}
	for rows.Next() {
		var fav models.Favorite
		err := rows.Scan(&fav.ID, &fav.UserID, &fav.PlaceID, &fav.Name, &fav.Lat, &fav.Lng, &fav.Category, &fav.Address, &fav.Rating, &fav.CreatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return favorites, nil
			}
			return nil, fmt.Errorf("error scanning favorite row: %w", err)
		}
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorite rows: %w", err)
	}
	return favorites, nil
}
