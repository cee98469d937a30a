package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/city-explorer-api/internal/app/models"
	"github.com/city-explorer-api/internal/observability/metrics"
)

const listLimit = 20

var _ Repository = (*PostgresRepository)(nil)

type Repository interface {
	Add(ctx context.Context, userID string, entry models.SearchHistoryItem) error
	List(ctx context.Context, userID string) ([]models.SearchHistoryItem, error)
	Clear(ctx context.Context, userID string) error
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

func (r *PostgresRepository) Add(ctx context.Context, userID string, entry models.SearchHistoryItem) error {
	query := `INSERT INTO search_history (user_id, query, lat, lng, category) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pgpool.Exec(ctx, query, userID, entry.Query, entry.Lat, entry.Lng, entry.Category)
	if err != nil {
		metrics.RecordDBError(ctx, "search_history")
		r.logger.Error("Error inserting search history", zap.Error(err), zap.String("query", entry.Query))
		return fmt.Errorf("database error recording search: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]models.SearchHistoryItem, error) {
	query := `
        SELECT id, user_id, query, lat, lng, category, created_at
        FROM search_history
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2`

	rows, err := r.pgpool.Query(ctx, query, userID, listLimit)
	if err != nil {
		metrics.RecordDBError(ctx, "search_history")
		r.logger.Error("Error listing search history", zap.Error(err))
		return nil, fmt.Errorf("database error listing search history: %w", err)
	}
	defer rows.Close()

	items := []models.SearchHistoryItem{}
	for rows.Next() {
		var item models.SearchHistoryItem
		err := rows.Scan(&item.ID, &item.UserID, &item.Query, &item.Lat, &item.Lng, &item.Category, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning search history row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search history rows: %w", err)
	}
	return items, nil
}

func (r *PostgresRepository) Clear(ctx context.Context, userID string) error {
	query := `DELETE FROM search_history WHERE user_id = $1`
	_, err := r.pgpool.Exec(ctx, query, userID)
	if err != nil {
		metrics.RecordDBError(ctx, "search_history")
		r.logger.Error("Error clearing search history", zap.Error(err))
		return fmt.Errorf("database error clearing search history: %w", err)
	}
	return nil
}
