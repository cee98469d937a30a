package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
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
	// Register stores a new user with a HASHED password. Returns the new user ID.
	Register(ctx context.Context, username, email, hashedPassword string) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.UserAuth, error)
	GetUserByID(ctx context.Context, userID string) (*models.UserAuth, error)
	// UpdatePassword updates the user's HASHED password.
	UpdatePassword(ctx context.Context, userID, newHashedPassword string) error
	StoreResetToken(ctx context.Context, userID string, token uuid.UUID, expiresAt time.Time) error
}

type PostgresRepository struct {
	logger *zap.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresRepository(pgxpool *pgxpool.Pool, logger *zap.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgxpool,
	}
}

func (r *PostgresRepository) Register(ctx context.Context, username, email, hashedPassword string) (string, error) {
	ctx, span := otel.Tracer("AuthRepository").Start(ctx, "Register", trace.WithAttributes(
		attribute.String("username", username),
		attribute.String("email", email),
	))
	defer span.End()

	var userID string
	query := `INSERT INTO users (username, email, password_hash, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	err := r.pgpool.QueryRow(ctx, query, username, email, hashedPassword, time.Now()).Scan(&userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database error")
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", fmt.Errorf("email or username already exists: %w", models.ErrConflict)
		}
		metrics.RecordDBError(ctx, "users")
		r.logger.Error("Error inserting user", zap.Error(err), zap.String("email", email))
		return "", fmt.Errorf("database error registering user: %w", err)
	}

	span.SetStatus(codes.Ok, "User created")
	r.logger.Info("User registered successfully", zap.String("userID", userID))
	return userID, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.UserAuth, error) {
	var user models.UserAuth
	query := `SELECT id, username, email, password_hash, created_at, updated_at FROM users WHERE email = $1`
	err := r.pgpool.QueryRow(ctx, query, email).Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user with email %s not found: %w", email, models.ErrNotFound)
		}
		metrics.RecordDBError(ctx, "users")
		r.logger.Error("Error fetching user by email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return &user, nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, userID string) (*models.UserAuth, error) {
	var user models.UserAuth
	query := `SELECT id, username, email, password_hash, created_at, updated_at FROM users WHERE id = $1`
	err := r.pgpool.QueryRow(ctx, query, userID).Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user with ID %s not found: %w", userID, models.ErrNotFound)
		}
		metrics.RecordDBError(ctx, "users")
		r.logger.Error("Error fetching user by ID", zap.Error(err), zap.String("userID", userID))
		return nil, fmt.Errorf("database error fetching user by ID: %w", err)
	}
	return &user, nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, userID, newHashedPassword string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.pgpool.Exec(ctx, query, newHashedPassword, userID)
	if err != nil {
		metrics.RecordDBError(ctx, "users")
		r.logger.Error("Error updating password hash", zap.Error(err), zap.String("userID", userID))
		return fmt.Errorf("database error updating password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", models.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) StoreResetToken(ctx context.Context, userID string, token uuid.UUID, expiresAt time.Time) error {
	query := `INSERT INTO password_reset_tokens (token, user_id, expires_at) VALUES ($1, $2, $3)`
	_, err := r.pgpool.Exec(ctx, query, token, userID, expiresAt)
	if err != nil {
		metrics.RecordDBError(ctx, "password_reset_tokens")
		r.logger.Error("Error storing reset token", zap.Error(err), zap.String("userID", userID))
		return fmt.Errorf("database error storing reset token: %w", err)
	}
	return nil
}
