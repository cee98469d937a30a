// Package auth implements account management: signup, signin, password
// changes and reset token issuance. Sessions are stateless JWTs.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/city-explorer-api/internal/app/middleware"
	"github.com/city-explorer-api/internal/app/models"
	"github.com/city-explorer-api/internal/pkg/config"
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the authentication business logic contract.
type Service interface {
	Register(ctx context.Context, username, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (token string, user *models.User, err error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	// IssueResetToken creates a reset token for the account behind email.
	// Callers must not reveal to the client whether the account exists.
	IssueResetToken(ctx context.Context, email string) error
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
	jwt    *middleware.JWTService
	cfg    config.JWTConfig
}

func NewService(repo Repository, cfg config.JWTConfig, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		jwt:    middleware.NewJWTService(),
		cfg:    cfg,
	}
}

func (s *ServiceImpl) jwtConfig() middleware.JWTConfig {
	return middleware.JWTConfig{
		SecretKey:       s.cfg.SecretKey,
		TokenExpiration: s.cfg.AccessTokenTTL,
		Issuer:          s.cfg.Issuer,
		Audience:        s.cfg.Audience,
		Logger:          s.logger,
	}
}

func (s *ServiceImpl) Register(ctx context.Context, username, email, password string) (string, error) {
	l := s.logger.With(zap.String("method", "Register"), zap.String("email", email))
	l.Debug("Attempting registration")

	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register", trace.WithAttributes(
		attribute.String("username", username),
		attribute.String("email", email),
	))
	defer span.End()

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		l.Error("Failed to hash password", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Password hashing failed")
		return "", fmt.Errorf("could not process password")
	}

	userID, err := s.repo.Register(ctx, username, email, string(hashedPasswordBytes))
	if err != nil {
		l.Error("Repository registration failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Repository registration failed")
		return "", fmt.Errorf("registration failed: %w", err)
	}

	l.Info("Registration successful", zap.String("userID", userID))
	span.SetStatus(codes.Ok, "User registered")
	return userID, nil
}

// Login validates credentials and returns a signed access token.
func (s *ServiceImpl) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	l := s.logger.With(zap.String("method", "Login"), zap.String("email", email))
	l.Debug("Attempting login")

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		l.Warn("GetUserByEmail failed")
		// Don't reveal if user exists or password is wrong
		return "", nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		l.Warn("Password comparison failed", zap.String("userID", user.ID))
		return "", nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	token, err := s.jwt.GenerateToken(s.jwtConfig(), user.ID, user.Email, user.Username)
	if err != nil {
		l.Error("Failed to generate token", zap.String("userID", user.ID), zap.Error(err))
		return "", nil, fmt.Errorf("app error generating token: %w", err)
	}

	l.Info("Login successful", zap.String("userID", user.ID))
	return token, &models.User{ID: user.ID, Username: user.Username, Email: user.Email}, nil
}

func (s *ServiceImpl) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.User{ID: user.ID, Username: user.Username, Email: user.Email}, nil
}

func (s *ServiceImpl) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	l := s.logger.With(zap.String("method", "UpdatePassword"), zap.String("userID", userID))

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		l.Warn("Old password mismatch")
		return fmt.Errorf("invalid password: %w", models.ErrUnauthenticated)
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		l.Error("Failed to hash new password", zap.Error(err))
		return fmt.Errorf("could not process password")
	}

	if err := s.repo.UpdatePassword(ctx, userID, string(hashedBytes)); err != nil {
		return err
	}

	l.Info("Password updated")
	return nil
}

func (s *ServiceImpl) IssueResetToken(ctx context.Context, email string) error {
	l := s.logger.With(zap.String("method", "IssueResetToken"), zap.String("email", email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		// Account enumeration guard: log and succeed silently.
		l.Debug("Reset requested for unknown email")
		return nil
	}

	token := uuid.New()
	expiresAt := time.Now().Add(s.cfg.ResetTokenTTL)
	if err := s.repo.StoreResetToken(ctx, user.ID, token, expiresAt); err != nil {
		l.Error("Failed to store reset token", zap.Error(err))
		return fmt.Errorf("could not issue reset token: %w", err)
	}

	// TODO: deliver the token by email once an outbound mail provider is wired.
	l.Info("Reset token issued", zap.String("userID", user.ID))
	return nil
}
