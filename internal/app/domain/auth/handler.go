package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/city-explorer-api/internal/app/middleware"
	"github.com/city-explorer-api/internal/app/models"
	"github.com/city-explorer-api/internal/observability/metrics"
)

const authCookieName = "auth_token"

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type signUpRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type changePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func validatePassword(password, confirm string) string {
	if len(password) < 6 {
		return "Password must be at least 6 characters"
	}
	if password != confirm {
		return "Passwords do not match"
	}
	return ""
}

// SignUp handles POST /auth/signup.
func (h *Handler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username, email and password are required"})
		return
	}
	if msg := validatePassword(req.Password, req.ConfirmPassword); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	userID, err := h.service.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		metrics.Get().AuthRequestsTotal.Add(c.Request.Context(), 1)
		if errors.Is(err, models.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email or username already exists"})
			return
		}
		h.logger.Error("SignUp failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}
	metrics.Get().AuthRequestsTotal.Add(c.Request.Context(), 1)

	token, user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// Account exists but auto-login failed; the client can sign in manually.
		c.JSON(http.StatusCreated, gin.H{"user_id": userID})
		return
	}

	h.setAuthCookie(c, token)
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// SignIn handles POST /auth/signin.
func (h *Handler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	token, user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	metrics.Get().AuthRequestsTotal.Add(c.Request.Context(), 1)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	h.setAuthCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// SignOut handles POST /auth/signout. Tokens are stateless; signout just
// clears the cookie.
func (h *Handler) SignOut(c *gin.Context) {
	c.SetCookie(authCookieName, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

// ForgotPassword handles POST /auth/forgot-password. Always returns 204 so
// the response does not leak which emails have accounts.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	if err := h.service.IssueResetToken(c.Request.Context(), req.Email); err != nil {
		h.logger.Error("IssueResetToken failed", zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}

// ChangePassword handles POST /auth/change-password. Requires authentication.
func (h *Handler) ChangePassword(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Old and new passwords are required"})
		return
	}
	if msg := validatePassword(req.NewPassword, req.ConfirmPassword); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	err := h.service.UpdatePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, models.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
			return
		}
		h.logger.Error("ChangePassword failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not change password"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Session handles GET /auth/session. Requires authentication.
func (h *Handler) Session(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	user, err := h.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session user no longer exists"})
			return
		}
		h.logger.Error("Session lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) setAuthCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(authCookieName, token, 86400, "/", "", false, true)
}
