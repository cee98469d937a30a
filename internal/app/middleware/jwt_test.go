package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(optional bool) JWTConfig {
	return JWTConfig{
		SecretKey:       "test-secret",
		TokenExpiration: time.Hour,
		Issuer:          "city-explorer",
		Audience:        "city-explorer-app",
		Optional:        optional,
	}
}

func authRouter(config JWTConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", JWTAuthMiddleware(config), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":       c.GetString("user_id"),
			"authenticated": c.GetBool("authenticated"),
		})
	})
	return r
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService()
	config := testConfig(false)

	token, err := svc.GenerateToken(config, "user-1", "ayse@example.com", "ayse")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(config, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ayse@example.com", claims.Email)
	assert.Equal(t, "ayse", claims.Username)
	assert.Equal(t, "city-explorer", claims.Issuer)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := NewJWTService()

	token, err := svc.GenerateToken(testConfig(false), "user-1", "", "")
	require.NoError(t, err)

	_, err = svc.ValidateToken(JWTConfig{SecretKey: "other-secret"}, token)
	assert.Error(t, err)
}

func TestValidateExpiredToken(t *testing.T) {
	svc := NewJWTService()
	config := testConfig(false)
	config.TokenExpiration = -time.Minute

	token, err := svc.GenerateToken(config, "user-1", "", "")
	require.NoError(t, err)

	_, err = svc.ValidateToken(config, token)
	assert.Error(t, err)
}

func TestMiddlewareBearerToken(t *testing.T) {
	config := testConfig(false)
	token, err := NewJWTService().GenerateToken(config, "user-1", "", "")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	authRouter(config).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"user-1"`)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)
}

func TestMiddlewareCookieFallback(t *testing.T) {
	config := testConfig(false)
	token, err := NewJWTService().GenerateToken(config, "user-1", "", "")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	authRouter(config).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"user-1"`)
}

func TestMiddlewareMissingTokenRejected(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	authRouter(testConfig(false)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddlewareInvalidTokenRejected(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	authRouter(testConfig(false)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalMiddlewareAnonymousPassthrough(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	authRouter(testConfig(true)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"anonymous"`)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestOptionalMiddlewareInvalidTokenFallsBackToAnonymous(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	authRouter(testConfig(true)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"anonymous"`)
}

func TestOptionalMiddlewareValidTokenStillAuthenticates(t *testing.T) {
	config := testConfig(true)
	token, err := NewJWTService().GenerateToken(config, "user-1", "", "")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	authRouter(config).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"user-1"`)
}
