package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmops/backend/internal/infrastructure/auth"
	"github.com/farmops/backend/internal/infrastructure/config"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-for-middleware",
		AccessTokenExpiration: time.Hour,
		Issuer:                "farmops-test",
	})
}

func newJWTRouter(cfg JWTMiddlewareConfig) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(cfg))
	router.GET("/protected", func(c *gin.Context) {
		c.String(http.StatusOK, GetJWTUserID(c))
	})
	router.GET("/public/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func TestJWTAuthMiddleware(t *testing.T) {
	svc := newTestJWTService()
	router := newJWTRouter(JWTMiddlewareConfig{JWTService: svc})

	t.Run("valid token resolves the actor", func(t *testing.T) {
		userID := uuid.New()
		token, _, err := svc.GenerateAccessToken(auth.GenerateTokenInput{
			UserID:   userID,
			Username: "anna",
			Role:     "operator",
		})
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID.String(), w.Body.String())
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_UNAUTHORIZED")
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set(AuthHeaderKey, "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_INVALID")
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+"not.a.token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_INVALID")
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		other := auth.NewJWTService(config.JWTConfig{
			Secret:                "some-other-secret",
			AccessTokenExpiration: time.Hour,
			Issuer:                "farmops-test",
		})
		token, _, err := other.GenerateAccessToken(auth.GenerateTokenInput{
			UserID: uuid.New(),
		})
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestJWTAuthMiddlewareSkipPaths(t *testing.T) {
	svc := newTestJWTService()

	t.Run("exact skip path bypasses auth", func(t *testing.T) {
		router := newJWTRouter(JWTMiddlewareConfig{
			JWTService: svc,
			SkipPaths:  []string{"/public/ping"},
		})

		req := httptest.NewRequest("GET", "/public/ping", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pong", w.Body.String())
	})

	t.Run("prefix skip bypasses auth", func(t *testing.T) {
		router := newJWTRouter(JWTMiddlewareConfig{
			JWTService:       svc,
			SkipPathPrefixes: []string{"/public/"},
		})

		req := httptest.NewRequest("GET", "/public/ping", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("non-skipped path still requires auth", func(t *testing.T) {
		router := newJWTRouter(JWTMiddlewareConfig{
			JWTService: svc,
			SkipPaths:  []string{"/public/ping"},
		})

		req := httptest.NewRequest("GET", "/protected", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
