package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsync/backend/internal/domain/identity"
	"github.com/opsync/backend/internal/infrastructure/auth"
	"github.com/opsync/backend/internal/infrastructure/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "middleware-test-secret-with-entropy!",
		AccessTokenExpiration: time.Hour,
		Issuer:                "opsync-test",
	})
}

func newTestUser(t *testing.T, role identity.Role) *identity.User {
	t.Helper()
	user, err := identity.NewUser("alice", "hashed", "Alice", role)
	require.NoError(t, err)
	return user
}

func newProtectedRouter(cfg JWTMiddlewareConfig) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.Use(JWTAuth(cfg))
	r.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetJWTUserID(c)})
	})
	r.GET("/api/v1/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	svc := newTestJWTService()

	t.Run("valid token passes", func(t *testing.T) {
		user := newTestUser(t, identity.RoleClerk)
		token, err := svc.Generate(user)
		require.NoError(t, err)

		router := newProtectedRouter(JWTMiddlewareConfig{JWTService: svc})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), user.ID.String())
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		router := newProtectedRouter(JWTMiddlewareConfig{JWTService: svc})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		router := newProtectedRouter(JWTMiddlewareConfig{JWTService: svc})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		req.Header.Set("Authorization", "Token abc")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		router := newProtectedRouter(JWTMiddlewareConfig{JWTService: svc})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("skip paths bypass authentication", func(t *testing.T) {
		cfg := JWTMiddlewareConfig{JWTService: svc, SkipPaths: []string{"/api/v1/health"}}
		router := newProtectedRouter(cfg)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("revoked token is rejected", func(t *testing.T) {
		user := newTestUser(t, identity.RoleClerk)
		token, err := svc.Generate(user)
		require.NoError(t, err)
		claims, err := svc.Validate(token.AccessToken)
		require.NoError(t, err)

		blacklist := auth.NewInMemoryTokenBlacklist()
		require.NoError(t, blacklist.Revoke(context.Background(), claims.ID, time.Hour))

		router := newProtectedRouter(JWTMiddlewareConfig{JWTService: svc, TokenBlacklist: blacklist})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "revoked")
	})

	t.Run("user sweep invalidates earlier tokens", func(t *testing.T) {
		user := newTestUser(t, identity.RoleClerk)
		token, err := svc.Generate(user)
		require.NoError(t, err)

		blacklist := auth.NewInMemoryTokenBlacklist()
		require.NoError(t, blacklist.RevokeAllForUser(context.Background(), user.ID.String(), time.Hour))

		router := newProtectedRouter(JWTMiddlewareConfig{JWTService: svc, TokenBlacklist: blacklist})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequirePermission(t *testing.T) {
	svc := newTestJWTService()

	newRouterWithPermission := func(permission string) *gin.Engine {
		r := gin.New()
		r.Use(RequestID())
		r.Use(JWTAuth(JWTMiddlewareConfig{JWTService: svc}))
		r.POST("/api/v1/users", RequirePermission(permission), func(c *gin.Context) {
			c.Status(http.StatusCreated)
		})
		return r
	}

	t.Run("role with permission passes", func(t *testing.T) {
		admin := newTestUser(t, identity.RoleAdmin)
		token, err := svc.Generate(admin)
		require.NoError(t, err)

		router := newRouterWithPermission(identity.PermissionUsersManage)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users", nil)
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("role without permission gets 403", func(t *testing.T) {
		clerk := newTestUser(t, identity.RoleClerk)
		token, err := svc.Generate(clerk)
		require.NoError(t, err)

		router := newRouterWithPermission(identity.PermissionUsersManage)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users", nil)
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unauthenticated request gets 401", func(t *testing.T) {
		r := gin.New()
		r.POST("/api/v1/users", RequirePermission(identity.PermissionUsersManage), func(c *gin.Context) {
			c.Status(http.StatusCreated)
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
