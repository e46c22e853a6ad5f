package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/opsync/backend/internal/infrastructure/auth"
	"github.com/opsync/backend/internal/interfaces/http/dto"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTUsernameKey = "jwt_username"
	JWTRoleKey     = "jwt_role"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// TokenBlacklist is optional; when set, revoked tokens are rejected
	TokenBlacklist auth.TokenBlacklist
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	Logger    *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/api/v1/health",
			"/api/v1/auth/login",
		},
	}
}

// JWTAuth creates JWT authentication middleware
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)

		claims, err := cfg.JWTService.Validate(tokenString)
		if err != nil {
			abortUnauthorized(c, cfg, err, "Token validation failed")
			return
		}

		if cfg.TokenBlacklist != nil {
			ctx := c.Request.Context()

			if claims.ID != "" {
				revoked, err := cfg.TokenBlacklist.IsRevoked(ctx, claims.ID)
				if err != nil {
					// fail open: blacklist outage must not take the API down
					if cfg.Logger != nil {
						cfg.Logger.Error("token blacklist check failed",
							zap.String("jti", claims.ID),
							zap.Error(err))
					}
				} else if revoked {
					abortUnauthorized(c, cfg, auth.ErrTokenBlacklisted, "Token has been revoked")
					return
				}
			}

			if claims.IssuedAt != nil {
				swept, err := cfg.TokenBlacklist.IsRevokedForUser(ctx, claims.UserID, claims.IssuedAt.Time)
				if err != nil {
					if cfg.Logger != nil {
						cfg.Logger.Error("user token sweep check failed",
							zap.String("user_id", claims.UserID),
							zap.Error(err))
					}
				} else if swept {
					abortUnauthorized(c, cfg, auth.ErrTokenBlacklisted, "Session has been invalidated")
					return
				}
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTUsernameKey, claims.Username)
		c.Set(JWTRoleKey, claims.Role)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("authentication failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path))
	}

	code := dto.ErrCodeUnauthorized
	switch err {
	case auth.ErrExpiredToken:
		message = "Token has expired"
	case auth.ErrTokenBlacklisted:
		// keep caller-facing message from the call site
	case auth.ErrInvalidToken, auth.ErrInvalidClaims, auth.ErrMissingUserID:
		message = "Invalid token"
	}

	requestID := c.GetString(RequestIDKey)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// GetJWTClaims retrieves validated claims from the gin context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	value, exists := c.Get(JWTClaimsKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetJWTUserID retrieves the authenticated user ID from the gin context
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}
