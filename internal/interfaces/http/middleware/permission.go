package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opsync/backend/internal/interfaces/http/dto"
)

// RequirePermission creates middleware that requires the authenticated
// user's role to grant the named permission
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			requestID := c.GetString(RequestIDKey)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", requestID))
			return
		}

		if !claims.GetRole().HasPermission(permission) {
			requestID := c.GetString(RequestIDKey)
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Insufficient permissions", requestID))
			return
		}

		c.Next()
	}
}
