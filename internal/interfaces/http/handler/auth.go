package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	identityapp "github.com/opsync/backend/internal/application/identity"
	"github.com/opsync/backend/internal/interfaces/http/dto"
	"github.com/opsync/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	BaseHandler
	authService  *identityapp.AuthService
	loginLimiter gin.HandlerFunc
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SetLoginRateLimit applies a rate limiting middleware to the login
// endpoint only, guarding against credential stuffing
func (h *AuthHandler) SetLoginRateLimit(limiter gin.HandlerFunc) {
	h.loginLimiter = limiter
}

// RegisterRoutes registers auth routes. Login must be listed in the
// JWT middleware skip paths; the other endpoints need a valid token.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		if h.loginLimiter != nil {
			auth.POST("/login", h.loginLimiter, h.Login)
		} else {
			auth.POST("/login", h.Login)
		}
		auth.GET("/me", h.Me)
		auth.POST("/logout", h.Logout)
		auth.POST("/change-password", h.ChangePassword)
	}
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeUnauthorized, "Authentication required", getRequestID(c)))
		return
	}

	user, err := h.authService.Me(c.Request.Context(), claims)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Login exchanges credentials for an access token
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout revokes the presented token
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeUnauthorized, "Authentication required", getRequestID(c)))
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ChangePassword replaces the caller's password and revokes all of
// their outstanding tokens
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeUnauthorized, "Authentication required", getRequestID(c)))
		return
	}

	var req identityapp.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), claims, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
