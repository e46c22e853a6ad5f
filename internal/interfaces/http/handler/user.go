package handler

import (
	"github.com/gin-gonic/gin"

	identityapp "github.com/opsync/backend/internal/application/identity"
	"github.com/opsync/backend/internal/domain/identity"
	"github.com/opsync/backend/internal/interfaces/http/middleware"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *identityapp.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes registers user management routes, all admin-only
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	manage := middleware.RequirePermission(identity.PermissionUsersManage)

	users := rg.Group("/users", manage)
	{
		users.POST("", h.Create)
		users.GET("/:id", h.GetByID)
		users.PUT("/:id/role", h.ChangeRole)
		users.POST("/:id/deactivate", h.Deactivate)
	}
}

// Create creates a new user account
func (h *UserHandler) Create(c *gin.Context) {
	var req identityapp.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// GetByID returns a single user account
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ChangeRole reassigns a user's role
func (h *UserHandler) ChangeRole(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var req identityapp.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	user, err := h.userService.ChangeRole(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Deactivate disables a user account
func (h *UserHandler) Deactivate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.userService.Deactivate(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
