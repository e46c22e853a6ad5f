package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/opsync/backend/internal/domain/identity"
)

// LoginRequest represents a login attempt
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=1,max=100"`
	Password string `json:"password" binding:"required,min=1"`
}

// LoginResponse carries the issued token and the authenticated user
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

// CreateUserRequest represents a request to create an operator account
type CreateUserRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=100"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	DisplayName string `json:"display_name" binding:"max=255"`
	Role        string `json:"role" binding:"required,oneof=admin manager clerk"`
}

// ChangeRoleRequest represents a request to reassign a user's role
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin manager clerk"`
}

// ChangePasswordRequest represents a self-service password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// UserResponse represents a user in API responses. The password hash
// never leaves the service layer.
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name,omitempty"`
	Role        string    `json:"role"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToUserResponse converts a user to its API representation
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role.String(),
		Active:      u.Active,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
