package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the persistence contract for users
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Save(ctx context.Context, user *User) error
}
