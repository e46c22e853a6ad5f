package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/opsync/backend/internal/domain/identity"
	"github.com/opsync/backend/internal/domain/shared"
	"github.com/opsync/backend/internal/infrastructure/auth"
)

// UserService manages operator accounts. Only admins reach these
// operations; the permission check happens in the HTTP middleware.
type UserService struct {
	userRepo  identity.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.JWTService
	blacklist auth.TokenBlacklist
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo identity.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.JWTService,
	blacklist auth.TokenBlacklist,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		passwords: passwords,
		tokens:    tokens,
		blacklist: blacklist,
	}
}

// Create creates a new user account with a hashed password
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, shared.NewConflictError("Username is already taken")
	} else if err != shared.ErrNotFound {
		return nil, err
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user, err := identity.NewUser(req.Username, hash, req.DisplayName, identity.Role(req.Role))
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}

// ChangeRole reassigns a user's role. Existing tokens still carry the
// old role, so they are all revoked.
func (s *UserService) ChangeRole(ctx context.Context, id uuid.UUID, req ChangeRoleRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.ChangeRole(identity.Role(req.Role)); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	if err := s.blacklist.RevokeAllForUser(ctx, user.ID.String(), s.tokens.Expiration()); err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// Deactivate disables an account and revokes its outstanding tokens
func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.Deactivate()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	return s.blacklist.RevokeAllForUser(ctx, user.ID.String(), s.tokens.Expiration())
}
