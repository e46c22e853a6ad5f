package identity

import (
	"context"

	"github.com/opsync/backend/internal/domain/identity"
	"github.com/opsync/backend/internal/domain/shared"
	"github.com/opsync/backend/internal/infrastructure/auth"
)

// ErrInvalidCredentials is returned for any login failure so callers
// cannot distinguish an unknown username from a wrong password.
var ErrInvalidCredentials = shared.NewDomainError("UNAUTHORIZED", "Invalid username or password")

// AuthService handles login, logout and token revocation
type AuthService struct {
	userRepo  identity.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.JWTService
	blacklist auth.TokenBlacklist
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo identity.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.JWTService,
	blacklist auth.TokenBlacklist,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		passwords: passwords,
		tokens:    tokens,
		blacklist: blacklist,
	}
}

// Login authenticates a user and issues an access token
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CanLogin() {
		return nil, ErrInvalidCredentials
	}
	if err := s.passwords.Verify(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		User:        ToUserResponse(user),
	}, nil
}

// Me returns the profile of the authenticated user
func (s *AuthService) Me(ctx context.Context, claims *auth.Claims) (*UserResponse, error) {
	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, auth.ErrInvalidClaims
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Logout revokes the presented token for the remainder of its lifetime
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	return s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL())
}

// ChangePassword verifies the current password and replaces it. All
// outstanding tokens for the user are revoked afterwards.
func (s *AuthService) ChangePassword(ctx context.Context, claims *auth.Claims, req ChangePasswordRequest) error {
	userID, err := claims.GetUserUUID()
	if err != nil {
		return auth.ErrInvalidClaims
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.passwords.Verify(user.PasswordHash, req.CurrentPassword); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := s.passwords.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.Touch()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}

	return s.blacklist.RevokeAllForUser(ctx, user.ID.String(), s.tokens.Expiration())
}
