package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned when a password does not match its hash
var ErrPasswordMismatch = errors.New("password does not match")

// PasswordService hashes and verifies user passwords with bcrypt
type PasswordService struct {
	cost int
}

// NewPasswordService creates a password service with the default bcrypt cost
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: bcrypt.DefaultCost}
}

// Hash produces a bcrypt hash of the plaintext password
func (s *PasswordService) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify compares a plaintext password against a stored hash
func (s *PasswordService) Verify(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
