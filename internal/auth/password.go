package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost trades login latency for brute-force resistance. 12 is
// roughly 250ms per hash on current hardware.
const defaultCost = 12

// PasswordService hashes and verifies admin passwords with bcrypt.
// bcrypt salts automatically and embeds the salt in the hash, so a
// single string column stores everything.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a custom
// cost. Tests use bcrypt.MinCost so hashing does not dominate runtime.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash returns the bcrypt hash of a password.
//
// bcrypt silently truncates input at 72 bytes; rejecting longer
// passwords up front beats accepting a password we would only ever
// check the prefix of.
func (s *PasswordService) Hash(password string) (string, error) {
	if len(password) > 72 {
		return "", errors.New("auth: password exceeds 72 bytes")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether the password matches the stored hash.
func (s *PasswordService) Verify(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return fmt.Errorf("auth: password mismatch: %w", err)
	}
	return nil
}
