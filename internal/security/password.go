package security

import (
	"errors"

	"github.com/quickkart/marketplace/internal/domain/principal"
	"golang.org/x/crypto/bcrypt"
)

// Cost never drops below bcrypt.DefaultCost (10).
const Cost = 12

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares through bcrypt, never by byte equality.
// A mismatch is reported as principal.ErrInvalidCredential.
func CheckPassword(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))

	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return principal.ErrInvalidCredential
	}

	return err
}
