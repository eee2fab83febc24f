// Package credential handles password hashing and verification.
//
// Passwords are stored only as salted bcrypt digests. There is no way to
// read a password back; callers hold the opaque hash and ask this package
// whether a candidate matches it.
package credential

import (
	"fmt"

	apperrors "github.com/louisbranch/accounthub/internal/platform/errors"
	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword indicates a missing plaintext password.
var ErrEmptyPassword = apperrors.New(apperrors.CodeUserEmptyPassword, "password is required")

// HashPassword derives a salted bcrypt hash from a plaintext password.
func HashPassword(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches the stored hash.
// A wrong password is an ordinary false, never an error.
func VerifyPassword(hash string, plaintext string) bool {
	if hash == "" || plaintext == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
