// Package id generates compact, URL-safe unique identifiers.
//
// Identifiers are random UUIDs rendered as 26-character lowercase base32
// strings without padding, so they stay readable in URLs, logs, and SQL
// keys while keeping full 128-bit randomness.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a new 26-character lowercase identifier.
func NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(value[:])), nil
}
