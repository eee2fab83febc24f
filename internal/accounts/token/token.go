// Package token encodes and verifies purpose-bound signed tokens.
//
// Each token is an HS256 JWT carrying a purpose tag, the id of the user it
// is bound to, and an optional extra value (the replacement address for
// email changes). A token minted for one purpose is useless to every other
// workflow, and expiry is the only replay defense: a still-valid token can
// be presented more than once.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/accounthub/internal/platform/errors"
)

// ErrInvalidToken covers every decode failure: malformed input, bad
// signature, expiry, and unknown purposes. Callers get one rejection
// signal and no hint of which check failed.
var ErrInvalidToken = apperrors.New(apperrors.CodeTokenInvalid, "token is invalid")

// DefaultTTL is the validity window applied when callers pass no TTL.
const DefaultTTL = time.Hour

// Purpose restricts which workflow may consume a token.
type Purpose string

const (
	// PurposeConfirm marks account confirmation tokens.
	PurposeConfirm Purpose = "confirm"
	// PurposeReset marks password reset tokens.
	PurposeReset Purpose = "reset"
	// PurposeChangeEmail marks email change tokens.
	PurposeChangeEmail Purpose = "change_email"
	// PurposeInvite marks company invitation tokens.
	PurposeInvite Purpose = "invite"
)

// Valid reports whether the purpose is one of the known workflow tags.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeConfirm, PurposeReset, PurposeChangeEmail, PurposeInvite:
		return true
	}
	return false
}

// Claims is the verified payload of a decoded token.
type Claims struct {
	Purpose   Purpose
	SubjectID string
	Extra     string
	ExpiresAt time.Time
}

// codecClaims is the internal claims type used for JWT signing and parsing.
type codecClaims struct {
	jwt.RegisteredClaims
	Purpose string `json:"purpose"`
	Extra   string `json:"extra,omitempty"`
}

// Codec signs and verifies workflow tokens with a process-wide secret.
//
// The secret must stay stable across a token's validity window; rotating
// it invalidates every outstanding token, which is acceptable for these
// short-lived credentials.
type Codec struct {
	secret     []byte
	defaultTTL time.Duration
	now        func() time.Time
}

// NewCodec creates a token codec.
// The now function may be nil, in which case wall-clock time is used.
func NewCodec(secret string, defaultTTL time.Duration, now func() time.Time) (*Codec, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Codec{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
		now:        now,
	}, nil
}

// Encode signs a token binding purpose and subject, expiring after ttl.
// A non-positive ttl falls back to the codec default.
func (c *Codec) Encode(purpose Purpose, subjectID string, extra string, ttl time.Duration) (string, error) {
	if c == nil {
		return "", errors.New("token codec is not configured")
	}
	if !purpose.Valid() {
		return "", errors.New("token purpose is unknown")
	}
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return "", errors.New("token subject id is required")
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	now := c.now().UTC()
	claims := codecClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Purpose: string(purpose),
		Extra:   extra,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies a token string and returns its claims.
// Every verification failure maps to ErrInvalidToken.
func (c *Codec) Decode(tokenString string) (Claims, error) {
	if c == nil {
		return Claims{}, errors.New("token codec is not configured")
	}
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return Claims{}, ErrInvalidToken
	}

	var parsed codecClaims
	_, err := jwt.ParseWithClaims(tokenString, &parsed, func(token *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	purpose := Purpose(parsed.Purpose)
	if !purpose.Valid() {
		return Claims{}, ErrInvalidToken
	}
	if strings.TrimSpace(parsed.Subject) == "" {
		return Claims{}, ErrInvalidToken
	}
	if parsed.ExpiresAt == nil {
		return Claims{}, ErrInvalidToken
	}

	now := c.now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return Claims{}, ErrInvalidToken
	}

	return Claims{
		Purpose:   purpose,
		SubjectID: parsed.Subject,
		Extra:     parsed.Extra,
		ExpiresAt: exp,
	}, nil
}
