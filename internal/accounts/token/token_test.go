package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newTestCodec(t *testing.T, now func() time.Time) *Codec {
	t.Helper()
	codec, err := NewCodec("test-secret", DefaultTTL, now)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

func TestNewCodecRequiresSecret(t *testing.T) {
	if _, err := NewCodec("  ", DefaultTTL, nil); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codec := newTestCodec(t, fixedClock)

	for _, purpose := range []Purpose{PurposeConfirm, PurposeReset, PurposeChangeEmail, PurposeInvite} {
		signed, err := codec.Encode(purpose, "user-1", "", 0)
		if err != nil {
			t.Fatalf("encode %s: %v", purpose, err)
		}
		claims, err := codec.Decode(signed)
		if err != nil {
			t.Fatalf("decode %s: %v", purpose, err)
		}
		if claims.Purpose != purpose {
			t.Fatalf("expected purpose %s, got %s", purpose, claims.Purpose)
		}
		if claims.SubjectID != "user-1" {
			t.Fatalf("expected subject user-1, got %q", claims.SubjectID)
		}
		if want := fixedClock().Add(DefaultTTL); !claims.ExpiresAt.Equal(want) {
			t.Fatalf("expected expiry %v, got %v", want, claims.ExpiresAt)
		}
	}
}

func TestEncodeCarriesExtra(t *testing.T) {
	codec := newTestCodec(t, fixedClock)

	signed, err := codec.Encode(PurposeChangeEmail, "user-1", "new@example.com", time.Minute)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	claims, err := codec.Decode(signed)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Extra != "new@example.com" {
		t.Fatalf("expected extra to round-trip, got %q", claims.Extra)
	}
}

func TestEncodeRejectsUnknownPurpose(t *testing.T) {
	codec := newTestCodec(t, fixedClock)
	if _, err := codec.Encode("login", "user-1", "", 0); err == nil {
		t.Fatal("expected error for unknown purpose")
	}
}

func TestEncodeRequiresSubject(t *testing.T) {
	codec := newTestCodec(t, fixedClock)
	if _, err := codec.Encode(PurposeConfirm, "  ", "", 0); err == nil {
		t.Fatal("expected error for empty subject")
	}
}

func TestDecodeRejectsExpiredToken(t *testing.T) {
	issuedAt := fixedClock()
	current := issuedAt
	codec := newTestCodec(t, func() time.Time { return current })

	signed, err := codec.Encode(PurposeReset, "user-1", "", time.Minute)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	current = issuedAt.Add(2 * time.Minute)
	if _, err := codec.Decode(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestDecodeRejectsZeroTTLAtBoundary(t *testing.T) {
	issuedAt := fixedClock()
	current := issuedAt
	codec, err := NewCodec("test-secret", time.Nanosecond, func() time.Time { return current })
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	signed, err := codec.Encode(PurposeConfirm, "user-1", "", time.Second)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	// Expiry is exclusive: a token is invalid the instant it expires.
	current = issuedAt.Add(time.Second)
	if _, err := codec.Decode(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token at expiry instant, got %v", err)
	}
}

func TestDecodeRejectsMalformedToken(t *testing.T) {
	codec := newTestCodec(t, fixedClock)

	for _, bad := range []string{"", "   ", "not-a-token", "a.b.c"} {
		if _, err := codec.Decode(bad); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected invalid token for %q, got %v", bad, err)
		}
	}
}

func TestDecodeRejectsForeignSignature(t *testing.T) {
	codec := newTestCodec(t, fixedClock)
	other, err := NewCodec("other-secret", DefaultTTL, fixedClock)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	signed, err := other.Encode(PurposeConfirm, "user-1", "", 0)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := codec.Decode(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestDecodeRejectsTamperedToken(t *testing.T) {
	codec := newTestCodec(t, fixedClock)

	signed, err := codec.Encode(PurposeConfirm, "user-1", "", 0)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	parts := strings.Split(signed, ".")
	if len(parts) != 3 {
		t.Fatalf("expected three token segments, got %d", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := codec.Decode(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("ACCOUNTHUB_TOKEN_SECRET", "secret-value")
	t.Setenv("ACCOUNTHUB_TOKEN_TTL", "30m")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Secret != "secret-value" {
		t.Fatalf("unexpected secret %q", cfg.Secret)
	}
	if cfg.TTL != 30*time.Minute {
		t.Fatalf("unexpected ttl %v", cfg.TTL)
	}
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("ACCOUNTHUB_TOKEN_SECRET", "")

	if _, err := LoadConfigFromEnv(); err == nil {
		t.Fatal("expected error for missing secret")
	}
}
