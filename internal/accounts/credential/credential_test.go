package credential

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("cat")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "" || hash == "cat" {
		t.Fatalf("expected opaque hash, got %q", hash)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", hash)
	}
	if !VerifyPassword(hash, "cat") {
		t.Fatal("expected matching password to verify")
	}
	if VerifyPassword(hash, "dog") {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestHashPasswordSalts(t *testing.T) {
	first, err := HashPassword("cat")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	second, err := HashPassword("cat")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct salts for repeated hashing")
	}
}

func TestHashPasswordRequiresPlaintext(t *testing.T) {
	if _, err := HashPassword(""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected empty password error, got %v", err)
	}
}

func TestVerifyPasswordEmptyInputs(t *testing.T) {
	if VerifyPassword("", "cat") {
		t.Fatal("expected empty hash to fail verification")
	}
	hash, err := HashPassword("cat")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if VerifyPassword(hash, "") {
		t.Fatal("expected empty password to fail verification")
	}
}
