package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/accounthub/internal/accounts/company"
	"github.com/louisbranch/accounthub/internal/accounts/storage"
	"github.com/louisbranch/accounthub/internal/accounts/user"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "accounts.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func testUser(id string, email string, username string) user.User {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return user.User{
		ID:        id,
		Email:     email,
		Username:  username,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestPutGetUserRoundTrip(t *testing.T) {
	store := openTempStore(t)

	input := testUser("user-1", "alice@example.com", "alice")
	input.PasswordHash = "$2a$10$hash"
	input.Confirmed = true

	if err := store.PutUser(context.Background(), input); err != nil {
		t.Fatalf("put user: %v", err)
	}

	got, err := store.GetUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Email != input.Email || got.Username != input.Username {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.PasswordHash != input.PasswordHash {
		t.Fatalf("expected password hash to round-trip, got %q", got.PasswordHash)
	}
	if !got.Confirmed {
		t.Fatal("expected confirmed flag to round-trip")
	}
	if !got.CreatedAt.Equal(input.CreatedAt) {
		t.Fatalf("expected created at %v, got %v", input.CreatedAt, got.CreatedAt)
	}
}

func TestPutUserRequiresIDAndEmail(t *testing.T) {
	store := openTempStore(t)

	if err := store.PutUser(context.Background(), user.User{Email: "a@b.c"}); err == nil {
		t.Fatal("expected error for empty user id")
	}
	if err := store.PutUser(context.Background(), user.User{ID: "user-1"}); err == nil {
		t.Fatal("expected error for empty email")
	}
}

func TestPutUserUpdatesExistingRow(t *testing.T) {
	store := openTempStore(t)

	u := testUser("user-1", "alice@example.com", "alice")
	if err := store.PutUser(context.Background(), u); err != nil {
		t.Fatalf("put user: %v", err)
	}

	u.Email = "alice@new.example.com"
	u.Confirmed = true
	u.UpdatedAt = u.UpdatedAt.Add(time.Hour)
	if err := store.PutUser(context.Background(), u); err != nil {
		t.Fatalf("update user: %v", err)
	}

	got, err := store.GetUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Email != "alice@new.example.com" || !got.Confirmed {
		t.Fatalf("expected updated row, got %+v", got)
	}
}

func TestPutUserEmailCollision(t *testing.T) {
	store := openTempStore(t)

	if err := store.PutUser(context.Background(), testUser("user-1", "alice@example.com", "alice")); err != nil {
		t.Fatalf("put user: %v", err)
	}
	err := store.PutUser(context.Background(), testUser("user-2", "alice@example.com", "bob"))
	if !errors.Is(err, storage.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestPutUserUsernameCollision(t *testing.T) {
	store := openTempStore(t)

	if err := store.PutUser(context.Background(), testUser("user-1", "alice@example.com", "alice")); err != nil {
		t.Fatalf("put user: %v", err)
	}
	err := store.PutUser(context.Background(), testUser("user-2", "bob@example.com", "alice"))
	if !errors.Is(err, storage.ErrUsernameTaken) {
		t.Fatalf("expected username taken, got %v", err)
	}
}

func TestPutUserAllowsManyEmptyUsernames(t *testing.T) {
	store := openTempStore(t)

	// Invited shells have no username yet; the partial unique index must
	// not treat two of them as colliding.
	if err := store.PutUser(context.Background(), testUser("user-1", "a@example.com", "")); err != nil {
		t.Fatalf("put first shell: %v", err)
	}
	if err := store.PutUser(context.Background(), testUser("user-2", "b@example.com", "")); err != nil {
		t.Fatalf("put second shell: %v", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	store := openTempStore(t)

	_, err := store.GetUser(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	store := openTempStore(t)

	if err := store.PutUser(context.Background(), testUser("user-1", "alice@example.com", "alice")); err != nil {
		t.Fatalf("put user: %v", err)
	}

	got, err := store.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("get user by email: %v", err)
	}
	if got.ID != "user-1" {
		t.Fatalf("unexpected user %+v", got)
	}

	if _, err := store.GetUserByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetUserByUsername(t *testing.T) {
	store := openTempStore(t)

	if err := store.PutUser(context.Background(), testUser("user-1", "alice@example.com", "alice")); err != nil {
		t.Fatalf("put user: %v", err)
	}

	got, err := store.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get user by username: %v", err)
	}
	if got.ID != "user-1" {
		t.Fatalf("unexpected user %+v", got)
	}
}

func TestListUsersByCompany(t *testing.T) {
	store := openTempStore(t)

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := company.Company{ID: "company-1", Name: "Acme", CreatedAt: created, UpdatedAt: created}
	if err := store.PutCompany(context.Background(), c); err != nil {
		t.Fatalf("put company: %v", err)
	}

	for i, id := range []string{"user-1", "user-2", "user-3"} {
		u := testUser(id, id+"@example.com", "")
		u.CompanyID = "company-1"
		u.CreatedAt = created.Add(time.Duration(i) * time.Minute)
		u.UpdatedAt = u.CreatedAt
		if err := store.PutUser(context.Background(), u); err != nil {
			t.Fatalf("put user %s: %v", id, err)
		}
	}
	outsider := testUser("user-4", "out@example.com", "")
	if err := store.PutUser(context.Background(), outsider); err != nil {
		t.Fatalf("put outsider: %v", err)
	}

	members, err := store.ListUsersByCompany(context.Background(), "company-1")
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(members))
	}
	if members[0].ID != "user-1" || members[2].ID != "user-3" {
		t.Fatalf("expected oldest-first order, got %+v", members)
	}
}

func TestPutGetCompanyRoundTrip(t *testing.T) {
	store := openTempStore(t)

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	input := company.Company{
		ID:        "company-1",
		Name:      "Acme",
		OwnerID:   "user-1",
		CreatedAt: created,
		UpdatedAt: created,
	}
	if err := store.PutCompany(context.Background(), input); err != nil {
		t.Fatalf("put company: %v", err)
	}

	got, err := store.GetCompany(context.Background(), "company-1")
	if err != nil {
		t.Fatalf("get company: %v", err)
	}
	if got.Name != "Acme" || got.OwnerID != "user-1" {
		t.Fatalf("unexpected company %+v", got)
	}
}

func TestGetCompanyNotFound(t *testing.T) {
	store := openTempStore(t)

	_, err := store.GetCompany(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
