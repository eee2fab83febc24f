// Package sqlite implements account persistence over SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/louisbranch/accounthub/internal/accounts/storage"
	"github.com/louisbranch/accounthub/internal/accounts/storage/sqlite/migrations"
	sqlitemigrate "github.com/louisbranch/accounthub/internal/platform/storage/sqlitemigrate"
)

// Store provides SQLite-backed persistence for account state.
//
// A single SQLite file backs users and companies so both tables share the
// same transaction and visibility boundaries.
type Store struct {
	sqlDB *sql.DB
}

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens an account SQLite store and applies bundled migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(context.Background(), s.sqlDB, migrations.FS, ".")
}

// mapUniqueViolation translates SQLite unique-constraint failures into the
// storage sentinels callers branch on.
func mapUniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	message := err.Error()
	if !strings.Contains(message, "UNIQUE constraint failed") {
		return err
	}
	switch {
	case strings.Contains(message, "users.email"):
		return storage.ErrEmailTaken
	case strings.Contains(message, "users.username"):
		return storage.ErrUsernameTaken
	}
	return err
}

// nullableText stores empty strings as NULL so partial unique indexes skip them.
func nullableText(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func textOrEmpty(value sql.NullString) string {
	if value.Valid {
		return value.String
	}
	return ""
}
