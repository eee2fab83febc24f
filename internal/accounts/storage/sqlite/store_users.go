package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/accounthub/internal/accounts/storage"
	"github.com/louisbranch/accounthub/internal/accounts/user"
)

// PutUser inserts or updates one user row.
// Email and username collisions surface as the storage sentinels.
func (s *Store) PutUser(ctx context.Context, u user.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("user email is required")
	}

	confirmed := 0
	if u.Confirmed {
		confirmed = 1
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO users (id, email, username, password_hash, confirmed, company_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    email = excluded.email,
    username = excluded.username,
    password_hash = excluded.password_hash,
    confirmed = excluded.confirmed,
    company_id = excluded.company_id,
    updated_at = excluded.updated_at
`, u.ID, u.Email, nullableText(u.Username), u.PasswordHash, confirmed, nullableText(u.CompanyID), toMillis(u.CreatedAt), toMillis(u.UpdatedAt))
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

const selectUserColumns = `
SELECT id, email, username, password_hash, confirmed, company_id, created_at, updated_at
FROM users
`

// GetUser fetches a user record by ID.
func (s *Store) GetUser(ctx context.Context, userID string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return user.User{}, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return user.User{}, fmt.Errorf("user id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, selectUserColumns+"WHERE id = ?", userID)
	u, err := scanUser(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, storage.ErrNotFound
		}
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail fetches a user record by its unique email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return user.User{}, fmt.Errorf("storage is not configured")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return user.User{}, fmt.Errorf("email is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, selectUserColumns+"WHERE email = ?", email)
	u, err := scanUser(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, storage.ErrNotFound
		}
		return user.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// GetUserByUsername fetches a user record by its unique username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return user.User{}, fmt.Errorf("storage is not configured")
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return user.User{}, fmt.Errorf("username is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, selectUserColumns+"WHERE username = ?", username)
	u, err := scanUser(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, storage.ErrNotFound
		}
		return user.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// ListUsersByCompany returns all members of one company, oldest first.
func (s *Store) ListUsersByCompany(ctx context.Context, companyID string) ([]user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, fmt.Errorf("company id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, selectUserColumns+`
WHERE company_id = ?
ORDER BY created_at ASC, id ASC
`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list users by company: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, nil
}

func scanUser(scan func(dest ...any) error) (user.User, error) {
	var (
		u         user.User
		username  sql.NullString
		companyID sql.NullString
		confirmed int
		createdAt int64
		updatedAt int64
	)
	if err := scan(&u.ID, &u.Email, &username, &u.PasswordHash, &confirmed, &companyID, &createdAt, &updatedAt); err != nil {
		return user.User{}, err
	}
	u.Username = textOrEmpty(username)
	u.CompanyID = textOrEmpty(companyID)
	u.Confirmed = confirmed != 0
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}
