package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/accounthub/internal/accounts/company"
	"github.com/louisbranch/accounthub/internal/accounts/storage"
)

// PutCompany inserts or updates one company row.
func (s *Store) PutCompany(ctx context.Context, c company.Company) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("company id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("company name is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO companies (id, name, owner_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    owner_id = excluded.owner_id,
    updated_at = excluded.updated_at
`, c.ID, c.Name, nullableText(c.OwnerID), toMillis(c.CreatedAt), toMillis(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put company: %w", err)
	}
	return nil
}

// GetCompany fetches a company record by ID.
func (s *Store) GetCompany(ctx context.Context, companyID string) (company.Company, error) {
	if err := ctx.Err(); err != nil {
		return company.Company{}, err
	}
	if s == nil || s.sqlDB == nil {
		return company.Company{}, fmt.Errorf("storage is not configured")
	}
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return company.Company{}, fmt.Errorf("company id is required")
	}

	var (
		c         company.Company
		ownerID   sql.NullString
		createdAt int64
		updatedAt int64
	)
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, name, owner_id, created_at, updated_at
FROM companies
WHERE id = ?
`, companyID)
	if err := row.Scan(&c.ID, &c.Name, &ownerID, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return company.Company{}, storage.ErrNotFound
		}
		return company.Company{}, fmt.Errorf("get company: %w", err)
	}
	c.OwnerID = textOrEmpty(ownerID)
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return c, nil
}
