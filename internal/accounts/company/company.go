// Package company provides the company membership model.
package company

import (
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/accounthub/internal/accounts/user"
	apperrors "github.com/louisbranch/accounthub/internal/platform/errors"
	"github.com/louisbranch/accounthub/internal/platform/id"
)

var (
	// ErrEmptyName indicates a missing company name.
	ErrEmptyName = apperrors.New(apperrors.CodeCompanyEmptyName, "company name is required")
	// ErrOwnerNotMember indicates an ownership assignment to a non-member.
	ErrOwnerNotMember = apperrors.New(apperrors.CodeCompanyOwnerNotMember, "company owner must be a member of the company")
)

// Company groups users under exactly one owner.
//
// Membership lives on the user side as a company id reference; the company
// row records only which member owns it.
type Company struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateCompanyInput describes the metadata needed to create a company.
type CreateCompanyInput struct {
	Name string
}

// CreateCompany creates a new company with a generated ID and timestamps.
// The company starts ownerless; SetOwner assigns ownership once the first
// member exists.
func CreateCompany(input CreateCompanyInput, now func() time.Time, idGenerator func() (string, error)) (Company, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Company{}, ErrEmptyName
	}

	companyID, err := idGenerator()
	if err != nil {
		return Company{}, fmt.Errorf("generate company id: %w", err)
	}

	createdAt := now().UTC()
	return Company{
		ID:        companyID,
		Name:      name,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// SetOwner assigns company ownership to an existing member.
// Ownership by a non-member is refused so the owner-is-member invariant
// holds at the entity boundary.
func (c *Company) SetOwner(owner user.User, now func() time.Time) error {
	if c == nil {
		return fmt.Errorf("company is required")
	}
	if now == nil {
		now = time.Now
	}
	if owner.CompanyID != c.ID {
		return ErrOwnerNotMember
	}
	c.OwnerID = owner.ID
	c.UpdatedAt = now().UTC()
	return nil
}

// IsAdmin reports whether u administers c.
//
// Admin status is derived, never stored: a user is an admin exactly when
// their email matches the company owner's email. Recomputing avoids stale
// flags when ownership or addresses change.
func IsAdmin(u user.User, c Company, owner user.User) bool {
	if u.CompanyID != c.ID || owner.ID != c.OwnerID {
		return false
	}
	return u.Email != "" && u.Email == owner.Email
}
