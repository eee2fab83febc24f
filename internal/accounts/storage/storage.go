// Package storage defines the persistence boundary for account records.
package storage

import (
	"context"

	"github.com/louisbranch/accounthub/internal/accounts/company"
	"github.com/louisbranch/accounthub/internal/accounts/user"
	apperrors "github.com/louisbranch/accounthub/internal/platform/errors"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")
	// ErrEmailTaken indicates a write that collides with another user's email.
	ErrEmailTaken = apperrors.New(apperrors.CodeEmailTaken, "email already in use")
	// ErrUsernameTaken indicates a write that collides with another user's username.
	ErrUsernameTaken = apperrors.New(apperrors.CodeUsernameTaken, "username already in use")
)

// UserStore persists account user records.
//
// Put calls are atomic per record: either the whole row lands or the
// uniqueness violation surfaces and nothing is written.
type UserStore interface {
	PutUser(ctx context.Context, u user.User) error
	GetUser(ctx context.Context, userID string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	GetUserByUsername(ctx context.Context, username string) (user.User, error)
	ListUsersByCompany(ctx context.Context, companyID string) ([]user.User, error)
}

// CompanyStore persists company records.
type CompanyStore interface {
	PutCompany(ctx context.Context, c company.Company) error
	GetCompany(ctx context.Context, companyID string) (company.Company, error)
}
