// Package directory orchestrates account lookups, invitations, and the
// token-driven identity workflows.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/louisbranch/accounthub/internal/accounts/company"
	"github.com/louisbranch/accounthub/internal/accounts/credential"
	"github.com/louisbranch/accounthub/internal/accounts/mail"
	"github.com/louisbranch/accounthub/internal/accounts/storage"
	"github.com/louisbranch/accounthub/internal/accounts/token"
	"github.com/louisbranch/accounthub/internal/accounts/user"
	apperrors "github.com/louisbranch/accounthub/internal/platform/errors"
	"github.com/louisbranch/accounthub/internal/platform/id"
)

var (
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("account store is not configured")
	// ErrCodecNotConfigured indicates the service is missing the token codec.
	ErrCodecNotConfigured = errors.New("token codec is not configured")
	// ErrActorHasNoCompany indicates an invite from a user outside any company.
	ErrActorHasNoCompany = apperrors.New(apperrors.CodeActorHasNoCompany, "inviting user belongs to no company")
)

// Service composes the account store, token codec, and mail collaborator
// into the directory and identity-confirmation use-cases.
//
// Every workflow stages nothing before its checks pass: a rejected token
// or a conflicting email returns before any store write, so failures never
// leave partial state behind.
type Service struct {
	users     storage.UserStore
	companies storage.CompanyStore
	codec     *token.Codec
	mailer    mail.Sender
	clock     func() time.Time
	newID     func() (string, error)
}

// NewService constructs the directory service.
// Clock and id generator may be nil; wall-clock time and random ids are used.
func NewService(users storage.UserStore, companies storage.CompanyStore, codec *token.Codec, mailer mail.Sender, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		users:     users,
		companies: companies,
		codec:     codec,
		mailer:    mailer,
		clock:     clock,
		newID:     newID,
	}
}

func (s *Service) nowUTC() time.Time {
	return s.clock().UTC()
}

// EmailInSystem reports whether any user owns the given address.
func (s *Service) EmailInSystem(ctx context.Context, email string) (bool, error) {
	if s == nil || s.users == nil {
		return false, ErrStoreNotConfigured
	}
	normalized, err := user.NormalizeEmail(email)
	if err != nil {
		return false, err
	}
	if _, err := s.users.GetUserByEmail(ctx, normalized); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// LoadUser fetches one user by id; missing users surface as not found.
func (s *Service) LoadUser(ctx context.Context, userID string) (user.User, error) {
	if s == nil || s.users == nil {
		return user.User{}, ErrStoreNotConfigured
	}
	return s.users.GetUser(ctx, userID)
}

// LoadUserByEmail fetches one user by its unique address.
func (s *Service) LoadUserByEmail(ctx context.Context, email string) (user.User, error) {
	if s == nil || s.users == nil {
		return user.User{}, ErrStoreNotConfigured
	}
	normalized, err := user.NormalizeEmail(email)
	if err != nil {
		return user.User{}, err
	}
	return s.users.GetUserByEmail(ctx, normalized)
}

// UserIsAdmin reports whether u administers its company.
// Users outside any company are never admins.
func (s *Service) UserIsAdmin(ctx context.Context, u user.User) (bool, error) {
	if s == nil || s.companies == nil || s.users == nil {
		return false, ErrStoreNotConfigured
	}
	if u.CompanyID == "" {
		return false, nil
	}
	c, err := s.companies.GetCompany(ctx, u.CompanyID)
	if err != nil {
		return false, err
	}
	if c.OwnerID == "" {
		return false, nil
	}
	owner, err := s.users.GetUser(ctx, c.OwnerID)
	if err != nil {
		return false, err
	}
	return company.IsAdmin(u, c, owner), nil
}

// GenerateConfirmationToken mints an account confirmation token for u.
// A non-positive ttl uses the codec default.
func (s *Service) GenerateConfirmationToken(u user.User, ttl time.Duration) (string, error) {
	if s == nil || s.codec == nil {
		return "", ErrCodecNotConfigured
	}
	return s.codec.Encode(token.PurposeConfirm, u.ID, "", ttl)
}

// GenerateResetToken mints a password reset token for u.
func (s *Service) GenerateResetToken(u user.User, ttl time.Duration) (string, error) {
	if s == nil || s.codec == nil {
		return "", ErrCodecNotConfigured
	}
	return s.codec.Encode(token.PurposeReset, u.ID, "", ttl)
}

// GenerateEmailChangeToken mints a token binding u to a replacement address.
func (s *Service) GenerateEmailChangeToken(u user.User, newEmail string, ttl time.Duration) (string, error) {
	if s == nil || s.codec == nil {
		return "", ErrCodecNotConfigured
	}
	normalized, err := user.NormalizeEmail(newEmail)
	if err != nil {
		return "", err
	}
	return s.codec.Encode(token.PurposeChangeEmail, u.ID, normalized, ttl)
}

// GenerateInviteToken mints an invitation token for an invited user shell.
func (s *Service) GenerateInviteToken(u user.User, ttl time.Duration) (string, error) {
	if s == nil || s.codec == nil {
		return "", ErrCodecNotConfigured
	}
	return s.codec.Encode(token.PurposeInvite, u.ID, "", ttl)
}

// decodeFor verifies a token for one workflow: the purpose tag and the
// subject binding must both match. All failures collapse into the single
// invalid-token rejection so callers cannot tell a forged token from a
// stolen one.
func (s *Service) decodeFor(purpose token.Purpose, subjectID string, tokenString string) (token.Claims, error) {
	if s == nil || s.codec == nil {
		return token.Claims{}, ErrCodecNotConfigured
	}
	claims, err := s.codec.Decode(tokenString)
	if err != nil {
		return token.Claims{}, err
	}
	if claims.Purpose != purpose {
		return token.Claims{}, token.ErrInvalidToken
	}
	if subjectID != "" && claims.SubjectID != subjectID {
		return token.Claims{}, token.ErrInvalidToken
	}
	return claims, nil
}

// Confirm marks u as confirmed when the token is valid for it.
// Confirming an already confirmed user succeeds without a write.
func (s *Service) Confirm(ctx context.Context, u user.User, tokenString string) (user.User, error) {
	if s == nil || s.users == nil {
		return user.User{}, ErrStoreNotConfigured
	}
	if _, err := s.decodeFor(token.PurposeConfirm, u.ID, tokenString); err != nil {
		return user.User{}, err
	}
	if u.Confirmed {
		return u, nil
	}

	u.Confirmed = true
	u.UpdatedAt = s.nowUTC()
	if err := s.users.PutUser(ctx, u); err != nil {
		return user.User{}, fmt.Errorf("persist confirmation: %w", err)
	}
	return u, nil
}

// ResetPassword replaces u's credential when the token is valid for it.
func (s *Service) ResetPassword(ctx context.Context, u user.User, tokenString string, newPassword string) (user.User, error) {
	if s == nil || s.users == nil {
		return user.User{}, ErrStoreNotConfigured
	}
	if _, err := s.decodeFor(token.PurposeReset, u.ID, tokenString); err != nil {
		return user.User{}, err
	}
	hash, err := credential.HashPassword(newPassword)
	if err != nil {
		return user.User{}, err
	}

	u.PasswordHash = hash
	u.UpdatedAt = s.nowUTC()
	if err := s.users.PutUser(ctx, u); err != nil {
		return user.User{}, fmt.Errorf("persist password reset: %w", err)
	}
	return u, nil
}

// ChangeEmail moves u to the address embedded in the token.
// The address must not belong to a different user.
func (s *Service) ChangeEmail(ctx context.Context, u user.User, tokenString string) (user.User, error) {
	if s == nil || s.users == nil {
		return user.User{}, ErrStoreNotConfigured
	}
	claims, err := s.decodeFor(token.PurposeChangeEmail, u.ID, tokenString)
	if err != nil {
		return user.User{}, err
	}
	newEmail, err := user.NormalizeEmail(claims.Extra)
	if err != nil {
		// A change-email token without a usable address is as good as forged.
		return user.User{}, token.ErrInvalidToken
	}

	existing, err := s.users.GetUserByEmail(ctx, newEmail)
	switch {
	case err == nil:
		if existing.ID != u.ID {
			return user.User{}, storage.ErrEmailTaken
		}
	case errors.Is(err, storage.ErrNotFound):
	default:
		return user.User{}, err
	}

	u.Email = newEmail
	u.UpdatedAt = s.nowUTC()
	if err := s.users.PutUser(ctx, u); err != nil {
		return user.User{}, fmt.Errorf("persist email change: %w", err)
	}
	return u, nil
}

// InviteUser creates an unconfirmed email-only user in the actor's company
// and emails the invitation token to the new address.
//
// The actor is explicit; nothing here reads ambient session state. The new
// row is persisted before the token is minted because the token embeds the
// fresh user id. Mail delivery is fire-and-forget: a send failure is
// logged and the invite still stands.
func (s *Service) InviteUser(ctx context.Context, actor user.User, email string) (user.User, string, error) {
	if s == nil || s.users == nil {
		return user.User{}, "", ErrStoreNotConfigured
	}
	if s.codec == nil {
		return user.User{}, "", ErrCodecNotConfigured
	}
	if actor.CompanyID == "" {
		return user.User{}, "", ErrActorHasNoCompany
	}

	normalized, err := user.NormalizeEmail(email)
	if err != nil {
		return user.User{}, "", err
	}
	taken, err := s.EmailInSystem(ctx, normalized)
	if err != nil {
		return user.User{}, "", err
	}
	if taken {
		return user.User{}, "", storage.ErrEmailTaken
	}

	invited, err := user.CreateInvitedUser(normalized, actor.CompanyID, s.clock, s.newID)
	if err != nil {
		return user.User{}, "", err
	}
	if err := s.users.PutUser(ctx, invited); err != nil {
		return user.User{}, "", fmt.Errorf("persist invited user: %w", err)
	}

	inviteToken, err := s.GenerateInviteToken(invited, 0)
	if err != nil {
		return user.User{}, "", fmt.Errorf("generate invite token: %w", err)
	}

	if s.mailer != nil {
		msg := mail.Message{
			To:       invited.Email,
			Subject:  "You have been invited",
			Template: mail.TemplateInvite,
			Data: map[string]string{
				"user_id": invited.ID,
				"token":   inviteToken,
			},
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			log.Printf("send invite mail to %s: %v", invited.Email, err)
		}
	}

	return invited, inviteToken, nil
}

// ConfirmInvitedUser reports whether the token is a valid invitation.
//
// Unlike the other workflows this checks no subject: any decodable,
// unexpired invite token passes, whoever presents it. See DESIGN.md
// before relying on it for anything access-controlling.
func (s *Service) ConfirmInvitedUser(tokenString string) bool {
	if s == nil || s.codec == nil {
		return false
	}
	_, err := s.decodeFor(token.PurposeInvite, "", tokenString)
	return err == nil
}

// LoadInvitedUser resolves an invitation token to the invited user.
func (s *Service) LoadInvitedUser(ctx context.Context, tokenString string) (user.User, error) {
	if s == nil || s.users == nil {
		return user.User{}, ErrStoreNotConfigured
	}
	claims, err := s.decodeFor(token.PurposeInvite, "", tokenString)
	if err != nil {
		return user.User{}, err
	}
	return s.users.GetUser(ctx, claims.SubjectID)
}
