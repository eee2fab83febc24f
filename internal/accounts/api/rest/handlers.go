package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/accounthub/internal/accounts/token"
	"github.com/louisbranch/accounthub/internal/accounts/user"
	apperrors "github.com/louisbranch/accounthub/internal/platform/errors"
)

type userView struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	Confirmed bool   `json:"confirmed"`
	CompanyID string `json:"company_id,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type emailProbeResponse struct {
	Email    string `json:"email"`
	InSystem bool   `json:"in_system"`
}

type inviteRequest struct {
	ActorID string `json:"actor_id"`
	Email   string `json:"email"`
}

type inviteResponse struct {
	User  userView `json:"user"`
	Token string   `json:"token"`
}

type confirmInviteRequest struct {
	Token string `json:"token"`
}

type confirmInviteResponse struct {
	Valid bool      `json:"valid"`
	User  *userView `json:"user,omitempty"`
}

type tokenWorkflowRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password,omitempty"`
}

type generateTokenRequest struct {
	Purpose    string `json:"purpose"`
	NewEmail   string `json:"new_email,omitempty"`
	TTLSeconds int64  `json:"ttl_seconds,omitempty"`
}

type generateTokenResponse struct {
	Token   string `json:"token"`
	Purpose string `json:"purpose"`
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func viewForUser(u user.User) userView {
	return userView{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Confirmed: u.Confirmed,
		CompanyID: u.CompanyID,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.PathValue("userID"))
	u, err := s.directory.LoadUser(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewForUser(u))
}

func (s *Server) handleEmailProbe(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	found, err := s.directory.EmailInSystem(r.Context(), email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emailProbeResponse{Email: strings.ToLower(email), InSystem: found})
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	actor, err := s.directory.LoadUser(r.Context(), strings.TrimSpace(req.ActorID))
	if err != nil {
		s.writeError(w, err)
		return
	}

	invited, inviteToken, err := s.directory.InviteUser(r.Context(), actor, req.Email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, inviteResponse{User: viewForUser(invited), Token: inviteToken})
}

func (s *Server) handleConfirmInvite(w http.ResponseWriter, r *http.Request) {
	var req confirmInviteRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if !s.directory.ConfirmInvitedUser(req.Token) {
		writeJSON(w, http.StatusOK, confirmInviteResponse{Valid: false})
		return
	}

	invited, err := s.directory.LoadInvitedUser(r.Context(), req.Token)
	if err != nil {
		s.writeError(w, err)
		return
	}
	view := viewForUser(invited)
	writeJSON(w, http.StatusOK, confirmInviteResponse{Valid: true, User: &view})
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req tokenWorkflowRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	u, err := s.directory.LoadUser(r.Context(), strings.TrimSpace(r.PathValue("userID")))
	if err != nil {
		s.writeError(w, err)
		return
	}

	confirmed, err := s.directory.Confirm(r.Context(), u, req.Token)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewForUser(confirmed))
}

func (s *Server) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req tokenWorkflowRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	u, err := s.directory.LoadUser(r.Context(), strings.TrimSpace(r.PathValue("userID")))
	if err != nil {
		s.writeError(w, err)
		return
	}

	updated, err := s.directory.ResetPassword(r.Context(), u, req.Token, req.NewPassword)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewForUser(updated))
}

func (s *Server) handleEmailChange(w http.ResponseWriter, r *http.Request) {
	var req tokenWorkflowRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	u, err := s.directory.LoadUser(r.Context(), strings.TrimSpace(r.PathValue("userID")))
	if err != nil {
		s.writeError(w, err)
		return
	}

	updated, err := s.directory.ChangeEmail(r.Context(), u, req.Token)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewForUser(updated))
}

func (s *Server) handleGenerateToken(w http.ResponseWriter, r *http.Request) {
	var req generateTokenRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	u, err := s.directory.LoadUser(r.Context(), strings.TrimSpace(r.PathValue("userID")))
	if err != nil {
		s.writeError(w, err)
		return
	}

	ttl := time.Duration(req.TTLSeconds) * time.Second
	purpose := token.Purpose(strings.TrimSpace(req.Purpose))

	var minted string
	switch purpose {
	case token.PurposeConfirm:
		minted, err = s.directory.GenerateConfirmationToken(u, ttl)
	case token.PurposeReset:
		minted, err = s.directory.GenerateResetToken(u, ttl)
	case token.PurposeChangeEmail:
		minted, err = s.directory.GenerateEmailChangeToken(u, req.NewEmail, ttl)
	case token.PurposeInvite:
		minted, err = s.directory.GenerateInviteToken(u, ttl)
	default:
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "unknown token purpose")
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, generateTokenResponse{Token: minted, Purpose: string(purpose)})
}

// decodeJSON parses the request body into v, rendering the invalid-request
// error itself. It reports whether the handler should continue.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// writeError renders a domain error as the API error envelope. Errors
// outside the domain map to a generic internal failure and are logged;
// their messages never reach the client.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	status := code.HTTPStatus()

	description := "internal error"
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		description = domainErr.Message
	}
	if status >= http.StatusInternalServerError {
		s.logger.Printf("request failed: %v", err)
		description = "internal error"
	}

	writeJSONError(w, status, strings.ToLower(string(code)), description)
}

func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, errorResponse{Error: code, ErrorDescription: description})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}
