package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// User errors
	CodeUserEmptyEmail      Code = "USER_EMPTY_EMAIL"
	CodeUserInvalidEmail    Code = "USER_INVALID_EMAIL"
	CodeUserEmptyUsername   Code = "USER_EMPTY_USERNAME"
	CodeUserInvalidUsername Code = "USER_INVALID_USERNAME"
	CodeUserEmptyPassword   Code = "USER_EMPTY_PASSWORD"

	// Company errors
	CodeCompanyEmptyName      Code = "COMPANY_EMPTY_NAME"
	CodeCompanyOwnerNotMember Code = "COMPANY_OWNER_NOT_MEMBER"

	// Token errors. Malformed, bad-signature, expired, wrong-purpose, and
	// subject-mismatch failures all share one code so callers cannot probe
	// which check a forged token failed.
	CodeTokenInvalid Code = "TOKEN_INVALID"

	// Directory errors
	CodeActorHasNoCompany Code = "ACTOR_HAS_NO_COMPANY"

	// Storage errors
	CodeNotFound      Code = "NOT_FOUND"
	CodeEmailTaken    Code = "EMAIL_TAKEN"
	CodeUsernameTaken Code = "USERNAME_TAKEN"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeUserEmptyEmail,
		CodeUserInvalidEmail,
		CodeUserEmptyUsername,
		CodeUserInvalidUsername,
		CodeUserEmptyPassword,
		CodeCompanyEmptyName:
		return http.StatusBadRequest

	// Unauthorized - token rejected for any reason
	case CodeTokenInvalid:
		return http.StatusUnauthorized

	// Not found - resource doesn't exist
	case CodeNotFound:
		return http.StatusNotFound

	// Conflict - unique resource constraint or state precondition
	case CodeEmailTaken,
		CodeUsernameTaken,
		CodeCompanyOwnerNotMember,
		CodeActorHasNoCompany:
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}
