package oauth2

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is the machine-readable "error" value of an OAuth2 error response.
type ErrorCode string

const (
	ErrorInvalidRequest       ErrorCode = "invalid_request"
	ErrorInvalidClient        ErrorCode = "invalid_client"
	ErrorInvalidGrant         ErrorCode = "invalid_grant"
	ErrorUnsupportedGrantType ErrorCode = "unsupported_grant_type"
	ErrorUnauthorized         ErrorCode = "unauthorized"
	ErrorInvalidToken         ErrorCode = "invalid_token"
	ErrorAccessDenied         ErrorCode = "access_denied"
	ErrorServerError          ErrorCode = "server_error"
	ErrorRateLimited          ErrorCode = "rate_limited"
)

// Error is a terminal OAuth2 failure: a stable code, a human readable description
// and the HTTP status it is reported with. Cause is kept for logging only and is
// never serialised.
type Error struct {
	Code        ErrorCode `json:"error"`
	Description string    `json:"error_description"`
	Status      int       `json:"-"`
	Cause       error     `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Description, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithCause returns a copy of e carrying the internal cause.
func (e *Error) WithCause(cause error) *Error {
	c := *e
	c.Cause = cause
	return &c
}

func NewError(status int, code ErrorCode, description string) *Error {
	return &Error{Code: code, Description: description, Status: status}
}

func InvalidRequest(description string) *Error {
	return NewError(http.StatusBadRequest, ErrorInvalidRequest, description)
}

func InvalidClient(description string) *Error {
	return NewError(http.StatusBadRequest, ErrorInvalidClient, description)
}

// InvalidGrant reports a bad code or refresh token. status is 400 on the
// authorization_code path and 401 on the refresh_token path.
func InvalidGrant(status int, description string) *Error {
	return NewError(status, ErrorInvalidGrant, description)
}

func UnsupportedGrantType(grantType GrantType) *Error {
	return NewError(http.StatusBadRequest, ErrorUnsupportedGrantType, fmt.Sprintf("Grant type '%s' is not supported", grantType))
}

func AccessDenied(description string) *Error {
	return NewError(http.StatusUnauthorized, ErrorAccessDenied, description)
}

func Unauthorized(description string) *Error {
	return NewError(http.StatusUnauthorized, ErrorUnauthorized, description)
}

func InvalidToken(description string) *Error {
	return NewError(http.StatusUnauthorized, ErrorInvalidToken, description)
}

func ServerError(cause error) *Error {
	return NewError(http.StatusInternalServerError, ErrorServerError, "Internal server error").WithCause(cause)
}

// AsError returns err as an *Error, treating any other error as a server error.
func AsError(err error) *Error {
	var oauthErr *Error
	if errors.As(err, &oauthErr) {
		return oauthErr
	}
	return ServerError(err)
}
