package codes

import (
	"context"
	"time"
)

// AuthorizationCode is a short-lived, single-use proof of a completed login.
type AuthorizationCode struct {
	Code        string    `json:"code"`         // Unguessable code value, the store key
	ClientID    string    `json:"client_id"`    // Client the code was issued to
	RedirectURI string    `json:"redirect_uri"` // Redirect URI used at issuance
	UserID      string    `json:"user_id"`      // Subject user ID
	Email       string    `json:"email"`        // Subject email
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the code is past its expiry at now.
func (c *AuthorizationCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Repo stores authorization codes keyed by code value.
// Get returns errors.ErrNotFound for absent codes. Delete returns errors.ErrNotFound
// when the code was already removed, so exactly one of several concurrent
// deleters of the same code succeeds.
type Repo interface {
	Set(ctx context.Context, code *AuthorizationCode) error
	Get(ctx context.Context, code string) (*AuthorizationCode, error)
	Delete(ctx context.Context, code string) error
}
