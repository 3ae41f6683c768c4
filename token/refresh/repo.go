package refresh

import (
	"context"
	"time"
)

// StoredRefreshToken is the server-side record that makes a signed refresh
// token usable. A refresh token is accepted only while its record exists and
// has not expired, independently of the expiry embedded in the token itself.
type StoredRefreshToken struct {
	Token     string    `json:"token"`   // The signed refresh token string (sent to client)
	UserID    string    `json:"user_id"` // Owning user
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the record is past its expiry at now.
func (rt *StoredRefreshToken) Expired(now time.Time) bool {
	return now.After(rt.ExpiresAt)
}

// Repo manages server-side storage of refresh token records keyed by the token string.
// Get returns errors.ErrNotFound for absent tokens. Delete returns errors.ErrNotFound
// when the record was already removed, so a token can be rotated only once.
type Repo interface {
	Set(ctx context.Context, refreshToken *StoredRefreshToken) error
	Get(ctx context.Context, token string) (*StoredRefreshToken, error)
	Delete(ctx context.Context, token string) error
}
