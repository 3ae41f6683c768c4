package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-authcode-server/oauth2"
	"github.com/jrsteele09/go-authcode-server/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyPayload stores the verified access token payload
	ContextKeyPayload ContextKey = "token_payload"
)

// RequireAuth is middleware that validates a Bearer access token
// and injects its payload into the request context.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			payload, err := s.tokens.Authenticate(bearerToken(r))
			if err != nil {
				oauthErr := oauth2.AsError(err)
				if oauthErr.Code == oauth2.ErrorInvalidToken {
					w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				} else {
					w.Header().Set("WWW-Authenticate", "Bearer")
				}
				writeOAuthError(w, oauthErr)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyPayload, payload)
			next(w, r.WithContext(ctx))
		}
	}
}

// PayloadFromContext returns the payload stored by RequireAuth.
func PayloadFromContext(ctx context.Context) (*token.Payload, bool) {
	payload, ok := ctx.Value(ContextKeyPayload).(*token.Payload)
	return payload, ok
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
// Any other form yields an empty token.
func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
