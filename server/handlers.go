package server

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-authcode-server/oauth2"
	"github.com/rs/zerolog/log"
)

// LoginHandler authenticates the resource owner and answers with the client
// redirect URL carrying a fresh authorization code.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseLoginRequest(w, r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
			return
		}

		resp, err := s.auth.Login(r.Context(), req)
		if err != nil {
			oauthErr := s.logOAuthError(r, err)
			writeJSON(w, oauthErr.Status, map[string]string{"error": oauthErr.Description})
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// TokenHandler redeems an authorization code or rotates a refresh token.
func (s *Server) TokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseTokenRequest(w, r)
		if err != nil {
			writeJSONError(w, oauth2.ErrorInvalidRequest, "Failed to parse request body", http.StatusBadRequest)
			return
		}

		resp, err := s.tokens.Token(r.Context(), req)
		if err != nil {
			writeOAuthError(w, s.logOAuthError(r, err))
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// MeHandler returns the subject of the bearer access token.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := PayloadFromContext(r.Context())
		if !ok {
			writeOAuthError(w, oauth2.Unauthorized("Access token is required"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"userId": payload.UserID,
			"email":  payload.Email,
		})
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": s.nowTime().UTC().Format(time.RFC3339),
		})
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	}
}

// logOAuthError converts err for the response and logs server-side failures with their cause.
func (s *Server) logOAuthError(r *http.Request, err error) *oauth2.Error {
	oauthErr := oauth2.AsError(err)
	if oauthErr.Status >= http.StatusInternalServerError {
		log.Error().Err(oauthErr.Cause).Str("path", r.URL.Path).Msg("request failed")
	} else {
		log.Debug().Str("path", r.URL.Path).Str("error", string(oauthErr.Code)).Msg(oauthErr.Description)
	}
	return oauthErr
}
