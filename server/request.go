package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-authcode-server/oauth2"
	"github.com/pkg/errors"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeForm = "application/x-www-form-urlencoded"

	maxBodyBytes = 64 << 10
)

// decodeBody fills dst from a JSON body, or from a form body via fromForm.
// An empty body leaves dst untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, fromForm func(url.Values)) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == contentTypeForm {
		if err := r.ParseForm(); err != nil {
			return errors.Wrap(err, "parse form")
		}
		fromForm(r.PostForm)
		return nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.Wrap(err, "decode json")
	}
	return nil
}

func parseLoginRequest(w http.ResponseWriter, r *http.Request) (oauth2.LoginRequest, error) {
	var req oauth2.LoginRequest
	err := decodeBody(w, r, &req, func(form url.Values) {
		req = oauth2.LoginRequest{
			Email:       form.Get("email"),
			Password:    form.Get("password"),
			ClientID:    form.Get("client_id"),
			RedirectURI: form.Get("redirect_uri"),
			State:       form.Get("state"),
		}
	})
	return req, err
}

func parseTokenRequest(w http.ResponseWriter, r *http.Request) (oauth2.TokenRequest, error) {
	var req oauth2.TokenRequest
	err := decodeBody(w, r, &req, func(form url.Values) {
		req = oauth2.TokenRequest{
			GrantType:    oauth2.GrantType(form.Get("grant_type")),
			Code:         form.Get("code"),
			RedirectURI:  form.Get("redirect_uri"),
			ClientID:     form.Get("client_id"),
			RefreshToken: form.Get("refresh_token"),
		}
	})
	return req, err
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeJSONError writes an OAuth2 error response
func writeJSONError(w http.ResponseWriter, errorCode oauth2.ErrorCode, description string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{
		"error":             string(errorCode),
		"error_description": description,
	})
}

func writeOAuthError(w http.ResponseWriter, oauthErr *oauth2.Error) {
	writeJSONError(w, oauthErr.Code, oauthErr.Description, oauthErr.Status)
}
