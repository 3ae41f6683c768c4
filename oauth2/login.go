package oauth2

// LoginRequest is the credential submission made by the login page.
type LoginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	ClientID    string `json:"client_id"`
	RedirectURI string `json:"redirect_uri"`
	State       string `json:"state,omitempty"` // Echoed back unmodified when present
}

// LoginResponse carries the client callback URL including the issued code.
type LoginResponse struct {
	RedirectURL string `json:"redirect_url"`
}
