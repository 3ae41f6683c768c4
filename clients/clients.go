package clients

import "slices"

// Client is a registered application permitted to request logins.
type Client struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	RedirectURIs []string `json:"redirectURIs"`
}

// HasRedirectURI reports whether uri is registered for the client.
// Matching is exact string equality with no normalisation.
func (c *Client) HasRedirectURI(uri string) bool {
	return slices.Contains(c.RedirectURIs, uri)
}
