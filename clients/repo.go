package clients

// Repo is the client registry. Get returns errors.ErrNotFound for unknown IDs.
type Repo interface {
	Upsert(clientData *Client) error
	Get(clientID string) (*Client, error)
}
