package refresh

// Repo is durable storage for the one refresh token the client holds. It must
// survive process restarts. Access tokens are never written to a Repo.
type Repo interface {
	Upsert(token string) error
	// Get returns nil, nil when no token is stored.
	Get() (*string, error)
	// Delete succeeds when nothing is stored.
	Delete() error
}
