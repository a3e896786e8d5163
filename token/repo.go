package token

import "context"

// Repo manages OAuth token records.
type Repo interface {
	// Get returns the current record for the (user, client) pair: the one
	// with the latest access-token expiry. apperrors.ErrNoToken if none.
	Get(ctx context.Context, userID, clientID string) (*Record, error)

	// Upsert stores a token set. Earlier records for the same pair may be
	// kept or replaced; Get must still return the most recent.
	Upsert(ctx context.Context, record *Record) error
}
