package token

import (
	"context"
	"fmt"
	"sync"

	"github.com/centralhq/shopify-relay/internal/apperrors"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo
// interface. Like the relational layout it stands in for, it appends a row
// per issued token set and selects the latest on read.
type InMemoryRepo struct {
	mu      sync.RWMutex
	records map[string][]Record
}

var _ Repo = (*InMemoryRepo)(nil)

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{records: make(map[string][]Record)}
}

func pairKey(userID, clientID string) string {
	return userID + "|" + clientID
}

func (r *InMemoryRepo) Get(_ context.Context, userID, clientID string) (*Record, error) {
	if userID == "" || clientID == "" {
		return nil, fmt.Errorf("userID and clientID are required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.records[pairKey(userID, clientID)]
	if len(rows) == 0 {
		return nil, apperrors.ErrNoToken
	}

	latest := rows[0]
	for _, row := range rows[1:] {
		if row.AccessTokenExpiresAt.After(latest.AccessTokenExpiresAt) {
			latest = row
		}
	}
	return &latest, nil
}

func (r *InMemoryRepo) Upsert(_ context.Context, record *Record) error {
	if record == nil || record.UserID == "" || record.ClientID == "" {
		return fmt.Errorf("record with userID and clientID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(record.UserID, record.ClientID)
	r.records[key] = append(r.records[key], *record)
	return nil
}
