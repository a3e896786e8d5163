package noncestore

import (
	"context"
	"errors"
	"sync"
	"time"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// InMemoryRepo is a thread-safe in-memory implementation of the Repo
// interface. Expired entries are purged lazily on each Consume.
type InMemoryRepo struct {
	mu       sync.Mutex
	ttl      time.Duration
	consumed map[string]time.Time
}

// NewInMemoryRepo creates a new in-memory consumed-nonce repository.
func NewInMemoryRepo(ttl time.Duration) *InMemoryRepo {
	return &InMemoryRepo{
		ttl:      ttl,
		consumed: make(map[string]time.Time),
	}
}

// Consume records the nonce, failing if it was already consumed within the
// TTL window.
func (r *InMemoryRepo) Consume(_ context.Context, nonce string) error {
	if nonce == "" {
		return errors.New("nonce cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := NowTimeFunc()
	for n, at := range r.consumed {
		if now.Sub(at) > r.ttl {
			delete(r.consumed, n)
		}
	}

	if at, exists := r.consumed[nonce]; exists && now.Sub(at) <= r.ttl {
		return errors.New("state already consumed")
	}

	r.consumed[nonce] = now
	return nil
}
