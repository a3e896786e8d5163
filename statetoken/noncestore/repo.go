// Package noncestore records consumed state nonces so a callback state can
// be accepted at most once per redirect flow. Entries expire after the
// expected callback latency window.
package noncestore

import "context"

// Repo marks nonces as consumed. Consume fails if the nonce was already
// recorded inside its TTL window.
type Repo interface {
	Consume(ctx context.Context, nonce string) error
}
