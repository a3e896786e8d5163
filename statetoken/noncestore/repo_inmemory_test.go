package noncestore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/centralhq/shopify-relay/statetoken/noncestore"
)

func TestInMemoryRepo_Consume(t *testing.T) {
	ctx := context.Background()

	t.Run("first use succeeds, replay fails", func(t *testing.T) {
		repo := noncestore.NewInMemoryRepo(15 * time.Minute)

		require.NoError(t, repo.Consume(ctx, "nonce-1"))
		require.Error(t, repo.Consume(ctx, "nonce-1"))
	})

	t.Run("distinct nonces are independent", func(t *testing.T) {
		repo := noncestore.NewInMemoryRepo(15 * time.Minute)

		require.NoError(t, repo.Consume(ctx, "nonce-1"))
		require.NoError(t, repo.Consume(ctx, "nonce-2"))
	})

	t.Run("empty nonce rejected", func(t *testing.T) {
		repo := noncestore.NewInMemoryRepo(15 * time.Minute)
		require.Error(t, repo.Consume(ctx, ""))
	})

	t.Run("entries expire after the TTL", func(t *testing.T) {
		now := time.Now()
		noncestore.NowTimeFunc = func() time.Time { return now }
		defer func() { noncestore.NowTimeFunc = time.Now }()

		repo := noncestore.NewInMemoryRepo(15 * time.Minute)
		require.NoError(t, repo.Consume(ctx, "nonce-1"))

		now = now.Add(16 * time.Minute)
		require.NoError(t, repo.Consume(ctx, "nonce-1"))
	})
}
