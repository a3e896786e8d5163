package tenants_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/centralhq/shopify-relay/internal/apperrors"
	"github.com/centralhq/shopify-relay/tenants"
)

func TestInMemoryRepo_Link(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the tenant on first OAuth completion", func(t *testing.T) {
		repo := tenants.NewInMemoryRepo()

		require.NoError(t, repo.Link(ctx, "shop-a", "central-user-1"))

		tenant, err := repo.Get(ctx, "shop-a")
		require.NoError(t, err)
		require.Equal(t, "central-user-1", tenant.UpstreamUserID)
		require.False(t, tenant.LinkedAt.IsZero())
	})

	t.Run("relinking the same account keeps the workspace", func(t *testing.T) {
		repo := tenants.NewInMemoryRepo()
		require.NoError(t, repo.Link(ctx, "shop-a", "central-user-1"))
		require.NoError(t, repo.SelectWorkspace(ctx, "shop-a", "ws-1"))

		require.NoError(t, repo.Link(ctx, "shop-a", "central-user-1"))

		tenant, err := repo.Get(ctx, "shop-a")
		require.NoError(t, err)
		require.Equal(t, "ws-1", tenant.WorkspaceID)
	})

	t.Run("switching accounts clears the workspace selection", func(t *testing.T) {
		repo := tenants.NewInMemoryRepo()
		require.NoError(t, repo.Link(ctx, "shop-a", "central-user-1"))
		require.NoError(t, repo.SelectWorkspace(ctx, "shop-a", "ws-1"))

		require.NoError(t, repo.Link(ctx, "shop-a", "central-user-2"))

		tenant, err := repo.Get(ctx, "shop-a")
		require.NoError(t, err)
		require.Equal(t, "central-user-2", tenant.UpstreamUserID)
		require.Empty(t, tenant.WorkspaceID)
	})

	t.Run("requires shop and user", func(t *testing.T) {
		repo := tenants.NewInMemoryRepo()
		require.Error(t, repo.Link(ctx, "", "central-user-1"))
		require.Error(t, repo.Link(ctx, "shop-a", ""))
	})
}

func TestInMemoryRepo_ResolveUpstreamUser(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves a linked shop", func(t *testing.T) {
		repo := tenants.NewInMemoryRepo()
		require.NoError(t, repo.Link(ctx, "shop-a", "central-user-1"))

		userID, err := repo.ResolveUpstreamUser(ctx, "shop-a")
		require.NoError(t, err)
		require.Equal(t, "central-user-1", userID)
	})

	t.Run("unknown shop is unlinked", func(t *testing.T) {
		repo := tenants.NewInMemoryRepo()

		_, err := repo.ResolveUpstreamUser(ctx, "shop-a")
		require.ErrorIs(t, err, apperrors.ErrUnlinkedTenant)
	})

	t.Run("missing shop", func(t *testing.T) {
		repo := tenants.NewInMemoryRepo()

		_, err := repo.ResolveUpstreamUser(ctx, "")
		require.ErrorIs(t, err, apperrors.ErrMissingTenant)
	})
}

func TestInMemoryRepo_SelectWorkspace(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown shop", func(t *testing.T) {
		repo := tenants.NewInMemoryRepo()
		require.ErrorIs(t, repo.SelectWorkspace(ctx, "shop-a", "ws-1"), apperrors.ErrNotFound)
	})

	t.Run("updates the selection", func(t *testing.T) {
		repo := tenants.NewInMemoryRepo()
		require.NoError(t, repo.Link(ctx, "shop-a", "central-user-1"))

		require.NoError(t, repo.SelectWorkspace(ctx, "shop-a", "ws-1"))
		require.NoError(t, repo.SelectWorkspace(ctx, "shop-a", "ws-2"))

		tenant, err := repo.Get(ctx, "shop-a")
		require.NoError(t, err)
		require.Equal(t, "ws-2", tenant.WorkspaceID)
	})
}
