package tenants

import "context"

// Repo manages the shop -> upstream account mapping and the per-shop
// workspace selection.
//
// Invariant: Link must clear the workspace selection whenever the linked
// upstream user changes, so a re-authentication under a different Central
// account never leaves a stale workspace behind.
type Repo interface {
	Get(ctx context.Context, shopDomain string) (*Tenant, error)
	Upsert(ctx context.Context, tenant *Tenant) error
	Link(ctx context.Context, shopDomain, upstreamUserID string) error
	SelectWorkspace(ctx context.Context, shopDomain, workspaceID string) error

	// ResolveUpstreamUser returns the linked Central user id, or
	// apperrors.ErrUnlinkedTenant if the shop never completed OAuth.
	ResolveUpstreamUser(ctx context.Context, shopDomain string) (string, error)
}
