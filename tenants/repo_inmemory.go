package tenants

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/centralhq/shopify-relay/internal/apperrors"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo
// interface, suitable for tests and single-instance deployments.
type InMemoryRepo struct {
	mu      sync.RWMutex
	tenants map[string]Tenant
}

var _ Repo = (*InMemoryRepo)(nil)

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{tenants: make(map[string]Tenant)}
}

func (r *InMemoryRepo) Get(_ context.Context, shopDomain string) (*Tenant, error) {
	if shopDomain == "" {
		return nil, fmt.Errorf("shopDomain is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, ok := r.tenants[shopDomain]
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	// Return a copy to prevent external modifications
	copied := tenant
	return &copied, nil
}

func (r *InMemoryRepo) Upsert(_ context.Context, tenant *Tenant) error {
	if tenant == nil || tenant.ShopDomain == "" {
		return fmt.Errorf("tenant with shopDomain is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *tenant
	stored.UpdatedAt = time.Now().UTC()
	r.tenants[tenant.ShopDomain] = stored
	return nil
}

// Link records the upstream account for a shop, creating the tenant on
// first OAuth completion. Switching to a different upstream account clears
// the workspace selection.
func (r *InMemoryRepo) Link(_ context.Context, shopDomain, upstreamUserID string) error {
	if shopDomain == "" {
		return fmt.Errorf("shopDomain is required")
	}
	if upstreamUserID == "" {
		return fmt.Errorf("upstreamUserID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	tenant := r.tenants[shopDomain]
	if tenant.UpstreamUserID != "" && tenant.UpstreamUserID != upstreamUserID {
		tenant.WorkspaceID = ""
	}
	tenant.ShopDomain = shopDomain
	tenant.UpstreamUserID = upstreamUserID
	tenant.LinkedAt = now
	tenant.UpdatedAt = now
	r.tenants[shopDomain] = tenant
	return nil
}

func (r *InMemoryRepo) SelectWorkspace(_ context.Context, shopDomain, workspaceID string) error {
	if shopDomain == "" {
		return fmt.Errorf("shopDomain is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tenant, ok := r.tenants[shopDomain]
	if !ok {
		return apperrors.ErrNotFound
	}
	tenant.WorkspaceID = workspaceID
	tenant.UpdatedAt = time.Now().UTC()
	r.tenants[shopDomain] = tenant
	return nil
}

func (r *InMemoryRepo) ResolveUpstreamUser(_ context.Context, shopDomain string) (string, error) {
	if shopDomain == "" {
		return "", apperrors.ErrMissingTenant
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, ok := r.tenants[shopDomain]
	if !ok || tenant.UpstreamUserID == "" {
		return "", apperrors.ErrUnlinkedTenant
	}
	return tenant.UpstreamUserID, nil
}
