// Package cache provides the short-TTL tenant directory cache. The cache only
// ever fronts the master database; the directory row stays authoritative for
// activation state.
package cache

import (
	"context"

	"github.com/invoicehub/backend/internal/domain/tenant"
)

// TenantCache caches resolved tenant directory entries under short TTLs so
// the hot invoice path does not hit the master database on every request.
type TenantCache interface {
	// Get returns the cached tenant for the key, or false on miss
	Get(ctx context.Context, key string) (*tenant.Tenant, bool)
	// Set stores a tenant under the key for the cache's TTL
	Set(ctx context.Context, key string, t *tenant.Tenant)
	// Delete drops the key; used when a tenant changes or deactivates
	Delete(ctx context.Context, key string)
}
