package cache

import (
	"context"
	"sync"
	"time"

	"github.com/invoicehub/backend/internal/domain/tenant"
)

// InMemoryTenantCache implements TenantCache with a process-local map.
// Suitable for single-instance deployments and tests. Invalidation does not
// propagate across instances; the short TTL bounds the staleness window.
type InMemoryTenantCache struct {
	mu      sync.RWMutex
	entries map[string]inMemoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type inMemoryEntry struct {
	tenant    tenant.Tenant
	expiresAt time.Time
}

// NewInMemoryTenantCache creates an in-memory tenant cache
func NewInMemoryTenantCache(ttl time.Duration) *InMemoryTenantCache {
	return &InMemoryTenantCache{
		entries: make(map[string]inMemoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached tenant for the key, expiring lazily
func (c *InMemoryTenantCache) Get(_ context.Context, key string) (*tenant.Tenant, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	t := e.tenant
	return &t, true
}

// Set stores a copy of the tenant under the key
func (c *InMemoryTenantCache) Set(_ context.Context, key string, t *tenant.Tenant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = inMemoryEntry{
		tenant:    *t,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Delete drops the key
func (c *InMemoryTenantCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
