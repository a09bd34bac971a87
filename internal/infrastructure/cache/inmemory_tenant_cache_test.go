package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoicehub/backend/internal/domain/tenant"
)

func TestInMemoryTenantCache(t *testing.T) {
	ctx := context.Background()

	t.Run("set then get returns a copy", func(t *testing.T) {
		c := NewInMemoryTenantCache(30 * time.Second)
		tn := tenant.NewTenant("Khan Textiles", "7000007", "Sindh", "")

		c.Set(ctx, tn.NTN, tn)

		got, ok := c.Get(ctx, tn.NTN)
		require.True(t, ok)
		assert.Equal(t, tn.ID, got.ID)

		// Mutating the returned tenant must not leak back into the cache.
		got.BusinessName = "changed"
		again, ok := c.Get(ctx, tn.NTN)
		require.True(t, ok)
		assert.Equal(t, "Khan Textiles", again.BusinessName)
	})

	t.Run("miss on unknown key", func(t *testing.T) {
		c := NewInMemoryTenantCache(30 * time.Second)

		_, ok := c.Get(ctx, "unknown")

		assert.False(t, ok)
	})

	t.Run("entries expire after the ttl", func(t *testing.T) {
		c := NewInMemoryTenantCache(30 * time.Second)
		now := time.Now()
		c.now = func() time.Time { return now }

		tn := tenant.NewTenant("Khan Textiles", "7000007", "Sindh", "")
		c.Set(ctx, tn.NTN, tn)

		now = now.Add(29 * time.Second)
		_, ok := c.Get(ctx, tn.NTN)
		assert.True(t, ok)

		now = now.Add(2 * time.Second)
		_, ok = c.Get(ctx, tn.NTN)
		assert.False(t, ok)
	})

	t.Run("delete drops the entry", func(t *testing.T) {
		c := NewInMemoryTenantCache(30 * time.Second)
		tn := tenant.NewTenant("Khan Textiles", "7000007", "Sindh", "")
		c.Set(ctx, tn.NTN, tn)

		c.Delete(ctx, tn.NTN)

		_, ok := c.Get(ctx, tn.NTN)
		assert.False(t, ok)
	})
}
