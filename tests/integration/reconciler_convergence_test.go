package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcilerConvergence(t *testing.T) {
	env := NewTestEnv(t)
	ctx := context.Background()

	tn := env.ProvisionTenant("Khan Textiles", "7000007")
	raw := env.TenantSQL(tn.DatabaseName)

	t.Run("freshly provisioned schema needs nothing", func(t *testing.T) {
		result, err := env.Reconciler.Reconcile(ctx, tn.DatabaseName)
		require.NoError(t, err)
		assert.True(t, result.Complete())
		assert.False(t, result.Changed())
	})

	t.Run("a dropped column is added back", func(t *testing.T) {
		_, err := raw.Exec(`ALTER TABLE invoices DROP COLUMN scenario_id`)
		require.NoError(t, err)

		result, err := env.Reconciler.Reconcile(ctx, tn.DatabaseName)
		require.NoError(t, err)
		assert.True(t, result.Complete())
		require.Len(t, result.ColumnsAdded, 1)
		assert.Equal(t, "invoices", result.ColumnsAdded[0].Table)
		assert.Equal(t, "scenario_id", result.ColumnsAdded[0].Column)

		var exists bool
		err = raw.QueryRow(`SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = 'invoices' AND column_name = 'scenario_id')`).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("a second pass is a no-op", func(t *testing.T) {
		result, err := env.Reconciler.Reconcile(ctx, tn.DatabaseName)
		require.NoError(t, err)
		assert.True(t, result.Complete())
		assert.False(t, result.Changed())
	})

	t.Run("unique constraints survive re-addition", func(t *testing.T) {
		_, err := raw.Exec(`ALTER TABLE invoices DROP COLUMN invoice_number`)
		require.NoError(t, err)

		result, err := env.Reconciler.Reconcile(ctx, tn.DatabaseName)
		require.NoError(t, err)
		assert.True(t, result.Changed())

		var indexed bool
		err = raw.QueryRow(`SELECT EXISTS (
			SELECT 1 FROM pg_indexes
			WHERE tablename = 'invoices' AND indexname = 'idx_invoices_invoice_number')`).Scan(&indexed)
		require.NoError(t, err)
		assert.True(t, indexed)
	})

	t.Run("a missing table is skipped, not created", func(t *testing.T) {
		_, err := raw.Exec(`DROP TABLE buyers`)
		require.NoError(t, err)

		result, err := env.Reconciler.Reconcile(ctx, tn.DatabaseName)
		require.NoError(t, err)
		assert.False(t, result.Complete())
		assert.Contains(t, result.TablesSkipped, "buyers")

		var exists bool
		err = raw.QueryRow(`SELECT EXISTS (
			SELECT 1 FROM information_schema.tables WHERE table_name = 'buyers')`).Scan(&exists)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
