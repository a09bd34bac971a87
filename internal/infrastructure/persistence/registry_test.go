package persistence

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/invoicehub/backend/internal/domain/shared"
)

func TestRegistryGet(t *testing.T) {
	t.Run("opens once and caches the handle", func(t *testing.T) {
		handle, _ := newMockDB(t)
		var opens int32
		reg := NewRegistryWithOpener(func(dbName string) (*gorm.DB, error) {
			atomic.AddInt32(&opens, 1)
			return handle, nil
		}, nil)

		first, err := reg.Get("tenant_khan_12ab34cd")
		require.NoError(t, err)
		second, err := reg.Get("tenant_khan_12ab34cd")
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, int32(1), atomic.LoadInt32(&opens))
		assert.Equal(t, 1, reg.Size())
	})

	t.Run("distinct databases get distinct entries", func(t *testing.T) {
		handleA, _ := newMockDB(t)
		handleB, _ := newMockDB(t)
		handles := map[string]*gorm.DB{"tenant_a": handleA, "tenant_b": handleB}
		reg := NewRegistryWithOpener(func(dbName string) (*gorm.DB, error) {
			return handles[dbName], nil
		}, nil)

		a, err := reg.Get("tenant_a")
		require.NoError(t, err)
		b, err := reg.Get("tenant_b")
		require.NoError(t, err)

		assert.NotSame(t, a, b)
		assert.Equal(t, 2, reg.Size())
	})

	t.Run("empty database name is rejected", func(t *testing.T) {
		reg := NewRegistryWithOpener(func(string) (*gorm.DB, error) {
			t.Fatal("opener must not be called")
			return nil, nil
		}, nil)

		_, err := reg.Get("")

		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("failed open is not cached and the next call retries", func(t *testing.T) {
		handle, _ := newMockDB(t)
		var opens int32
		reg := NewRegistryWithOpener(func(dbName string) (*gorm.DB, error) {
			if atomic.AddInt32(&opens, 1) == 1 {
				return nil, errors.New("connection refused")
			}
			return handle, nil
		}, nil)

		_, err := reg.Get("tenant_a")
		require.Error(t, err)
		assert.Equal(t, 0, reg.Size())

		db, err := reg.Get("tenant_a")
		require.NoError(t, err)
		assert.Same(t, handle, db)
		assert.Equal(t, int32(2), atomic.LoadInt32(&opens))
	})

	t.Run("concurrent callers share a single open attempt", func(t *testing.T) {
		handle, _ := newMockDB(t)
		var opens int32
		reg := NewRegistryWithOpener(func(dbName string) (*gorm.DB, error) {
			atomic.AddInt32(&opens, 1)
			time.Sleep(20 * time.Millisecond)
			return handle, nil
		}, nil)

		const callers = 16
		results := make([]*gorm.DB, callers)
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				db, err := reg.Get("tenant_a")
				assert.NoError(t, err)
				results[i] = db
			}(i)
		}
		wg.Wait()

		assert.Equal(t, int32(1), atomic.LoadInt32(&opens))
		for _, db := range results {
			assert.Same(t, handle, db)
		}
	})
}

func TestRegistryEvict(t *testing.T) {
	handle, mock := newMockDB(t)
	mock.ExpectClose()
	var opens int32
	reg := NewRegistryWithOpener(func(dbName string) (*gorm.DB, error) {
		atomic.AddInt32(&opens, 1)
		return handle, nil
	}, nil)

	_, err := reg.Get("tenant_a")
	require.NoError(t, err)

	reg.Evict("tenant_a")
	assert.Equal(t, 0, reg.Size())

	// Evicting an unknown database is a no-op.
	reg.Evict("tenant_unknown")

	_, err = reg.Get("tenant_a")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&opens))
}

func TestRegistryClose(t *testing.T) {
	handle, mock := newMockDB(t)
	mock.ExpectClose()
	reg := NewRegistryWithOpener(func(dbName string) (*gorm.DB, error) {
		return handle, nil
	}, nil)

	_, err := reg.Get("tenant_a")
	require.NoError(t, err)

	reg.Close()

	assert.Equal(t, 0, reg.Size())
}
