package persistence

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/infrastructure/config"
)

// OpenFunc opens a gorm connection to the named tenant database
type OpenFunc func(dbName string) (*gorm.DB, error)

// Registry caches one connection pool per tenant database. Concurrent callers
// for the same database share a single open attempt: the first caller opens,
// the rest wait on the entry and receive the same handle or the same error.
// Failed entries are removed so a later call can retry.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry

	open   OpenFunc
	logger *zap.Logger
}

type registryEntry struct {
	ready chan struct{}
	db    *gorm.DB
	err   error
}

// NewRegistry creates a connection registry that opens tenant databases on the
// same server as the master, with the bounded per-tenant pool settings.
func NewRegistry(dbCfg *config.DatabaseConfig, poolCfg *config.TenantPoolConfig, gormLogger gormlogger.Interface, logger *zap.Logger) *Registry {
	open := func(dbName string) (*gorm.DB, error) {
		db, err := gorm.Open(postgres.Open(dbCfg.DSNFor(dbName)), &gorm.Config{
			Logger:                 gormLogger,
			SkipDefaultTransaction: true,
			PrepareStmt:            true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to tenant database %s: %w", dbName, err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(poolCfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(poolCfg.MaxIdleConns)
		sqlDB.SetConnMaxIdleTime(poolCfg.ConnMaxIdle)
		if err := sqlDB.Ping(); err != nil {
			closeDB(db)
			return nil, fmt.Errorf("failed to ping tenant database %s: %w", dbName, err)
		}
		return db, nil
	}
	return NewRegistryWithOpener(open, logger)
}

// NewRegistryWithOpener creates a registry with a custom opener; tests inject
// an opener backed by sqlmock or sqlite.
func NewRegistryWithOpener(open OpenFunc, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		entries: make(map[string]*registryEntry),
		open:    open,
		logger:  logger,
	}
}

// Get returns the cached connection pool for the tenant database, opening it
// on first use.
func (r *Registry) Get(dbName string) (*gorm.DB, error) {
	if dbName == "" {
		return nil, fmt.Errorf("%w: empty tenant database name", shared.ErrInvalidInput)
	}

	r.mu.Lock()
	if e, ok := r.entries[dbName]; ok {
		r.mu.Unlock()
		<-e.ready
		return e.db, e.err
	}
	e := &registryEntry{ready: make(chan struct{})}
	r.entries[dbName] = e
	r.mu.Unlock()

	start := time.Now()
	e.db, e.err = r.open(dbName)
	close(e.ready)

	if e.err != nil {
		// Drop the failed entry so the next caller retries the open.
		r.mu.Lock()
		if cur, ok := r.entries[dbName]; ok && cur == e {
			delete(r.entries, dbName)
		}
		r.mu.Unlock()
		r.logger.Warn("tenant database open failed",
			zap.String("database", dbName),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(e.err))
		return nil, e.err
	}

	r.logger.Info("tenant database pool opened",
		zap.String("database", dbName),
		zap.Duration("elapsed", time.Since(start)))
	return e.db, nil
}

// Evict closes and removes the cached pool for a tenant database. Used when a
// tenant is deactivated.
func (r *Registry) Evict(dbName string) {
	r.mu.Lock()
	e, ok := r.entries[dbName]
	if ok {
		delete(r.entries, dbName)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	<-e.ready
	if e.db != nil {
		closeDB(e.db)
		r.logger.Info("tenant database pool evicted", zap.String("database", dbName))
	}
}

// Close closes every cached pool
func (r *Registry) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*registryEntry)
	r.mu.Unlock()
	for name, e := range entries {
		<-e.ready
		if e.db != nil {
			closeDB(e.db)
			r.logger.Debug("tenant database pool closed", zap.String("database", name))
		}
	}
}

// Size reports how many pools are currently cached
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
