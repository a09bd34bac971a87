// Package integration spins up a real PostgreSQL server with testcontainers
// and exercises the multi-database tenant layout end to end: master directory,
// physical tenant databases, schema reconciliation and the invoice lifecycle.
package integration

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	mpg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/invoicehub/backend/internal/domain/tenant"
	"github.com/invoicehub/backend/internal/infrastructure/config"
	"github.com/invoicehub/backend/internal/infrastructure/persistence"
)

// TestEnv is one running PostgreSQL server with the master database migrated
// and the full tenant machinery wired against it.
type TestEnv struct {
	Master      *persistence.Database
	Registry    *persistence.Registry
	Provisioner *persistence.Provisioner
	Reconciler  *persistence.Reconciler
	TenantRepo  *persistence.GormTenantRepository
	Config      *config.DatabaseConfig

	t *testing.T
}

// NewTestEnv starts a PostgreSQL container, migrates the master database and
// returns the wired environment. The container is terminated on cleanup.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("invoicehub_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		termCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = container.Terminate(termCtx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dbCfg := &config.DatabaseConfig{
		Host:         host,
		Port:         port.Int(),
		User:         "postgres",
		Password:     "postgres",
		DBName:       "invoicehub_test",
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	master, err := persistence.NewDatabase(dbCfg)
	require.NoError(t, err, "failed to connect to master database")
	t.Cleanup(func() { _ = master.Close() })

	runMasterMigrations(t, dbCfg)

	poolCfg := &config.TenantPoolConfig{
		MaxOpenConns:   5,
		MaxIdleConns:   2,
		ConnMaxIdle:    10 * time.Second,
		AcquireTimeout: 30 * time.Second,
	}
	registry := persistence.NewRegistry(dbCfg, poolCfg, gormlogger.Default.LogMode(gormlogger.Silent), zap.NewNop())
	t.Cleanup(registry.Close)

	provisioner := persistence.NewProvisioner(master, registry, zap.NewNop())
	reconciler := persistence.NewReconciler(registry, zap.NewNop())

	return &TestEnv{
		Master:      master,
		Registry:    registry,
		Provisioner: provisioner,
		Reconciler:  reconciler,
		TenantRepo:  persistence.NewGormTenantRepository(master.DB),
		Config:      dbCfg,
		t:           t,
	}
}

// ProvisionTenant runs the full provisioning sequence for one tenant and
// stores the directory row in the master database.
func (e *TestEnv) ProvisionTenant(businessName, ntn string) *tenant.Tenant {
	e.t.Helper()
	ctx := context.Background()

	tn := tenant.NewTenant(businessName, ntn, "Sindh", "Karachi")
	require.NoError(e.t, e.Provisioner.CreateDatabase(ctx, tn.DatabaseName))
	require.NoError(e.t, e.TenantRepo.Save(ctx, tn))
	require.NoError(e.t, e.Provisioner.InitSchema(ctx, tn.DatabaseName))
	return tn
}

// TenantSQL opens a raw database/sql handle to a tenant database for schema
// surgery that should bypass the registry's pooled GORM handle.
func (e *TestEnv) TenantSQL(dbName string) *sql.DB {
	e.t.Helper()

	db, err := sql.Open("postgres", e.Config.DSNFor(dbName))
	require.NoError(e.t, err)
	e.t.Cleanup(func() { _ = db.Close() })
	return db
}

func runMasterMigrations(t *testing.T, dbCfg *config.DatabaseConfig) {
	t.Helper()

	sqlDB, err := sql.Open("postgres", dbCfg.DSN())
	require.NoError(t, err)
	defer func() { _ = sqlDB.Close() }()

	driver, err := mpg.WithInstance(sqlDB, &mpg.Config{})
	require.NoError(t, err, "failed to create migration driver")

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath(t), "postgres", driver)
	require.NoError(t, err, "failed to create migrate instance")

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "failed to run master migrations")
	}
}

func migrationsPath(t *testing.T) string {
	t.Helper()

	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok)

	dir := filepath.Dir(filename)
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "migrations")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	t.Fatal("could not find migrations directory")
	return ""
}
