package persistence

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/infrastructure/persistence/models"
)

// Provisioner creates and initializes physical tenant databases on the same
// server as the master database.
type Provisioner struct {
	master   *Database
	registry *Registry
	logger   *zap.Logger
}

// NewProvisioner creates a tenant database provisioner
func NewProvisioner(master *Database, registry *Registry, logger *zap.Logger) *Provisioner {
	return &Provisioner{master: master, registry: registry, logger: logger}
}

// CreateDatabase creates the named physical database. CREATE DATABASE cannot
// run inside a transaction, so this is a raw statement on the master
// connection. Already-exists is not an error; provisioning is retryable.
func (p *Provisioner) CreateDatabase(ctx context.Context, dbName string) error {
	if err := validateDatabaseName(dbName); err != nil {
		return err
	}

	stmt := fmt.Sprintf(`CREATE DATABASE %q`, dbName)
	if err := p.master.DB.WithContext(ctx).Exec(stmt).Error; err != nil {
		if isDuplicateDatabase(err) {
			p.logger.Info("tenant database already exists", zap.String("database", dbName))
			return nil
		}
		return ClassifyConnError(err, dbName)
	}

	p.logger.Info("tenant database created", zap.String("database", dbName))
	return nil
}

// InitSchema brings the tenant database to the current schema via automigrate.
// Safe to run repeatedly.
func (p *Provisioner) InitSchema(ctx context.Context, dbName string) error {
	db, err := p.registry.Get(dbName)
	if err != nil {
		return ClassifyConnError(err, dbName)
	}

	if err := db.WithContext(ctx).AutoMigrate(
		&models.BuyerModel{},
		&models.InvoiceModel{},
		&models.InvoiceItemModel{},
		&models.InvoiceSequenceModel{},
	); err != nil {
		return fmt.Errorf("failed to initialize schema for %s: %w", dbName, err)
	}

	p.logger.Info("tenant schema initialized", zap.String("database", dbName))
	return nil
}

// DropDatabase removes a tenant database. Only used to roll back a failed
// provisioning; never called on databases that hold invoices.
func (p *Provisioner) DropDatabase(ctx context.Context, dbName string) error {
	if err := validateDatabaseName(dbName); err != nil {
		return err
	}
	p.registry.Evict(dbName)
	stmt := fmt.Sprintf(`DROP DATABASE IF EXISTS %q`, dbName)
	if err := p.master.DB.WithContext(ctx).Exec(stmt).Error; err != nil {
		return ClassifyConnError(err, dbName)
	}
	return nil
}

// validateDatabaseName rejects names that cannot come from the tenant name
// derivation; the quoted identifier is then safe to interpolate.
func validateDatabaseName(dbName string) error {
	if dbName == "" {
		return fmt.Errorf("%w: empty database name", shared.ErrInvalidInput)
	}
	for _, r := range dbName {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return fmt.Errorf("%w: invalid database name %q", shared.ErrInvalidInput, dbName)
		}
	}
	return nil
}

// ClassifyConnError maps low-level connectivity failures onto the shared
// connection error so callers can report "database unreachable" distinctly
// from application errors. Matching is on message text because failures
// surface from several driver layers.
func ClassifyConnError(err error, host string) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"):
		return &shared.ConnectionError{Host: host, Message: "connection refused", Cause: err}
	case strings.Contains(msg, "no such host"), strings.Contains(msg, "name resolution"):
		return &shared.ConnectionError{Host: host, Message: "host not found", Cause: err}
	case strings.Contains(msg, "password authentication failed"), strings.Contains(msg, "access denied"):
		return &shared.ConnectionError{Host: host, Message: "access denied", Cause: err}
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return &shared.ConnectionError{Host: host, Message: "connection timeout", Cause: err}
	default:
		return err
	}
}

// isDuplicateDatabase reports whether the error is postgres 42P04
func isDuplicateDatabase(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "42p04")
}
