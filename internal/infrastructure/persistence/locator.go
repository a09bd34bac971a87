package persistence

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/invoicehub/backend/internal/domain/invoicing"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/tenant"
)

// LocatedInvoice pairs a found invoice with the tenant that holds it
type LocatedInvoice struct {
	Invoice *invoicing.Invoice
	Tenant  *tenant.Tenant
}

// InvoiceLocator searches for an invoice number across every active tenant's
// database. Tenants whose database cannot be reached are logged and skipped;
// a search is only "not found" after every reachable tenant has answered.
type InvoiceLocator struct {
	tenants  tenant.Repository
	registry *Registry
	logger   *zap.Logger
}

// NewInvoiceLocator creates a cross-tenant invoice locator
func NewInvoiceLocator(tenants tenant.Repository, registry *Registry, logger *zap.Logger) *InvoiceLocator {
	return &InvoiceLocator{tenants: tenants, registry: registry, logger: logger}
}

// Locate scans active tenants in directory order and returns the first match
func (l *InvoiceLocator) Locate(ctx context.Context, invoiceNumber string) (*LocatedInvoice, error) {
	if invoiceNumber == "" {
		return nil, shared.ErrInvalidInput
	}

	active, err := l.tenants.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}

	for i := range active {
		t := &active[i]
		db, err := l.registry.Get(t.DatabaseName)
		if err != nil {
			l.logger.Warn("locator skipping unreachable tenant",
				zap.String("tenant_id", t.ID.String()),
				zap.String("database", t.DatabaseName),
				zap.Error(err))
			continue
		}

		inv, err := NewGormInvoiceRepository(db).FindByNumber(ctx, invoiceNumber)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			l.logger.Warn("locator query failed for tenant",
				zap.String("tenant_id", t.ID.String()),
				zap.String("database", t.DatabaseName),
				zap.Error(err))
			continue
		}
		return &LocatedInvoice{Invoice: inv, Tenant: t}, nil
	}

	return nil, shared.ErrNotFound
}
