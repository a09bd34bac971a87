package tenant

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for the tenant directory.
// Implementations run against the master database only.
type Repository interface {
	// FindByID finds a tenant by its opaque id regardless of activation state
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	// FindActiveByID finds an active tenant by its opaque id
	FindActiveByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	// FindActiveByNTN finds an active tenant by its seller business identifier
	FindActiveByNTN(ctx context.Context, ntn string) (*Tenant, error)
	// FindAllActive returns all active tenants in directory order
	FindAllActive(ctx context.Context) ([]Tenant, error)
	// Save inserts a new tenant directory entry
	Save(ctx context.Context, t *Tenant) error
	// Update persists changes to an existing tenant
	Update(ctx context.Context, t *Tenant) error
}
