package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/tenant"
	"github.com/invoicehub/backend/internal/infrastructure/cache"
	"github.com/invoicehub/backend/internal/infrastructure/persistence"
)

// Service handles tenant directory, provisioning and schema operations
type Service struct {
	repo        tenant.Repository
	cache       cache.TenantCache
	registry    *persistence.Registry
	provisioner *persistence.Provisioner
	reconciler  *persistence.Reconciler
	logger      *zap.Logger
}

// NewService creates a new tenant Service
func NewService(
	repo tenant.Repository,
	directoryCache cache.TenantCache,
	registry *persistence.Registry,
	provisioner *persistence.Provisioner,
	reconciler *persistence.Reconciler,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:        repo,
		cache:       directoryCache,
		registry:    registry,
		provisioner: provisioner,
		reconciler:  reconciler,
		logger:      logger,
	}
}

// Resolve maps a tenant identifier to its directory entry and a live database
// handle. The identifier may be the opaque tenant id or the seller business
// identifier. Deactivated tenants are rejected at the directory step, before
// any connection is handed out.
func (s *Service) Resolve(ctx context.Context, identifier string) (*tenant.Tenant, *gorm.DB, error) {
	if identifier == "" {
		return nil, nil, shared.ErrTenantNotFound
	}

	t, err := s.lookup(ctx, identifier)
	if err != nil {
		return nil, nil, err
	}
	if !t.IsActive {
		return nil, nil, shared.ErrTenantInactive
	}

	db, err := s.registry.Get(t.DatabaseName)
	if err != nil {
		return nil, nil, err
	}
	return t, db, nil
}

// lookup finds an active tenant by id or NTN, consulting the directory cache
// first. Cache entries carry the activation flag, so a tenant deactivated
// within the TTL window is still rejected by the caller's gate.
func (s *Service) lookup(ctx context.Context, identifier string) (*tenant.Tenant, error) {
	if cached, ok := s.cache.Get(ctx, identifier); ok {
		return cached, nil
	}

	var (
		t   *tenant.Tenant
		err error
	)
	if id, parseErr := uuid.Parse(identifier); parseErr == nil {
		t, err = s.repo.FindActiveByID(ctx, id)
	} else {
		t, err = s.repo.FindActiveByNTN(ctx, identifier)
	}
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, identifier, t)
	return t, nil
}

// Create provisions a new tenant: physical database first, then the directory
// row, then one-time schema initialization. The tenant is not usable until
// all three steps succeed.
func (s *Service) Create(ctx context.Context, req CreateTenantRequest) (*TenantResponse, error) {
	if _, err := s.repo.FindActiveByNTN(ctx, req.NTN); err == nil {
		return nil, shared.ErrAlreadyExists
	} else if !errors.Is(err, shared.ErrTenantNotFound) {
		return nil, err
	}

	t := tenant.NewTenant(req.BusinessName, req.NTN, req.Province, req.Address)
	t.SandboxToken = req.SandboxToken
	t.ProductionToken = req.ProductionToken
	if req.Environment != "" {
		env := tenant.Environment(req.Environment)
		if !env.IsValid() {
			return nil, fmt.Errorf("%w: unknown environment %q", shared.ErrInvalidInput, req.Environment)
		}
		t.Environment = env
	}

	if err := s.provisioner.CreateDatabase(ctx, t.DatabaseName); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, err
	}
	if err := s.provisioner.InitSchema(ctx, t.DatabaseName); err != nil {
		return nil, err
	}

	s.logger.Info("tenant provisioned",
		zap.String("tenant_id", t.ID.String()),
		zap.String("database", t.DatabaseName))
	return NewTenantResponse(t), nil
}

// Get returns one tenant regardless of activation state
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*TenantResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewTenantResponse(t), nil
}

// List returns all active tenants
func (s *Service) List(ctx context.Context) ([]TenantResponse, error) {
	tenants, err := s.repo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TenantResponse, len(tenants))
	for i := range tenants {
		out[i] = *NewTenantResponse(&tenants[i])
	}
	return out, nil
}

// UpdateCredentials changes a tenant's authority tokens or environment
func (s *Service) UpdateCredentials(ctx context.Context, id uuid.UUID, req UpdateCredentialsRequest) (*TenantResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SandboxToken != nil {
		t.SandboxToken = *req.SandboxToken
	}
	if req.ProductionToken != nil {
		t.ProductionToken = *req.ProductionToken
	}
	if req.Environment != nil {
		env := tenant.Environment(*req.Environment)
		if !env.IsValid() {
			return nil, fmt.Errorf("%w: unknown environment %q", shared.ErrInvalidInput, *req.Environment)
		}
		t.Environment = env
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.invalidate(ctx, t)
	return NewTenantResponse(t), nil
}

// Deactivate soft-deletes a tenant. The directory cache entries and the
// cached connection pool are dropped so the gate takes effect immediately on
// this instance.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !t.IsActive {
		return nil
	}

	t.Deactivate()
	if err := s.repo.Update(ctx, t); err != nil {
		return err
	}
	s.invalidate(ctx, t)
	s.registry.Evict(t.DatabaseName)

	s.logger.Info("tenant deactivated", zap.String("tenant_id", t.ID.String()))
	return nil
}

// Reactivate makes a deactivated tenant visible again
func (s *Service) Reactivate(ctx context.Context, id uuid.UUID) error {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if t.IsActive {
		return nil
	}

	t.Reactivate()
	if err := s.repo.Update(ctx, t); err != nil {
		return err
	}
	s.invalidate(ctx, t)

	s.logger.Info("tenant reactivated", zap.String("tenant_id", t.ID.String()))
	return nil
}

// ReconcileOne runs the schema reconciler for a single tenant
func (s *Service) ReconcileOne(ctx context.Context, id uuid.UUID) (*ReconcileReport, error) {
	t, err := s.repo.FindActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	report := &ReconcileReport{
		TenantID:     t.ID.String(),
		BusinessName: t.BusinessName,
		Database:     t.DatabaseName,
	}
	result, err := s.reconciler.Reconcile(ctx, t.DatabaseName)
	if err != nil {
		report.Error = err.Error()
		return report, nil
	}
	report.Result = result
	return report, nil
}

// ReconcileAll runs the schema reconciler across every active tenant. A
// failure on one tenant is reported and does not stop the sweep.
func (s *Service) ReconcileAll(ctx context.Context) ([]ReconcileReport, error) {
	tenants, err := s.repo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]ReconcileReport, 0, len(tenants))
	for i := range tenants {
		t := &tenants[i]
		report := ReconcileReport{
			TenantID:     t.ID.String(),
			BusinessName: t.BusinessName,
			Database:     t.DatabaseName,
		}
		result, err := s.reconciler.Reconcile(ctx, t.DatabaseName)
		if err != nil {
			report.Error = err.Error()
			s.logger.Warn("schema reconciliation failed for tenant",
				zap.String("tenant_id", t.ID.String()),
				zap.String("database", t.DatabaseName),
				zap.Error(err))
		} else {
			report.Result = result
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// invalidate drops both directory cache keys for a tenant
func (s *Service) invalidate(ctx context.Context, t *tenant.Tenant) {
	s.cache.Delete(ctx, t.ID.String())
	s.cache.Delete(ctx, t.NTN)
}
