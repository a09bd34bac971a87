package invoicing

import (
	"context"

	"go.uber.org/zap"

	"github.com/invoicehub/backend/internal/domain/invoicing"
	"github.com/invoicehub/backend/internal/infrastructure/persistence"
)

// BuyerInput is the request body for buyer create and update operations
type BuyerInput struct {
	BusinessName     string `json:"businessName" binding:"required"`
	NTNCNIC          string `json:"ntnCnic"`
	Province         string `json:"province"`
	Address          string `json:"address"`
	RegistrationType string `json:"registrationType"`
}

// BuyerResponse is the outward view of a buyer
type BuyerResponse struct {
	ID               uint64 `json:"id"`
	BusinessName     string `json:"businessName"`
	NTNCNIC          string `json:"ntnCnic"`
	Province         string `json:"province"`
	Address          string `json:"address"`
	RegistrationType string `json:"registrationType"`
}

// NewBuyerResponse converts a domain buyer to its outward view
func NewBuyerResponse(b *invoicing.Buyer) *BuyerResponse {
	return &BuyerResponse{
		ID:               b.ID,
		BusinessName:     b.BusinessName,
		NTNCNIC:          b.NTNCNIC,
		Province:         b.Province,
		Address:          b.Address,
		RegistrationType: b.RegistrationType,
	}
}

// BuyerService manages a tenant's registered buyers. Invoices snapshot buyer
// fields rather than referencing these rows, so edits here never rewrite
// existing documents.
type BuyerService struct {
	resolver TenantResolver
	logger   *zap.Logger
}

// NewBuyerService creates a new BuyerService
func NewBuyerService(resolver TenantResolver, logger *zap.Logger) *BuyerService {
	return &BuyerService{resolver: resolver, logger: logger}
}

// Create adds a buyer to the tenant's registry
func (s *BuyerService) Create(ctx context.Context, tenantID string, input BuyerInput) (*BuyerResponse, error) {
	_, db, err := s.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	b := &invoicing.Buyer{
		BusinessName:     input.BusinessName,
		NTNCNIC:          input.NTNCNIC,
		Province:         input.Province,
		Address:          input.Address,
		RegistrationType: input.RegistrationType,
	}
	if err := persistence.NewGormBuyerRepository(db).Save(ctx, b); err != nil {
		return nil, err
	}
	return NewBuyerResponse(b), nil
}

// Get returns one buyer
func (s *BuyerService) Get(ctx context.Context, tenantID string, id uint64) (*BuyerResponse, error) {
	_, db, err := s.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	b, err := persistence.NewGormBuyerRepository(db).FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewBuyerResponse(b), nil
}

// List returns all buyers for the tenant
func (s *BuyerService) List(ctx context.Context, tenantID string) ([]BuyerResponse, error) {
	_, db, err := s.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	buyers, err := persistence.NewGormBuyerRepository(db).FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]BuyerResponse, len(buyers))
	for i := range buyers {
		out[i] = *NewBuyerResponse(&buyers[i])
	}
	return out, nil
}

// Update changes a buyer's registry fields
func (s *BuyerService) Update(ctx context.Context, tenantID string, id uint64, input BuyerInput) (*BuyerResponse, error) {
	_, db, err := s.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	repo := persistence.NewGormBuyerRepository(db)

	b, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	b.BusinessName = input.BusinessName
	b.NTNCNIC = input.NTNCNIC
	b.Province = input.Province
	b.Address = input.Address
	b.RegistrationType = input.RegistrationType

	if err := repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return NewBuyerResponse(b), nil
}

// Delete removes a buyer from the registry
func (s *BuyerService) Delete(ctx context.Context, tenantID string, id uint64) error {
	_, db, err := s.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return err
	}
	return persistence.NewGormBuyerRepository(db).Delete(ctx, id)
}
