package invoicing

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/invoicehub/backend/internal/domain/invoicing"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/tenant"
	"github.com/invoicehub/backend/internal/infrastructure/persistence"
)

// TenantResolver maps a tenant identifier to its directory entry and a live
// database handle
type TenantResolver interface {
	Resolve(ctx context.Context, identifier string) (*tenant.Tenant, *gorm.DB, error)
}

// Service drives the invoice lifecycle inside one tenant's database per call
type Service struct {
	resolver  TenantResolver
	submitter invoicing.Submitter
	locator   *persistence.InvoiceLocator
	logger    *zap.Logger
}

// NewService creates a new invoice Service
func NewService(resolver TenantResolver, submitter invoicing.Submitter, locator *persistence.InvoiceLocator, logger *zap.Logger) *Service {
	return &Service{
		resolver:  resolver,
		submitter: submitter,
		locator:   locator,
		logger:    logger,
	}
}

// Create posts an invoice directly: the next system invoice id is allocated
// and the invoice with all items lands in one transaction, status posted.
func (s *Service) Create(ctx context.Context, tenantID string, input InvoiceInput) (*InvoiceResponse, error) {
	_, db, err := s.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	repo := persistence.NewGormInvoiceRepository(db)

	inv := input.ToDomain()
	inv.ID = 0

	if inv.InvoiceNumber != "" {
		exists, err := repo.ExistsByNumber(ctx, inv.InvoiceNumber)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.ErrDuplicateInvoiceNumber
		}
	}

	if err := repo.CreatePosted(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("invoice created",
		zap.String("tenant", tenantID),
		zap.Uint64("invoice_id", inv.ID),
		zap.String("system_invoice_id", inv.SystemInvoiceID))
	return NewInvoiceResponse(inv), nil
}

// SaveDraft upserts a draft. New drafts get a placeholder number and a fresh
// system invoice id; existing drafts have their header updated and items
// replaced.
func (s *Service) SaveDraft(ctx context.Context, tenantID string, input InvoiceInput) (*InvoiceResponse, error) {
	return s.upsertDraft(ctx, tenantID, input, invoicing.NewDraftNumber)
}

// SaveAndValidate validates the document structurally, then performs the same
// upsert as SaveDraft. On validation failure the full violation list is
// returned and storage is not touched.
func (s *Service) SaveAndValidate(ctx context.Context, tenantID string, input InvoiceInput) (*InvoiceResponse, error) {
	inv := input.ToDomain()
	if violations := invoicing.Validate(inv); len(violations) > 0 {
		return nil, &shared.ValidationError{Violations: violations}
	}
	return s.upsertDraft(ctx, tenantID, input, invoicing.NewValidatedNumber)
}

func (s *Service) upsertDraft(ctx context.Context, tenantID string, input InvoiceInput, placeholder func() string) (*InvoiceResponse, error) {
	_, db, err := s.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	repo := persistence.NewGormInvoiceRepository(db)

	inv := input.ToDomain()
	inv.Status = invoicing.StatusDraft
	if inv.ID == 0 && inv.InvoiceNumber == "" {
		inv.InvoiceNumber = placeholder()
	}

	if err := repo.SaveDraft(ctx, inv); err != nil {
		return nil, err
	}

	saved, err := repo.FindByID(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	return NewInvoiceResponse(saved), nil
}

// Submit sends a draft to the tax authority. Only drafts are submittable and
// a scenario identifier is required. On acceptance the draft becomes posted
// with the authority's number; on rejection nothing is persisted.
func (s *Service) Submit(ctx context.Context, tenantID string, req SubmitRequest) (*InvoiceResponse, error) {
	t, db, err := s.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	repo := persistence.NewGormInvoiceRepository(db)

	inv, err := repo.FindByID(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.Status.CanSubmit() {
		return nil, shared.ErrInvalidStateTransition
	}

	scenario := req.ScenarioID
	if scenario == nil {
		scenario = inv.ScenarioID
	}
	if scenario == nil || *scenario == "" {
		return nil, fmt.Errorf("%w: scenario id is required for submission", shared.ErrInvalidInput)
	}

	payload := invoicing.BuildSubmissionPayload(inv, *scenario)
	result, err := s.submitter.Submit(ctx, payload, string(t.Environment), t.Credential())
	if err != nil {
		return nil, err
	}

	outcome := invoicing.ClassifyResponse(result.StatusCode, result.Body)
	if !outcome.Accepted() {
		s.logger.Warn("authority rejected invoice",
			zap.String("tenant", tenantID),
			zap.Uint64("invoice_id", inv.ID),
			zap.String("detail", outcome.Detail))
		return nil, &shared.SubmissionError{Detail: outcome.Detail}
	}

	if err := repo.MarkPosted(ctx, inv.ID, outcome.InvoiceNumber); err != nil {
		return nil, err
	}

	posted, err := repo.FindByID(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("invoice posted",
		zap.String("tenant", tenantID),
		zap.Uint64("invoice_id", posted.ID),
		zap.String("invoice_number", posted.InvoiceNumber))
	return NewInvoiceResponse(posted), nil
}

// Get returns one invoice with its items
func (s *Service) Get(ctx context.Context, tenantID string, id uint64) (*InvoiceResponse, error) {
	_, db, err := s.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	inv, err := persistence.NewGormInvoiceRepository(db).FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewInvoiceResponse(inv), nil
}

// List returns invoices matching the filter, newest first
func (s *Service) List(ctx context.Context, tenantID string, req ListRequest) (*InvoiceListResponse, error) {
	_, db, err := s.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 20
	}

	filter := invoicing.ListFilter{
		Status:   invoicing.Status(req.Status),
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	invoices, total, err := persistence.NewGormInvoiceRepository(db).FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = *NewInvoiceResponse(&invoices[i])
	}
	return &InvoiceListResponse{
		Invoices: out,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

// FindByNumber searches all active tenants for an invoice number. Used by the
// public document-retrieval path, which has no tenant context of its own.
func (s *Service) FindByNumber(ctx context.Context, invoiceNumber string) (*LocatedInvoiceResponse, error) {
	located, err := s.locator.Locate(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	return &LocatedInvoiceResponse{
		Invoice: NewInvoiceResponse(located.Invoice),
		Tenant: LocatedTenant{
			ID:           located.Tenant.ID.String(),
			BusinessName: located.Tenant.BusinessName,
			NTN:          located.Tenant.NTN,
			Province:     located.Tenant.Province,
		},
	}, nil
}
